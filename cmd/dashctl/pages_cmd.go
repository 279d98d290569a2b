package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/grse/dashboard/internal/application"
	"github.com/grse/dashboard/internal/domain"
)

func newPagesCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pages [page]",
		Short: "List permitted pages, or render one of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := open(cmd.Context(), opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				nav := ws.views.Navigation(ws.session)
				if opts.JSON {
					return writeJSON(out, nav)
				}
				rows := make([][]string, 0, len(nav))
				for _, item := range nav {
					rows = append(rows, []string{item.Page.String(), item.Title})
				}
				return table(out, []string{"PAGE", "TITLE"}, rows)
			}

			pageID, err := domain.ParsePageID(args[0])
			if err != nil {
				return err
			}
			page, err := ws.views.Navigate(ws.ctx, ws.session, pageID)
			if err != nil {
				return err
			}
			if opts.JSON {
				return writeJSON(out, page)
			}
			return printPage(out, page)
		},
	}
}

func loading(w io.Writer) error {
	_, err := fmt.Fprintln(w, "Loading...")
	return err
}

func printPage(w io.Writer, page *application.RenderedPage) error {
	fmt.Fprintf(w, "%s\n\n", page.Title)
	if page.AccessDenied {
		_, err := fmt.Fprintln(w, page.Message)
		return err
	}

	switch {
	case page.Home != nil:
		rows := make([][]string, 0, len(page.Home.Cards))
		for _, c := range page.Home.Cards {
			rows = append(rows, []string{c.Title, c.Value, c.Change})
		}
		if err := table(w, []string{"KPI", "VALUE", "CHANGE"}, rows); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "\nSystem Health: %s\n", page.Home.Health.Message)
		return err

	case page.Projects != nil:
		if page.Projects.Loading {
			return loading(w)
		}
		rows := make([][]string, 0, len(page.Projects.Projects))
		for _, p := range page.Projects.Projects {
			rows = append(rows, []string{
				string(p.ProjectID), p.ProjectName, string(p.Status),
				"₹" + p.BudgetSpent.String() + " Cr", "₹" + p.TotalBudget.String() + " Cr",
				strconv.Itoa(p.RiskScore) + "/10",
			})
		}
		return table(w, []string{"ID", "PROJECT", "STATUS", "SPENT", "BUDGET", "RISK"}, rows)

	case page.Financials != nil:
		if page.Financials.Loading {
			return loading(w)
		}
		rows := make([][]string, 0, len(page.Financials.Quarters))
		for _, q := range page.Financials.Quarters {
			rows = append(rows, []string{q.Name, q.Revenue.String(), q.Expenditure.String(), q.Variance.StringFixed(2)})
		}
		return table(w, []string{"QUARTER", "REVENUE (CR)", "EXPENDITURE (CR)", "VARIANCE"}, rows)

	case page.SupplyChain != nil:
		if page.SupplyChain.Loading {
			return loading(w)
		}
		rows := make([][]string, 0, len(page.SupplyChain.Suppliers))
		for _, s := range page.SupplyChain.Suppliers {
			rows = append(rows, []string{
				s.Name,
				strconv.FormatFloat(s.Deliveries, 'f', -1, 64) + "%",
				strconv.FormatFloat(s.Quality, 'f', -1, 64) + "%",
				string(s.Risk),
			})
		}
		return table(w, []string{"SUPPLIER", "ON-TIME", "QUALITY", "RISK"}, rows)

	case page.WhatIf != nil:
		return printWhatIf(w, page.WhatIf)

	case page.Admin != nil:
		if page.Admin.Loading {
			return loading(w)
		}
		return printUsers(w, page.Admin.Users)
	}
	return nil
}
