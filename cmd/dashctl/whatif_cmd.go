package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/grse/dashboard/internal/application"
	"github.com/grse/dashboard/internal/domain"
)

type whatIfOptions struct {
	Project  string
	Scenario string
}

func newWhatIfCmd(opts *globalOptions) *cobra.Command {
	var wopts whatIfOptions

	cmd := &cobra.Command{
		Use:   "whatif [--project <id>] [--scenario original|scenario1|scenario2]",
		Short: "Compare a project scenario against its original plan",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := open(cmd.Context(), opts)
			if err != nil {
				return err
			}

			page, err := ws.views.RenderPage(ws.ctx, ws.session, domain.PageWhatIf)
			if err != nil {
				return err
			}
			if wopts.Project != "" {
				if page, err = ws.views.SelectWhatIfProject(ws.ctx, ws.session, domain.ProjectID(wopts.Project)); err != nil {
					return err
				}
			}
			if wopts.Scenario != "" {
				if page, err = ws.views.SelectWhatIfScenario(ws.ctx, ws.session, domain.ScenarioID(wopts.Scenario)); err != nil {
					return err
				}
			}

			if opts.JSON {
				return writeJSON(cmd.OutOrStdout(), page.WhatIf)
			}
			return printWhatIf(cmd.OutOrStdout(), page.WhatIf)
		},
	}

	cmd.Flags().StringVar(&wopts.Project, "project", "", "project id (default first project)")
	cmd.Flags().StringVar(&wopts.Scenario, "scenario", "", "scenario id")

	return cmd
}

func printWhatIf(w io.Writer, view *application.WhatIfView) error {
	if view.Loading || view.Comparison == nil {
		return loading(w)
	}
	cmp := view.Comparison

	fmt.Fprintf(w, "Analysis Results: %s (%s)\n", cmp.ProjectName, cmp.ProjectID)
	fmt.Fprintf(w, "%s\n\n", view.Subheading)

	shift := "n/a"
	if cmp.TimelineShiftDays != nil {
		shift = fmt.Sprintf("%+d days", *cmp.TimelineShiftDays)
	}

	rows := [][]string{
		{"Completion", cmp.Baseline.Date, cmp.Selected.Date, shift},
		{"Cost (Cr)", cmp.Baseline.Cost.String(), cmp.Selected.Cost.String(), cmp.CostDelta.String()},
		{"Risk", strconv.Itoa(cmp.Baseline.Risk) + "/10", strconv.Itoa(cmp.Selected.Risk) + "/10", fmt.Sprintf("%+d (%s)", cmp.RiskDelta, cmp.RiskBand)},
	}
	return table(w, []string{"", "ORIGINAL", string(cmp.Scenario), "DELTA"}, rows)
}
