package main

import (
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/grse/dashboard/internal/application"
	"github.com/grse/dashboard/internal/domain"
)

func newUsersCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List dashboard users (admin permission required)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := open(cmd.Context(), opts)
			if err != nil {
				return err
			}
			page, err := ws.views.Navigate(ws.ctx, ws.session, domain.PageAdmin)
			if err != nil {
				return err
			}
			if opts.JSON {
				return writeJSON(cmd.OutOrStdout(), page)
			}
			return printPage(cmd.OutOrStdout(), page)
		},
	}

	cmd.AddCommand(newUsersAddCmd(opts))
	cmd.AddCommand(newUsersDeleteCmd(opts))
	return cmd
}

func newUsersAddCmd(opts *globalOptions) *cobra.Command {
	var req application.CreateUserRequest

	cmd := &cobra.Command{
		Use:   "add --name <name> --login <username> --role <role> --user-password <pw> [--permissions home,projects]",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := openAdmin(cmd, opts)
			if err != nil {
				return err
			}
			if _, err := ws.admin.CreateUser(ws.ctx, req); err != nil {
				return err
			}
			return printUsers(cmd.OutOrStdout(), ws.admin.Users())
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "display name")
	cmd.Flags().StringVar(&req.Username, "login", "", "username of the new user")
	cmd.Flags().StringVar(&req.Role, "role", "", "role label")
	cmd.Flags().StringVar(&req.Password, "user-password", "", "password of the new user")
	cmd.Flags().StringSliceVar(&req.Permissions, "permissions", []string{"home"}, "permitted pages")

	return cmd
}

func newUsersDeleteCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return err
			}
			ws, err := openAdmin(cmd, opts)
			if err != nil {
				return err
			}
			if err := ws.admin.DeleteUser(ws.ctx, id); err != nil {
				return err
			}
			return printUsers(cmd.OutOrStdout(), ws.admin.Users())
		},
	}
}

// openAdmin logs in and refuses users without the admin page
func openAdmin(cmd *cobra.Command, opts *globalOptions) (*workspace, error) {
	ws, err := open(cmd.Context(), opts)
	if err != nil {
		return nil, err
	}
	if !application.IsAdmin(&ws.session.User) {
		return nil, application.ErrPageNotPermitted
	}
	return ws, nil
}

func printUsers(w io.Writer, users []domain.User) error {
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{
			strconv.FormatInt(u.ID, 10), u.Name, u.Username, u.Role,
			strings.Join(u.Permissions.Strings(), ","),
		})
	}
	return table(w, []string{"ID", "NAME", "USERNAME", "ROLE", "PERMISSIONS"}, rows)
}
