package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grse/dashboard/internal/infrastructure/backend"
)

func newStatusCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the backend health message",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := backend.NewClient(opts.BackendURL, opts.Timeout)
			msg, err := client.Status(cmd.Context())
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "Failed to connect to the backend.")
				return err
			}

			if opts.JSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"message": msg, "connected": true})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), msg)
			return err
		},
	}
}
