package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/grse/dashboard/internal/application"
	"github.com/grse/dashboard/internal/domain"
	"github.com/grse/dashboard/internal/infrastructure/backend"
	"github.com/grse/dashboard/internal/infrastructure/repository/memory"
	"github.com/grse/dashboard/internal/pkg/config"
	"github.com/grse/dashboard/internal/pkg/logger"
)

type globalOptions struct {
	BackendURL string
	Username   string
	Password   string
	Timeout    time.Duration
	JSON       bool
	Verbose    bool
}

// workspace is a logged-in set of services for one command run
type workspace struct {
	ctx     context.Context
	session *domain.Session
	views   *application.ViewRouter
	admin   *application.AdminController
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "dashctl",
		Short:         "Terminal client for the GRSE dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := "warn"
			if opts.Verbose {
				level = "debug"
			}
			logger.InitWithWriter(cmd.ErrOrStderr(), level)

			if strings.TrimSpace(opts.BackendURL) != "" {
				return nil
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts.BackendURL = cfg.Backend.BaseURL
			if opts.Timeout == 0 {
				opts.Timeout = cfg.Backend.Timeout()
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.BackendURL, "backend-url", "", "backend base URL (default from config backend.base_url)")
	cmd.PersistentFlags().StringVarP(&opts.Username, "username", "u", "", "login username")
	cmd.PersistentFlags().StringVarP(&opts.Password, "password", "p", "", "login password (or DASHCTL_PASSWORD)")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 0, "backend request timeout, 0 for none")
	cmd.PersistentFlags().BoolVar(&opts.JSON, "json", false, "print JSON instead of tables")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging to stderr")

	cmd.AddCommand(newStatusCmd(opts))
	cmd.AddCommand(newPagesCmd(opts))
	cmd.AddCommand(newWhatIfCmd(opts))
	cmd.AddCommand(newUsersCmd(opts))
	return cmd
}

// open logs in and wires the services a command needs. Requests made with
// ws.ctx carry the session token upstream.
func open(ctx context.Context, opts *globalOptions) (*workspace, error) {
	if strings.TrimSpace(opts.Username) == "" {
		return nil, errors.New("--username is required")
	}
	if opts.Password == "" {
		opts.Password = os.Getenv("DASHCTL_PASSWORD")
	}
	if opts.Password == "" {
		return nil, errors.New("--password is required")
	}

	client := backend.NewClient(opts.BackendURL, opts.Timeout)
	gate := application.NewSessionGate(client, memory.NewSessionRepository(), "dashctl-local", "dashctl", time.Hour)
	admin := application.NewAdminController(client)
	views := application.NewViewRouter(gate, application.NewDashboardService(client, nil), admin)

	issued, err := gate.Login(ctx, domain.Credentials{Username: opts.Username, Password: opts.Password})
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	return &workspace{
		ctx:     backend.WithToken(ctx, issued.Token),
		session: issued.Session,
		views:   views,
		admin:   admin,
	}, nil
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
