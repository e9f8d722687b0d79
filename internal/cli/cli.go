// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package cli holds the suitetalk command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/suitetalk/internal/config"
	"github.com/hashicorp/suitetalk/m2m"
	"github.com/hashicorp/suitetalk/suitetalk"
	"github.com/spf13/cobra"
)

const (
	appName        = "suitetalk"
	defaultLimit   = 3
	defaultTimeout = 30 * time.Second
)

// Version is set at build time.
var Version = "0.1.0-dev"

// App wires the commands to their inputs and outputs.
type App struct {
	Out    io.Writer
	Err    io.Writer
	Lookup config.LookupFunc

	configPath string
	envFile    string
	logLevel   string
	timeout    time.Duration
}

// New returns an App writing to stdout and stderr and reading the process
// environment.
func New() *App {
	return &App{
		Out:    os.Stdout,
		Err:    os.Stderr,
		Lookup: os.LookupEnv,
	}
}

// Command builds the root command. Run without a subcommand it performs the
// whole flow: exchange for a token and list customers.
func (a *App) Command() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   appName,
		Short: "NetSuite SuiteTalk REST client using OAuth 2.0 client credentials",
		Long: `suitetalk authenticates to the NetSuite SuiteTalk REST API with the
OAuth 2.0 client credentials flow, using a JWT client assertion signed with
the certificate's private key (PS256), then lists customers.

Configuration is read from the environment, a .env file and an optional YAML
file:
  NETSUITE_ACCOUNT_ID
  NETSUITE_CLIENT_CREDENTIALS_CERTIFICATE_ID
  NETSUITE_API_CONSUMER_KEY
  NETSUITE_PRIVATE_KEY_PEM (or NETSUITE_PRIVATE_KEY_FILE)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd.Context(), func(ctx context.Context, s *session) error {
				return run(ctx, a.Out, s, limit)
			})
		},
	}
	cmd.SetOut(a.Out)
	cmd.SetErr(a.Err)

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "Config file path (YAML)")
	pf.StringVar(&a.envFile, "env-file", "", "Path of a .env file (default \"./.env\" if present)")
	pf.StringVar(&a.logLevel, "log-level", "warn", "Log level (trace, debug, info, warn, error)")
	pf.DurationVar(&a.timeout, "timeout", defaultTimeout, "Overall time limit")
	cmd.Flags().IntVarP(&limit, "limit", "n", defaultLimit, "Maximum number of customers to list")

	cmd.AddCommand(a.tokenCommand(), a.assertionCommand(), a.customersCommand(), a.versionCommand())
	return cmd
}

func (a *App) tokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Exchange a client assertion for an access token and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd.Context(), func(ctx context.Context, s *session) error {
				tk, err := s.tokens.Token(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(a.Out, string(tk.AccessToken))
				return nil
			})
		},
	}
}

func (a *App) assertionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "assertion",
		Short: "Print a signed client assertion without contacting the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd.Context(), func(_ context.Context, s *session) error {
				jwt, err := s.exchanger.Assertion()
				if err != nil {
					return err
				}
				fmt.Fprintln(a.Out, jwt)
				return nil
			})
		},
	}
}

func (a *App) customersCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "customers",
		Short: "Print customer ids, one per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd.Context(), func(ctx context.Context, s *session) error {
				ids, err := s.client.FindCustomerIDs(ctx, limit)
				if err != nil {
					return err
				}
				for _, id := range ids {
					fmt.Fprintln(a.Out, id)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", defaultLimit, "Maximum number of customers to list")
	return cmd
}

func (a *App) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(a.Out, "%s version %s\n", appName, Version)
		},
	}
}

// session holds the components for one invocation.
type session struct {
	config    *m2m.Config
	exchanger *m2m.Exchanger
	tokens    *m2m.TokenHolder
	client    *suitetalk.Client
}

func (a *App) withSession(ctx context.Context, fn func(context.Context, *session) error) error {
	logger, err := a.logger()
	if err != nil {
		return err
	}
	lookup := a.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	cfg, err := config.LoadWith(a.configPath, a.envFile, lookup)
	if err != nil {
		return err
	}
	s, err := newSession(cfg, logger)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	return fn(ctx, s)
}

func newSession(cfg *m2m.Config, logger hclog.Logger) (*session, error) {
	const op = "newSession"
	httpClient, err := cfg.HTTPClient()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	e, err := m2m.NewExchanger(cfg, m2m.WithHTTPClient(httpClient), m2m.WithLogger(logger.Named("m2m")))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	tokens, err := m2m.NewTokenHolder(e, m2m.WithLogger(logger.Named("tokens")))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c, err := suitetalk.NewClient(cfg, tokens, suitetalk.WithHTTPClient(httpClient), suitetalk.WithLogger(logger.Named("records")))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &session{config: cfg, exchanger: e, tokens: tokens, client: c}, nil
}

func (a *App) logger() (hclog.Logger, error) {
	level := hclog.LevelFromString(a.logLevel)
	if level == hclog.NoLevel {
		return nil, fmt.Errorf("unknown log level %q", a.logLevel)
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   appName,
		Level:  level,
		Output: a.Err,
	}), nil
}

// run is the default flow: report the account, obtain an access token and
// list up to limit customers.
func run(ctx context.Context, out io.Writer, s *session, limit int) error {
	fmt.Fprintf(out, "Account ID: %s\n", s.config.AccountID)

	tk, err := s.tokens.Token(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Initialize Application with Access Token: %s\n", string(tk.AccessToken))

	ids, err := s.client.FindCustomerIDs(ctx, limit)
	if err != nil {
		return err
	}
	if len(ids) > 0 {
		fmt.Fprintf(out, "Found %d out of %d customers\n", len(ids), limit)
	} else {
		fmt.Fprintln(out, "No customers found")
	}
	return nil
}
