package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"fteboard/internal/backend"
	"fteboard/internal/cli"
	"fteboard/internal/config"
	"fteboard/internal/core"
	"fteboard/internal/log"
)

func newImportCmd(opts *options) *cobra.Command {
	var (
		fromFlag   string
		toFlag     string
		sourceFlag string
		fromEnv    bool
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import timesheet entries of a date range into the store",
		Long: `import fetches [from, to] from a source and replaces the stored entries of
that range. With --env the backend, source and broker are taken from the
environment (and .env) exactly as the server reads them; a configured broker
queues the run for the worker instead of running it here.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := parseRange(fromFlag, toFlag)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			var s *session
			if fromEnv {
				s, err = openFromEnv(ctx, opts, cmd)
			} else {
				s, err = opts.open(ctx, cmd)
			}
			if err != nil {
				return err
			}
			defer s.Close()

			name := sourceFlag
			if name == "" {
				name = opts.sourceName()
			}
			run, err := s.Imports.Request(ctx, name, from, to)
			if err != nil && run.Status != core.ImportFailed {
				return err
			}
			if opts.format == "json" {
				if err := writeJSON(cmd.OutOrStdout(), run); err != nil {
					return err
				}
			} else {
				printRun(cmd, run)
			}
			if run.Status == core.ImportFailed {
				return fmt.Errorf("import failed: %s", run.Error)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&fromFlag, "from", "", "First day of the range (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toFlag, "to", "", "Last day of the range (YYYY-MM-DD)")
	cmd.Flags().StringVar(&sourceFlag, "source", "", "Source name (default: the configured source)")
	cmd.Flags().BoolVar(&fromEnv, "env", false, "Read backend and source settings from the environment")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func openFromEnv(ctx context.Context, opts *options, cmd *cobra.Command) (*session, error) {
	cli.LoadEnvFile()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	logger := opts.logger(cmd.ErrOrStderr())
	res, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("open backend: %w", err)
	}
	return &session{App: cli.NewApp(res, cfg, logger), res: res, logger: logger}, nil
}

func printRun(cmd *cobra.Command, run core.ImportRun) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Import %s from %s (%s .. %s): %s\n", run.ID, run.Source, run.DateFrom, run.DateTo, run.Status)
	if run.Status == core.ImportDone {
		fmt.Fprintf(out, "%d rows stored, %d rejected, %d unpaired\n", run.Rows, run.Rejected, run.Unpaired)
	}
}
