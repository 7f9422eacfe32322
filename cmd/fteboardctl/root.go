package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"fteboard/internal/backend"
	"fteboard/internal/cli"
	"fteboard/internal/config"
	"fteboard/internal/log"
	srcmemory "fteboard/internal/source/memory"
	"fteboard/internal/source/xlsx"
)

// options are the flags shared by every subcommand.
type options struct {
	format  string
	country string
	db      string
	seed    string
	xlsx    string
	sheet   string
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "fteboardctl",
		Short: "Working-time and FTE reports from the command line",
		Long: `fteboardctl answers calendar questions and computes FTE reports
without a running server. Data comes from a SQLite database (--db), a JSON
seed file (--seed) or an Excel export (--xlsx); without --db everything is
kept in memory for the duration of the command.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.checkFormat()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.format, "format", "text", "Output format: text, json")
	pf.StringVar(&opts.country, "country", "CZ", "Holiday calendar country code")
	pf.StringVar(&opts.db, "db", "", "SQLite database path")
	pf.StringVar(&opts.seed, "seed", "", "JSON file of timesheet entries to import first")
	pf.StringVar(&opts.xlsx, "xlsx", "", "Excel timesheet export to import first")
	pf.StringVar(&opts.sheet, "sheet", "", "Sheet of the --xlsx workbook (default: first sheet)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug output to stderr")

	root.AddCommand(newWorkdaysCmd(opts))
	root.AddCommand(newHoursCmd(opts))
	root.AddCommand(newReportCmd(opts))
	root.AddCommand(newMonthlyCmd(opts))
	root.AddCommand(newClassifyCmd(opts))
	root.AddCommand(newImportCmd(opts))
	return root
}

// Execute is the entry point called from main.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (o *options) logger(errOut io.Writer) *log.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return log.New(log.Config{Level: level, Component: log.ComponentApp, Format: "text", Output: errOut})
}

func (o *options) backendConfig() backend.Config {
	cfg := backend.Config{
		Type:           backend.MemoryBackend,
		Source:         backend.MemorySource,
		SeedPath:       o.seed,
		HolidayCountry: o.country,
	}
	if o.db != "" {
		cfg.Type = backend.SQLiteBackend
		cfg.SQLiteDBPath = o.db
	}
	if o.xlsx != "" {
		cfg.Source = backend.XLSXSource
		cfg.XLSXPath = o.xlsx
		cfg.XLSXSheet = o.sheet
	}
	return cfg
}

// sourceName picks the source named by the flags, or "" when none was given.
func (o *options) sourceName() string {
	switch {
	case o.xlsx != "":
		return xlsx.Name
	case o.seed != "":
		return srcmemory.Name
	}
	return ""
}

// session is an opened backend with its services.
type session struct {
	*cli.App
	res    *backend.Result
	logger *log.Logger
}

func (s *session) Close() error {
	return s.res.Cleanup()
}

func (o *options) open(ctx context.Context, cmd *cobra.Command) (*session, error) {
	logger := o.logger(cmd.ErrOrStderr())
	bcfg := o.backendConfig()
	res, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("open backend: %w", err)
	}
	app := cli.NewApp(res, &config.Config{HolidayCountry: o.country}, logger)
	return &session{App: app, res: res, logger: logger}, nil
}

func (o *options) checkFormat() error {
	switch o.format {
	case "text", "json":
		return nil
	}
	return fmt.Errorf("unknown format %q (want text or json)", o.format)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
