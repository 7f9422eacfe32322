package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fteboard/internal/core"
	"fteboard/internal/period"
	"fteboard/internal/services"
)

func newReportCmd(opts *options) *cobra.Command {
	var (
		fromFlag string
		toFlag   string
		strict   bool
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compute the FTE report of a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := parseRange(fromFlag, toFlag)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			s, err := opts.open(ctx, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.preload(ctx, opts, from, to); err != nil {
				return err
			}
			rep, err := s.Reports.PeriodReport(ctx, from, to, strict)
			if err != nil {
				return err
			}
			if opts.format == "json" {
				return writeJSON(cmd.OutOrStdout(), rep)
			}
			return printPeriodReport(cmd.OutOrStdout(), rep)
		},
	}
	cmd.Flags().StringVar(&fromFlag, "from", "", "First day of the range (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toFlag, "to", "", "Last day of the range (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Only accept OPS categories on OPS projects")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newMonthlyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "monthly <year> <month>",
		Short: "Compute the per-person FTE of one month",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, month, err := parseYearMonth(args[0], args[1])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			s, err := opts.open(ctx, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			first := core.NewDate(year, month, 1)
			if err := s.preload(ctx, opts, first, first.MonthEnd()); err != nil {
				return err
			}
			rep, err := s.Reports.Monthly(ctx, year, month)
			if err != nil {
				return err
			}
			if opts.format == "json" {
				return writeJSON(cmd.OutOrStdout(), rep)
			}
			return printMonthlyReport(cmd.OutOrStdout(), rep)
		},
	}
}

// preload imports [from, to] from the source named by the flags, if any.
func (s *session) preload(ctx context.Context, opts *options, from, to core.Date) error {
	name := opts.sourceName()
	if name == "" {
		return nil
	}
	run, err := s.Imports.Request(ctx, name, from, to)
	if err != nil {
		return fmt.Errorf("import %s: %w", name, err)
	}
	s.logger.Debug("Preloaded entries", "source", name, "rows", run.Rows, "rejected", run.Rejected)
	return nil
}

func printPeriodReport(w io.Writer, rep period.Report) error {
	t := rep.Totals
	fmt.Fprintf(w, "Period %s .. %s\n", rep.From, rep.To)
	fmt.Fprintf(w, "FTE %.2f (planned %.2f, deviation %+.1f%%), %d people, %.1f of %d hours\n",
		t.FTE, t.PlannedFTE, t.DeviationPercent, t.People, t.TrackedHours, t.WorkingHours)
	fmt.Fprintf(w, "Quality score %.1f%%, %d unpaired of %d entries\n\n", rep.QualityScore, rep.UnpairedCount, t.Entries)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PERSON\tHOURS\tFTE\tPLANNED\tDEVIATION")
	for _, p := range rep.People {
		fmt.Fprintf(tw, "%s\t%.1f\t%.2f\t%s\t%s\n", p.PersonName, p.TrackedHours, p.FTE,
			optional(p.PlannedFTE, "%.2f"), optional(p.DeviationPercent, "%+.1f%%"))
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "CATEGORY\tHOURS\tENTRIES\tSHARE")
	for _, c := range rep.Categories {
		fmt.Fprintf(tw, "%s\t%.1f\t%d\t%.1f%%\n", c.Category, c.TotalHours, c.EntryCount, c.Percentage)
	}
	return tw.Flush()
}

func printMonthlyReport(w io.Writer, rep services.MonthlyReport) error {
	wd := rep.WorkingDays
	fmt.Fprintf(w, "%04d-%02d: %d working hours\n", wd.Year, wd.Month, wd.WorkingHours)
	fmt.Fprintf(w, "Team FTE %.2f, average %.2f, %d members\n\n",
		rep.Stats.TotalFTE, rep.Stats.AverageFTE, rep.Stats.TeamMemberCount)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PERSON\tHOURS\tFTE\tPLANNED\tDEVIATION")
	for _, p := range rep.People {
		fmt.Fprintf(tw, "%s\t%.1f\t%.2f\t%s\t%s\n", p.PersonName, p.TrackedHours, p.FTE,
			optional(p.PlannedFTE, "%.2f"), optional(p.DeviationPercent, "%+.1f%%"))
	}
	return tw.Flush()
}

func optional(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}
