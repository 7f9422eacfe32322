package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fteboard/internal/core"
)

func newWorkdaysCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "workdays <year> <month>",
		Short: "Show working days, holidays and working hours of a month",
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

			res, err := s.Reports.WorkingDays(ctx, year, month)
			if err != nil {
				return err
			}
			if opts.format == "json" {
				return writeJSON(cmd.OutOrStdout(), res)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%04d-%02d: %d working days, %d hours (%d weekdays, %d holidays)\n",
				res.Year, res.Month, res.WorkingDays, res.WorkingHours, res.Weekdays, len(res.Holidays))
			for _, h := range res.Holidays {
				fmt.Fprintf(out, "  %s  %s\n", h.Date, h.Name)
			}
			return nil
		},
	}
}

func newHoursCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "hours <from> <to>",
		Short: "Show working hours of a date range, month by month",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := parseRange(args[0], args[1])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			s, err := opts.open(ctx, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			rep, err := s.Reports.WorkingHours(ctx, from, to)
			if err != nil {
				return err
			}
			if opts.format == "json" {
				return writeJSON(cmd.OutOrStdout(), rep)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "MONTH\tWORKING DAYS\tHOURS")
			for _, m := range rep.Months {
				fmt.Fprintf(tw, "%04d-%02d\t%d\t%d\n", m.Year, m.Month, m.WorkingDays, m.WorkingHours)
			}
			fmt.Fprintf(tw, "total\t\t%d\n", rep.WorkingHours)
			return tw.Flush()
		},
	}
}

func parseYearMonth(y, m string) (int, int, error) {
	year, err := strconv.Atoi(y)
	if err != nil || year < 1 || year > 9999 {
		return 0, 0, fmt.Errorf("invalid year %q", y)
	}
	month, err := strconv.Atoi(m)
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("invalid month %q", m)
	}
	return year, month, nil
}

func parseRange(f, t string) (core.Date, core.Date, error) {
	from, err := core.ParseDate(f)
	if err != nil {
		return core.Date{}, core.Date{}, err
	}
	to, err := core.ParseDate(t)
	if err != nil {
		return core.Date{}, core.Date{}, err
	}
	if err := core.ValidateRange(from, to); err != nil {
		return core.Date{}, core.Date{}, fmt.Errorf("%w: %s..%s", err, from, to)
	}
	return from, to, nil
}
