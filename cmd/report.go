package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"clockedout/apperr"
	"clockedout/internal/timeutil"
	"clockedout/report"
	"clockedout/timesheet"
)

var (
	reportMonth string
	reportFrom  string
	reportTo    string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show a stored month or a date range week by week",
	Long: `Show the weekly breakdown and totals of one stored month (--month), or every
stored week overlapping a date range (--from/--to, format YYYY-MM-DD).`,
	Example: `
  # One month
  clockedout report --month 12/2025

  # All weeks touching a date range, across months
  clockedout report --from 2025-11-15 --to 2025-12-15

  # From a date to the end of its month
  clockedout report --from 2025-12-10
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rangeMode := strings.TrimSpace(reportFrom) != "" || strings.TrimSpace(reportTo) != ""
		if rangeMode && strings.TrimSpace(reportMonth) != "" {
			return fmt.Errorf("use either --month or --from/--to")
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		builder := a.reports()

		if rangeMode {
			start, end, err := parseDateRange(reportFrom, reportTo, a.location)
			if err != nil {
				return err
			}
			weeks, totals, err := builder.BuildRange(cmd.Context(), start, end)
			if err != nil {
				return err
			}
			return printRangeReport(out, start, end, weeks, totals)
		}

		month, err := parseMonthFlag(reportMonth)
		if err != nil {
			return err
		}
		monthly, err := builder.Build(cmd.Context(), month)
		if err != nil {
			return err
		}
		return printMonthlyReport(out, monthly)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportMonth, "month", "", "Month to show (MM/YYYY)")
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "Range start date (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "Range end date (YYYY-MM-DD)")
}

// parseDateRange fills a missing bound from the other one: --from alone runs
// to the end of its month, --to alone starts on the first of its month.
func parseDateRange(fromRaw, toRaw string, loc *time.Location) (time.Time, time.Time, error) {
	fromRaw, toRaw = strings.TrimSpace(fromRaw), strings.TrimSpace(toRaw)
	if fromRaw == "" && toRaw == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("--from or --to is required")
	}

	var start, end time.Time
	if fromRaw != "" {
		parsed, err := time.ParseInLocation(timesheet.DateLayout, fromRaw, loc)
		if err != nil {
			return time.Time{}, time.Time{}, apperr.Wrap(apperr.InvalidDate, "--from "+fromRaw, err)
		}
		start = parsed
	}
	if toRaw != "" {
		parsed, err := time.ParseInLocation(timesheet.DateLayout, toRaw, loc)
		if err != nil {
			return time.Time{}, time.Time{}, apperr.Wrap(apperr.InvalidDate, "--to "+toRaw, err)
		}
		end = parsed
	}

	switch {
	case fromRaw == "":
		start = timeutil.StartOfMonth(end)
	case toRaw == "":
		end = timeutil.StartOfMonth(start).AddDate(0, 1, -1)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, apperr.New(apperr.OutOfRange, "--to must not be before --from")
	}
	return start, end, nil
}

func printRangeReport(out io.Writer, start, end time.Time, weeks []report.RangeWeek, totals report.Totals) error {
	fmt.Fprintf(out, "Weeks overlapping %s .. %s\n", start.Format(timesheet.DateLayout), end.Format(timesheet.DateLayout))
	if len(weeks) == 0 {
		fmt.Fprintln(out, "No stored weeks in this range.")
		return nil
	}

	rows := [][]string{{"Month", "Week", "Range", "Weekday Hours", "Weekend Hours", "Total Hours"}}
	for _, week := range weeks {
		rows = append(rows, []string{
			week.Month,
			week.Week.RangeLabel(),
			week.Week.DisplayRange(),
			hours(week.Week.WeekdayHours),
			hours(week.Week.WeekendHours),
			hours(week.Week.TotalHours()),
		})
	}
	if err := renderTable(out, rows); err != nil {
		return err
	}
	fmt.Fprintf(out, "Weekday hours: %s, Weekend hours: %s, Total hours: %s\n",
		hours(totals.WeekdayHours), hours(totals.WeekendHours), boldGreen(hours(totals.TotalHours)))
	return nil
}
