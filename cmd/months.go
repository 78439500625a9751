package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"clockedout/timesheet"
)

var monthsCmd = &cobra.Command{
	Use:   "months",
	Short: "List stored months, newest first",
	Example: `
  # List stored months
  clockedout months
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		summaries, err := a.store.Monthly().FetchAll(cmd.Context())
		if err != nil {
			return err
		}
		return printMonths(cmd.OutOrStdout(), summaries)
	},
}

func init() {
	rootCmd.AddCommand(monthsCmd)
}

func printMonths(out io.Writer, summaries []timesheet.MonthlySummary) error {
	if len(summaries) == 0 {
		fmt.Fprintln(out, "No months stored yet. Import one with: clockedout import -i FILE")
		return nil
	}

	rows := [][]string{{"Month", "Weekday Hours", "Weekend Hours", "Total Hours", "Weekday Rate", "Weekend Rate", "Salary", "Updated"}}
	for _, summary := range summaries {
		rows = append(rows, []string{
			summary.FormattedMonth(),
			hours(summary.WeekdayHours),
			hours(summary.WeekendHours),
			hours(summary.TotalHours()),
			money(summary.WeekdayRate),
			money(summary.WeekendRate),
			money(summary.Salary),
			summary.UpdatedAt,
		})
	}
	return renderTable(out, rows)
}
