package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/pterm/pterm"

	"clockedout/apperr"
	"clockedout/report"
	"clockedout/timesheet"
)

var (
	boldGreen  = color.New(color.FgGreen, color.Bold).SprintFunc()
	boldYellow = color.New(color.FgYellow, color.Bold).SprintFunc()
	boldCyan   = color.New(color.FgCyan, color.Bold).SprintFunc()
)

// printError shows the user-facing message of err, the technical detail when
// it adds something, and a recovery hint.
func printError(err error) {
	message := apperr.UserMessage(err)
	pterm.Error.WithWriter(os.Stderr).Println(message)
	if detail := err.Error(); detail != message {
		fmt.Fprintln(os.Stderr, "  "+detail)
	}
	if hint := apperr.RecoverySuggestion(err); hint != "" {
		pterm.Info.WithWriter(os.Stderr).Println(hint)
	}
}

func renderTable(out io.Writer, rows [][]string) error {
	rendered, err := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithHeaderStyle(pterm.NewStyle(pterm.FgLightCyan)).
		WithData(pterm.TableData(rows)).
		Srender()
	if err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	_, err = fmt.Fprintln(out, rendered)
	return err
}

func money(value float64) string {
	return fmt.Sprintf("%.2f", value)
}

func hours(value float64) string {
	return fmt.Sprintf("%.2f", value)
}

func weeklyRows(weeks []timesheet.WeeklyReport) [][]string {
	rows := [][]string{{"Week", "Range", "Weekday Hours", "Weekend Hours", "Total Hours"}}
	for _, week := range weeks {
		rows = append(rows, []string{
			week.RangeLabel(),
			week.DisplayRange(),
			hours(week.WeekdayHours),
			hours(week.WeekendHours),
			hours(week.TotalHours()),
		})
	}
	return rows
}

func printMonthlyReport(out io.Writer, monthly report.MonthlyReport) error {
	summary := monthly.Summary
	fmt.Fprintf(out, "%s (%s)\n", boldCyan(summary.FormattedMonth()), summary.Month)
	if err := renderTable(out, weeklyRows(monthly.WeeklyReports)); err != nil {
		return err
	}
	fmt.Fprintf(out, "Weekday hours: %s at %s/h\n", hours(monthly.Totals.WeekdayHours), money(summary.WeekdayRate))
	fmt.Fprintf(out, "Weekend hours: %s at %s/h\n", hours(monthly.Totals.WeekendHours), money(summary.WeekendRate))
	fmt.Fprintf(out, "Total hours:   %s\n", hours(monthly.Totals.TotalHours))
	fmt.Fprintf(out, "Salary:        %s\n", boldGreen(money(monthly.Totals.Salary)))
	return nil
}
