package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

var csvHeaders = []string{"Week Range", "Weekday Hours", "Weekend Hours", "Total Hours"}

type CSVWriter struct{}

func (w *CSVWriter) Write(path string, report MonthlyReport) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv output %s: %w", path, err)
	}
	defer file.Close()

	if err := WriteCSV(file, report); err != nil {
		return err
	}
	return file.Close()
}

// WriteCSV renders one row per week, a blank line, then the totals and salary rows.
func WriteCSV(out io.Writer, report MonthlyReport) error {
	writer := csv.NewWriter(out)

	if err := writer.Write(csvHeaders); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}

	for _, week := range report.WeeklyReports {
		row := []string{
			week.RangeLabel(),
			formatHours(week.WeekdayHours),
			formatHours(week.WeekendHours),
			formatHours(week.TotalHours()),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	footer := [][]string{
		{},
		{"Totals", formatHours(report.Totals.WeekdayHours), formatHours(report.Totals.WeekendHours), formatHours(report.Totals.TotalHours)},
		{"Salary", formatHours(report.Totals.Salary)},
	}
	for _, row := range footer {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv footer: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv output: %w", err)
	}
	return nil
}

func formatHours(value float64) string {
	return fmt.Sprintf("%.2f", value)
}
