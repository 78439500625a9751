package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

type ExcelWriter struct{}

func (w *ExcelWriter) Write(path string, report MonthlyReport) error {
	file := excelize.NewFile()
	defer file.Close()

	sheet := file.GetSheetName(0)
	if name := report.Summary.FormattedMonth(); name != "" {
		if err := file.SetSheetName(sheet, name); err == nil {
			sheet = name
		}
	}

	rows := make([][]any, 0, len(report.WeeklyReports)+4)
	rows = append(rows, []any{csvHeaders[0], csvHeaders[1], csvHeaders[2], csvHeaders[3]})
	for _, week := range report.WeeklyReports {
		rows = append(rows, []any{week.RangeLabel(), week.WeekdayHours, week.WeekendHours, week.TotalHours()})
	}
	rows = append(rows,
		[]any{},
		[]any{"Totals", report.Totals.WeekdayHours, report.Totals.WeekendHours, report.Totals.TotalHours},
		[]any{"Salary", report.Totals.Salary},
	)

	for i, values := range rows {
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+1)
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("set excel value %s: %w", cell, err)
			}
		}
	}

	if err := file.SetColWidth(sheet, "A", "D", 16); err != nil {
		return fmt.Errorf("set excel column width: %w", err)
	}

	if err := file.SaveAs(path); err != nil {
		return fmt.Errorf("save excel output %s: %w", path, err)
	}
	return nil
}
