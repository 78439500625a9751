package report

import (
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

var (
	headerColor     = [3]int{0, 82, 147}
	headerTextColor = [3]int{255, 255, 255}
	bodyTextColor   = [3]int{33, 33, 33}
	lineColor       = [3]int{200, 200, 200}
)

type PDFWriter struct {
	// Now stamps the footer. Defaults to time.Now.
	Now func() time.Time
}

func (w *PDFWriter) Write(path string, report MonthlyReport) error {
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, tr("Generated "+now().Format("2006-01-02 15:04")), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "R", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 12, tr("  Time Tracking Report"), "", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 12)
	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	pdf.Ln(2)
	pdf.CellFormat(0, 8, tr(report.Summary.FormattedMonth()), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	section := func(title string) {
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, 8, tr(title))
		pdf.Ln(7)
		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
		pdf.Ln(3)
	}

	section("Totals")
	pdf.SetFillColor(240, 240, 240)
	totals := [][2]string{
		{"Weekday Hours", formatHours(report.Totals.WeekdayHours)},
		{"Weekend Hours", formatHours(report.Totals.WeekendHours)},
		{"Total Hours", formatHours(report.Totals.TotalHours)},
		{"Weekday Rate", formatHours(report.Summary.WeekdayRate)},
		{"Weekend Rate", formatHours(report.Summary.WeekendRate)},
		{"Salary", formatHours(report.Totals.Salary)},
	}
	for _, row := range totals {
		style := ""
		if row[0] == "Total Hours" || row[0] == "Salary" {
			style = "B"
		}
		pdf.SetFont("Arial", style, 10)
		pdf.CellFormat(95, 7, tr(row[0]), "", 0, "L", true, 0, "")
		pdf.CellFormat(95, 7, tr(row[1]), "", 1, "R", true, 0, "")
	}
	pdf.Ln(8)

	section("Weekly Breakdown")
	widths := []float64{70, 40, 40, 40}
	pdf.SetFont("Arial", "B", 10)
	for i, header := range csvHeaders {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(widths[i], 7, tr(header), "B", 0, align, false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, week := range report.WeeklyReports {
		pdf.CellFormat(widths[0], 7, tr(week.DisplayRange()), "", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, formatHours(week.WeekdayHours), "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, formatHours(week.WeekendHours), "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, formatHours(week.TotalHours()), "", 1, "R", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("save pdf output %s: %w", path, err)
	}
	return nil
}
