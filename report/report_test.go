package report

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"clockedout/apperr"
	"clockedout/timesheet"
)

type fakeMonthly struct {
	summaries []timesheet.MonthlySummary
	err       error
}

func (f *fakeMonthly) Fetch(_ context.Context, month string) (timesheet.MonthlySummary, bool, error) {
	if f.err != nil {
		return timesheet.MonthlySummary{}, false, f.err
	}
	for _, summary := range f.summaries {
		if summary.Month == month {
			return summary, true, nil
		}
	}
	return timesheet.MonthlySummary{}, false, nil
}

func (f *fakeMonthly) FetchAll(context.Context) ([]timesheet.MonthlySummary, error) {
	return f.summaries, f.err
}

type fakeWeekly struct {
	byMonth map[int64][]timesheet.WeeklySummary
}

func (f *fakeWeekly) Fetch(_ context.Context, monthID int64) ([]timesheet.WeeklySummary, error) {
	return f.byMonth[monthID], nil
}

func (f *fakeWeekly) FetchRange(_ context.Context, start, end time.Time) ([]timesheet.WeeklySummary, error) {
	from, to := start.Format(timesheet.DateLayout), end.Format(timesheet.DateLayout)
	var weeks []timesheet.WeeklySummary
	for _, group := range f.byMonth {
		for _, week := range group {
			if week.WeekStartDate <= to && week.WeekEndDate >= from {
				weeks = append(weeks, week)
			}
		}
	}
	return weeks, nil
}

func sampleBuilder() *Builder {
	monthly := &fakeMonthly{summaries: []timesheet.MonthlySummary{
		{ID: 2, Month: "12/2025", WeekdayHours: 7, WeekendHours: 4, WeekdayRate: 90, WeekendRate: 100, Salary: 1030},
		{ID: 1, Month: "11/2025", WeekdayHours: 8, WeekendHours: 0, WeekdayRate: 90, WeekendRate: 100, Salary: 720},
	}}
	weekly := &fakeWeekly{byMonth: map[int64][]timesheet.WeeklySummary{
		1: {
			{MonthID: 1, WeekStartDate: "2025-11-23", WeekEndDate: "2025-11-29", WeekdayHours: 8},
		},
		2: {
			{MonthID: 2, WeekStartDate: "2025-11-30", WeekEndDate: "2025-12-06", WeekdayHours: 3, WeekendHours: 4},
			{MonthID: 2, WeekStartDate: "2025-12-07", WeekEndDate: "2025-12-13", WeekdayHours: 4},
		},
	}}
	return NewBuilder(monthly, weekly, time.UTC, nil)
}

func TestBuild(t *testing.T) {
	t.Parallel()

	report, err := sampleBuilder().Build(context.Background(), "12/2025")
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if len(report.WeeklyReports) != 2 {
		t.Fatalf("expected 2 weeks, got %d", len(report.WeeklyReports))
	}
	want := Totals{WeekdayHours: 7, WeekendHours: 4, TotalHours: 11, Salary: 1030}
	if report.Totals != want {
		t.Fatalf("unexpected totals: want %+v, got %+v", want, report.Totals)
	}
	if got := report.WeeklyReports[0].RangeLabel(); got != "30-6/11" {
		t.Fatalf("unexpected first week label: %q", got)
	}

	if _, err := sampleBuilder().Build(context.Background(), "01/2020"); !apperr.Is(err, apperr.RecordNotFound) {
		t.Fatalf("expected RecordNotFound, got %v", err)
	}
}

func TestBuildAllKeepsOrder(t *testing.T) {
	t.Parallel()

	reports, err := sampleBuilder().BuildAll(context.Background())
	if err != nil {
		t.Fatalf("build all: %v", err)
	}
	if len(reports) != 2 || reports[0].Summary.Month != "12/2025" || reports[1].Summary.Month != "11/2025" {
		t.Fatalf("unexpected report order: %+v", reports)
	}
	if len(reports[1].WeeklyReports) != 1 {
		t.Fatalf("unexpected weeks for november: %d", len(reports[1].WeeklyReports))
	}

	failing := NewBuilder(&fakeMonthly{err: apperr.New(apperr.QueryFailed, "boom")}, &fakeWeekly{}, nil, nil)
	if _, err := failing.BuildAll(context.Background()); !apperr.Is(err, apperr.QueryFailed) {
		t.Fatalf("expected QueryFailed, got %v", err)
	}
}

func TestBuildRange(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, time.November, 25, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.December, 3, 0, 0, 0, 0, time.UTC)
	weeks, totals, err := sampleBuilder().BuildRange(context.Background(), start, end)
	if err != nil {
		t.Fatalf("build range: %v", err)
	}

	if len(weeks) != 2 {
		t.Fatalf("expected 2 weeks, got %+v", weeks)
	}
	if weeks[0].Month != "11/2025" || weeks[1].Month != "12/2025" {
		t.Fatalf("unexpected months: %s, %s", weeks[0].Month, weeks[1].Month)
	}
	if totals.WeekdayHours != 11 || totals.WeekendHours != 4 || totals.TotalHours != 15 {
		t.Fatalf("unexpected totals: %+v", totals)
	}
}

func sampleReport(t *testing.T) MonthlyReport {
	t.Helper()
	report, err := sampleBuilder().Build(context.Background(), "12/2025")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return report
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleReport(t)); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	want := strings.Join([]string{
		"Week Range,Weekday Hours,Weekend Hours,Total Hours",
		"30-6/11,3.00,4.00,7.00",
		"7-13/12,4.00,0.00,4.00",
		"",
		"Totals,7.00,4.00,11.00",
		"Salary,1030.00",
		"",
	}, "\n")
	if buf.String() != want {
		t.Fatalf("unexpected csv:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWritersCreateFiles(t *testing.T) {
	t.Parallel()

	report := sampleReport(t)
	dir := t.TempDir()

	for _, format := range []string{FormatCSV, FormatExcel, FormatPDF} {
		writer, err := WriterForFormat(format)
		if err != nil {
			t.Fatalf("writer for %s: %v", format, err)
		}
		path := filepath.Join(dir, FileName(report.Summary.Month, format))
		if err := writer.Write(path, report); err != nil {
			t.Fatalf("write %s: %v", format, err)
		}
		info, err := os.Stat(path)
		if err != nil || info.Size() == 0 {
			t.Fatalf("expected %s output at %s: %v", format, path, err)
		}
	}

	pdfData, err := os.ReadFile(filepath.Join(dir, "report-2025-12.pdf"))
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	if !bytes.HasPrefix(pdfData, []byte("%PDF")) {
		t.Fatalf("pdf output lacks header")
	}

	book, err := excelize.OpenFile(filepath.Join(dir, "report-2025-12.xlsx"))
	if err != nil {
		t.Fatalf("open excel: %v", err)
	}
	defer book.Close()

	sheet := book.GetSheetName(0)
	if sheet != "December 2025" {
		t.Fatalf("unexpected sheet name: %q", sheet)
	}
	if got, _ := book.GetCellValue(sheet, "A2"); got != "30-6/11" {
		t.Fatalf("unexpected A2: %q", got)
	}
	if got, _ := book.GetCellValue(sheet, "A5"); got != "Totals" {
		t.Fatalf("unexpected A5: %q", got)
	}
	if got, _ := book.GetCellValue(sheet, "B6"); got != "1030" {
		t.Fatalf("unexpected salary cell: %q", got)
	}
}

func TestDetectFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path     string
		explicit string
		want     string
		wantErr  bool
	}{
		{path: "out.csv", want: FormatCSV},
		{path: "OUT.XLSX", want: FormatExcel},
		{path: "out.pdf", want: FormatPDF},
		{path: "out.txt", explicit: "xlsx", want: FormatExcel},
		{path: "out.csv", explicit: "PDF", want: FormatPDF},
		{path: "out.txt", wantErr: true},
		{path: "out.csv", explicit: "docx", wantErr: true},
	}

	for _, tc := range tests {
		got, err := DetectFormat(tc.path, tc.explicit)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("expected error for %q", tc.path)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("DetectFormat(%q, %q): want %s, got %s (%v)", tc.path, tc.explicit, tc.want, got, err)
		}
	}

	if _, err := WriterForFormat("docx"); err == nil {
		t.Fatalf("expected error for unsupported writer")
	}
	if got := FileName("03/2026", FormatExcel); got != "report-2026-03.xlsx" {
		t.Fatalf("unexpected file name: %q", got)
	}
}

func TestBuildPropagatesWeeklyErrors(t *testing.T) {
	t.Parallel()

	monthly := &fakeMonthly{summaries: []timesheet.MonthlySummary{{ID: 1, Month: "12/2025", WeekdayRate: 1, WeekendRate: 1}}}
	weekly := &fakeWeekly{byMonth: map[int64][]timesheet.WeeklySummary{
		1: {{MonthID: 1, WeekStartDate: "bad", WeekEndDate: "2025-12-06"}},
	}}
	_, err := NewBuilder(monthly, weekly, nil, nil).Build(context.Background(), "12/2025")
	if !apperr.Is(err, apperr.QueryFailed) {
		t.Fatalf("expected QueryFailed, got %v", err)
	}
	if errors.Unwrap(err) == nil {
		t.Fatalf("expected wrapped cause")
	}
}
