// Package report assembles stored monthly summaries into renderable reports
// and writes them as CSV, Excel or PDF.
package report

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"clockedout/apperr"
	"clockedout/internal/logging"
	"clockedout/timesheet"
)

// buildConcurrency bounds concurrent month assembly in BuildAll.
const buildConcurrency = 4

type Totals struct {
	WeekdayHours float64
	WeekendHours float64
	TotalHours   float64
	Salary       float64
}

// MonthlyReport is the object handed to a renderer.
type MonthlyReport struct {
	Summary       timesheet.MonthlySummary
	WeeklyReports []timesheet.WeeklyReport
	Totals        Totals
}

// New derives the totals of a report from its stored summary.
func New(summary timesheet.MonthlySummary, weekly []timesheet.WeeklyReport) MonthlyReport {
	return MonthlyReport{
		Summary:       summary,
		WeeklyReports: weekly,
		Totals: Totals{
			WeekdayHours: timesheet.Round2(summary.WeekdayHours),
			WeekendHours: timesheet.Round2(summary.WeekendHours),
			TotalHours:   timesheet.Round2(summary.WeekdayHours + summary.WeekendHours),
			Salary:       timesheet.Round2(summary.Salary),
		},
	}
}

type MonthlyReader interface {
	Fetch(ctx context.Context, month string) (timesheet.MonthlySummary, bool, error)
	FetchAll(ctx context.Context) ([]timesheet.MonthlySummary, error)
}

type WeeklyReader interface {
	Fetch(ctx context.Context, monthID int64) ([]timesheet.WeeklySummary, error)
	FetchRange(ctx context.Context, start, end time.Time) ([]timesheet.WeeklySummary, error)
}

type Builder struct {
	monthly  MonthlyReader
	weekly   WeeklyReader
	location *time.Location
	logger   *logging.Logger
}

func NewBuilder(monthly MonthlyReader, weekly WeeklyReader, location *time.Location, logger *logging.Logger) *Builder {
	if location == nil {
		location = time.UTC
	}
	return &Builder{
		monthly:  monthly,
		weekly:   weekly,
		location: location,
		logger:   logging.OrDiscard(logger, logging.ComponentReport),
	}
}

// Build loads one month and its weeks.
func (b *Builder) Build(ctx context.Context, month string) (MonthlyReport, error) {
	summary, found, err := b.monthly.Fetch(ctx, month)
	if err != nil {
		return MonthlyReport{}, err
	}
	if !found {
		return MonthlyReport{}, apperr.New(apperr.RecordNotFound, "month "+month)
	}
	return b.forSummary(ctx, summary)
}

func (b *Builder) forSummary(ctx context.Context, summary timesheet.MonthlySummary) (MonthlyReport, error) {
	stored, err := b.weekly.Fetch(ctx, summary.ID)
	if err != nil {
		return MonthlyReport{}, err
	}
	weekly, err := b.toReports(stored)
	if err != nil {
		return MonthlyReport{}, err
	}
	return New(summary, weekly), nil
}

func (b *Builder) toReports(stored []timesheet.WeeklySummary) ([]timesheet.WeeklyReport, error) {
	reports := make([]timesheet.WeeklyReport, 0, len(stored))
	for _, week := range stored {
		report, err := week.Report(b.location)
		if err != nil {
			return nil, apperr.Wrap(apperr.QueryFailed, "read stored week", err)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// BuildAll builds every stored month, newest first.
func (b *Builder) BuildAll(ctx context.Context) ([]MonthlyReport, error) {
	summaries, err := b.monthly.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	reports := make([]MonthlyReport, len(summaries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(buildConcurrency)
	for i, summary := range summaries {
		g.Go(func() error {
			report, err := b.forSummary(gctx, summary)
			if err != nil {
				return err
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b.logger.Debug("built monthly reports", "months", len(reports))
	return reports, nil
}

// RangeWeek is one stored week tagged with the month it belongs to.
type RangeWeek struct {
	Month string
	Week  timesheet.WeeklyReport
}

// BuildRange returns stored weeks overlapping [start, end], across months.
func (b *Builder) BuildRange(ctx context.Context, start, end time.Time) ([]RangeWeek, Totals, error) {
	stored, err := b.weekly.FetchRange(ctx, start, end)
	if err != nil {
		return nil, Totals{}, err
	}

	summaries, err := b.monthly.FetchAll(ctx)
	if err != nil {
		return nil, Totals{}, err
	}
	months := make(map[int64]string, len(summaries))
	for _, summary := range summaries {
		months[summary.ID] = summary.Month
	}

	weeks := make([]RangeWeek, 0, len(stored))
	var totals Totals
	for _, week := range stored {
		report, err := week.Report(b.location)
		if err != nil {
			return nil, Totals{}, apperr.Wrap(apperr.QueryFailed, "read stored week", err)
		}
		weeks = append(weeks, RangeWeek{Month: months[week.MonthID], Week: report})
		totals.WeekdayHours += report.WeekdayHours
		totals.WeekendHours += report.WeekendHours
	}
	sort.SliceStable(weeks, func(i, j int) bool { return weeks[i].Week.WeekStart.Before(weeks[j].Week.WeekStart) })

	totals.WeekdayHours = timesheet.Round2(totals.WeekdayHours)
	totals.WeekendHours = timesheet.Round2(totals.WeekendHours)
	totals.TotalHours = timesheet.Round2(totals.WeekdayHours + totals.WeekendHours)
	return weeks, totals, nil
}
