// Package aggregate classifies time entries as weekday or weekend work and
// rolls them up into calendar weeks and a month total.
package aggregate

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"clockedout/apperr"
	"clockedout/internal/logging"
	"clockedout/internal/timeutil"
	"clockedout/timesheet"
)

// Policy decides which days of the week are billed at the weekday rate.
type Policy string

const (
	// PolicySunThu treats Sunday through Thursday as weekdays and Friday and
	// Saturday as the weekend. This is the default.
	PolicySunThu Policy = "sun-thu"
	// PolicyMonFri treats Monday through Friday as weekdays.
	PolicyMonFri Policy = "mon-fri"
)

func ParsePolicy(raw string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", PolicySunThu:
		return PolicySunThu, nil
	case PolicyMonFri:
		return PolicyMonFri, nil
	default:
		return "", fmt.Errorf("unsupported weekday policy %q (supported: %s|%s)", raw, PolicySunThu, PolicyMonFri)
	}
}

func (p Policy) Classify(day time.Weekday) timesheet.DayType {
	switch p {
	case PolicyMonFri:
		if day == time.Saturday || day == time.Sunday {
			return timesheet.Weekend
		}
	default:
		if day == time.Friday || day == time.Saturday {
			return timesheet.Weekend
		}
	}
	return timesheet.Weekday
}

func ParseWeekStart(raw string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	default:
		return time.Sunday, fmt.Errorf("unsupported week start %q (supported: sunday|monday)", raw)
	}
}

type Options struct {
	Policy    Policy
	WeekStart time.Weekday
	// Location is where day boundaries are evaluated. Defaults to UTC.
	Location *time.Location
	// Now anchors the empty-input report. Defaults to time.Now.
	Now func() time.Time
}

// Totals is the month-level roll-up of a set of entries.
type Totals struct {
	WeekdayHours float64
	WeekendHours float64
}

func (t Totals) TotalHours() float64 {
	return timesheet.Round2(t.WeekdayHours + t.WeekendHours)
}

// Summary is everything an import needs from one aggregation pass.
type Summary struct {
	MonthKey   string
	Weekly     []timesheet.WeeklyReport
	Totals     Totals
	EntryCount int
}

// Aggregator is stateless apart from its options and safe for concurrent use.
type Aggregator struct {
	policy    Policy
	weekStart time.Weekday
	location  *time.Location
	now       func() time.Time
	logger    *logging.Logger
}

func New(opts Options, logger *logging.Logger) *Aggregator {
	policy := opts.Policy
	if policy == "" {
		policy = PolicySunThu
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Aggregator{
		policy:    policy,
		weekStart: opts.WeekStart,
		location:  loc,
		now:       now,
		logger:    logging.OrDiscard(logger, logging.ComponentAggregate),
	}
}

func (a *Aggregator) Location() *time.Location {
	return a.location
}

func (a *Aggregator) Classify(entry timesheet.TimeEntry) timesheet.DayType {
	return a.policy.Classify(entry.Start.In(a.location).Weekday())
}

// WeekBounds returns the first and last day of the week containing t.
func (a *Aggregator) WeekBounds(t time.Time) (time.Time, time.Time) {
	return timeutil.WeekBounds(t.In(a.location), a.weekStart)
}

// GroupByWeek buckets entries by the start of their week, preserving input
// order inside each bucket.
func (a *Aggregator) GroupByWeek(entries []timesheet.TimeEntry) map[time.Time][]timesheet.TimeEntry {
	byWeek := make(map[time.Time][]timesheet.TimeEntry)
	for _, entry := range entries {
		start, _ := a.WeekBounds(entry.Start)
		byWeek[start] = append(byWeek[start], entry)
	}
	return byWeek
}

// WeeklyReports returns one report per week, sorted by week start. With no
// entries it returns a single zero report for the current week; callers
// should reject empty input before relying on the result.
func (a *Aggregator) WeeklyReports(entries []timesheet.TimeEntry) []timesheet.WeeklyReport {
	if len(entries) == 0 {
		start, end := a.WeekBounds(a.now())
		return []timesheet.WeeklyReport{{WeekStart: start, WeekEnd: end}}
	}

	byWeek := a.GroupByWeek(entries)
	starts := make([]time.Time, 0, len(byWeek))
	for start := range byWeek {
		starts = append(starts, start)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })

	reports := make([]timesheet.WeeklyReport, 0, len(starts))
	for _, start := range starts {
		reports = append(reports, a.summarizeWeek(start, byWeek[start]))
	}
	return reports
}

func (a *Aggregator) summarizeWeek(start time.Time, entries []timesheet.TimeEntry) timesheet.WeeklyReport {
	var weekdayMs, weekendMs int64
	for _, entry := range entries {
		if a.Classify(entry) == timesheet.Weekend {
			weekendMs += entry.DurationMs
		} else {
			weekdayMs += entry.DurationMs
		}
	}
	return timesheet.WeeklyReport{
		WeekStart:    start,
		WeekEnd:      start.AddDate(0, 0, 6),
		WeekdayHours: timesheet.Round2(timesheet.MillisToHours(weekdayMs)),
		WeekendHours: timesheet.Round2(timesheet.MillisToHours(weekendMs)),
	}
}

// MonthlyTotals sums the rounded weekly buckets so the month always equals
// the sum of its weeks.
func (a *Aggregator) MonthlyTotals(entries []timesheet.TimeEntry) Totals {
	if len(entries) == 0 {
		return Totals{}
	}
	return SumWeeks(a.WeeklyReports(entries))
}

func SumWeeks(reports []timesheet.WeeklyReport) Totals {
	var totals Totals
	for _, report := range reports {
		totals.WeekdayHours += report.WeekdayHours
		totals.WeekendHours += report.WeekendHours
	}
	totals.WeekdayHours = timesheet.Round2(totals.WeekdayHours)
	totals.WeekendHours = timesheet.Round2(totals.WeekendHours)
	return totals
}

// MonthKey formats the month of the first entry as "MM/YYYY".
func (a *Aggregator) MonthKey(entries []timesheet.TimeEntry) (string, error) {
	if len(entries) == 0 {
		return "", apperr.New(apperr.EmptyFile, "")
	}
	return timesheet.MonthKey(entries[0].Start.In(a.location)), nil
}

// Summarize runs the full aggregation for one import. Entries from months
// other than the first entry's are still counted towards that month.
func (a *Aggregator) Summarize(entries []timesheet.TimeEntry) (Summary, error) {
	monthKey, err := a.MonthKey(entries)
	if err != nil {
		return Summary{}, err
	}

	if months := distinctMonths(entries, a.location); len(months) > 1 {
		a.logger.Warn("entries span multiple months", "month", monthKey, "months", months)
	}

	weekly := a.WeeklyReports(entries)
	summary := Summary{
		MonthKey:   monthKey,
		Weekly:     weekly,
		Totals:     SumWeeks(weekly),
		EntryCount: len(entries),
	}
	a.logger.Debug("aggregated entries",
		"month", monthKey,
		"entries", summary.EntryCount,
		"weeks", len(weekly),
		"weekday_hours", summary.Totals.WeekdayHours,
		"weekend_hours", summary.Totals.WeekendHours,
		"policy", string(a.policy))
	return summary, nil
}

func distinctMonths(entries []timesheet.TimeEntry, loc *time.Location) []string {
	seen := make(map[string]struct{})
	months := make([]string, 0, 1)
	for _, entry := range entries {
		key := timesheet.MonthKey(entry.Start.In(loc))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		months = append(months, key)
	}
	return months
}

// MergeWeeks adds the hours of incoming weeks onto existing weeks that share a
// start date and returns the union sorted by week start.
func MergeWeeks(existing, incoming []timesheet.WeeklyReport) []timesheet.WeeklyReport {
	byStart := make(map[string]timesheet.WeeklyReport, len(existing)+len(incoming))
	for _, group := range [][]timesheet.WeeklyReport{existing, incoming} {
		for _, report := range group {
			key := report.WeekStart.Format(timesheet.DateLayout)
			current, ok := byStart[key]
			if !ok {
				byStart[key] = report
				continue
			}
			current.WeekdayHours = timesheet.Round2(current.WeekdayHours + report.WeekdayHours)
			current.WeekendHours = timesheet.Round2(current.WeekendHours + report.WeekendHours)
			byStart[key] = current
		}
	}

	keys := make([]string, 0, len(byStart))
	for key := range byStart {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	merged := make([]timesheet.WeeklyReport, 0, len(keys))
	for _, key := range keys {
		merged = append(merged, byStart[key])
	}
	return merged
}
