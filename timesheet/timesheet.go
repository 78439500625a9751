// Package timesheet holds the domain types shared by the importer, the
// aggregation engine, the repositories and the report writers.
package timesheet

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"clockedout/apperr"
)

const (
	// MonthKeyLayout formats a month key as "MM/YYYY".
	MonthKeyLayout = "01/2006"
	// DateLayout is the ISO8601 calendar date stored for week boundaries.
	DateLayout = "2006-01-02"
	// TimestampLayout is the ISO8601 instant stored for created/updated columns.
	TimestampLayout = time.RFC3339

	millisPerHour = 3_600_000
)

var monthKeyPattern = regexp.MustCompile(`^\d{2}/\d{4}$`)

type DayType int

const (
	Weekday DayType = iota
	Weekend
)

func (d DayType) String() string {
	if d == Weekend {
		return "weekend"
	}
	return "weekday"
}

// TimeEntry is one tracked interval. Entries only live for the duration of an
// import; their aggregated contribution is what gets persisted.
type TimeEntry struct {
	ID         uuid.UUID
	Start      time.Time
	DurationMs int64
}

func NewTimeEntry(start time.Time, durationMs int64) TimeEntry {
	return TimeEntry{ID: uuid.New(), Start: start, DurationMs: durationMs}
}

func (e TimeEntry) Hours() float64 {
	return MillisToHours(e.DurationMs)
}

func (e TimeEntry) Validate() error {
	if e.DurationMs < 0 {
		return apperr.New(apperr.NegativeValue, "Time Tracked")
	}
	return nil
}

// WeeklyReport is the in-memory aggregate for one calendar week.
type WeeklyReport struct {
	WeekStart    time.Time
	WeekEnd      time.Time
	WeekdayHours float64
	WeekendHours float64
}

func (r WeeklyReport) TotalHours() float64 {
	return Round2(r.WeekdayHours + r.WeekendHours)
}

// RangeLabel renders the compact "d-d/m" label used in CSV exports.
func (r WeeklyReport) RangeLabel() string {
	return fmt.Sprintf("%d-%d/%d", r.WeekStart.Day(), r.WeekEnd.Day(), int(r.WeekStart.Month()))
}

// DisplayRange renders "December 1 - 7".
func (r WeeklyReport) DisplayRange() string {
	return fmt.Sprintf("%s %d - %d", r.WeekStart.Month().String(), r.WeekStart.Day(), r.WeekEnd.Day())
}

// WeeklySummary is the persisted form of a WeeklyReport owned by a month.
type WeeklySummary struct {
	ID            int64
	MonthID       int64
	WeekStartDate string
	WeekEndDate   string
	WeekdayHours  float64
	WeekendHours  float64
	CreatedAt     string
}

func (s WeeklySummary) TotalHours() float64 {
	return Round2(s.WeekdayHours + s.WeekendHours)
}

// Report converts the stored week back into a WeeklyReport in loc.
func (s WeeklySummary) Report(loc *time.Location) (WeeklyReport, error) {
	if loc == nil {
		loc = time.UTC
	}
	start, err := time.ParseInLocation(DateLayout, s.WeekStartDate, loc)
	if err != nil {
		return WeeklyReport{}, fmt.Errorf("parse week start %q: %w", s.WeekStartDate, err)
	}
	end, err := time.ParseInLocation(DateLayout, s.WeekEndDate, loc)
	if err != nil {
		return WeeklyReport{}, fmt.Errorf("parse week end %q: %w", s.WeekEndDate, err)
	}
	return WeeklyReport{
		WeekStart:    start,
		WeekEnd:      end,
		WeekdayHours: s.WeekdayHours,
		WeekendHours: s.WeekendHours,
	}, nil
}

// SummaryFromReport builds the persisted row for report under monthID.
func SummaryFromReport(report WeeklyReport, monthID int64) WeeklySummary {
	return WeeklySummary{
		MonthID:       monthID,
		WeekStartDate: report.WeekStart.Format(DateLayout),
		WeekEndDate:   report.WeekEnd.Format(DateLayout),
		WeekdayHours:  Round2(report.WeekdayHours),
		WeekendHours:  Round2(report.WeekendHours),
	}
}

// HourlyRates is the weekday/weekend rate pair applied to aggregated hours.
type HourlyRates struct {
	Weekday float64
	Weekend float64
}

// MonthlySummary is the persisted aggregate for one month. Salary must always
// equal WeekdayHours*WeekdayRate + WeekendHours*WeekendRate rounded to cents.
type MonthlySummary struct {
	ID           int64
	Month        string
	WeekdayHours float64
	WeekendHours float64
	WeekdayRate  float64
	WeekendRate  float64
	Salary       float64
	CreatedAt    string
	UpdatedAt    string
}

func (m MonthlySummary) TotalHours() float64 {
	return Round2(m.WeekdayHours + m.WeekendHours)
}

func (m MonthlySummary) Rates() HourlyRates {
	return HourlyRates{Weekday: m.WeekdayRate, Weekend: m.WeekendRate}
}

// FormattedMonth converts "12/2025" to "December 2025". Malformed keys are
// returned unchanged.
func (m MonthlySummary) FormattedMonth() string {
	parsed, err := ParseMonthKey(m.Month)
	if err != nil {
		return m.Month
	}
	return parsed.Format("January 2006")
}

// ImportPreview is the pending import decision shown before committing.
type ImportPreview struct {
	Month         string
	WeekdayHours  float64
	WeekendHours  float64
	EntryCount    int
	RowsSkipped   int
	Rates         HourlyRates
	Salary        float64
	ExistingMonth bool
}

func (p ImportPreview) TotalHours() float64 {
	return Round2(p.WeekdayHours + p.WeekendHours)
}

func MillisToHours(ms int64) float64 {
	return float64(ms) / millisPerHour
}

func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}

func MonthKey(t time.Time) string {
	return t.Format(MonthKeyLayout)
}

func ValidMonthKey(key string) bool {
	if !monthKeyPattern.MatchString(key) {
		return false
	}
	month, err := strconv.Atoi(key[:2])
	return err == nil && month >= 1 && month <= 12
}

// ParseMonthKey returns the first instant of the month in UTC.
func ParseMonthKey(key string) (time.Time, error) {
	key = strings.TrimSpace(key)
	if !ValidMonthKey(key) {
		return time.Time{}, apperr.New(apperr.InvalidFormat, fmt.Sprintf("month key %q must be MM/YYYY", key))
	}
	return time.Parse(MonthKeyLayout, key)
}

func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
