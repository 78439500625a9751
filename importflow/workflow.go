// Package importflow drives one import from raw CSV bytes to persisted
// summaries: parse, preview, let the caller pick rates and an action, commit.
//
// A Workflow is single-flight. While it is parsing or committing every other
// call that would change state fails with ErrBusy.
package importflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"clockedout/aggregate"
	"clockedout/apperr"
	"clockedout/importer"
	"clockedout/internal/logging"
	"clockedout/salary"
	"clockedout/timesheet"
)

type State int

const (
	StateIdle State = iota
	StateParsing
	StatePreviewing
	StateCommitting
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateParsing:
		return "parsing"
	case StatePreviewing:
		return "previewing"
	case StateCommitting:
		return "committing"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type Action int

const (
	// ActionReplace overwrites the stored month with the fresh totals.
	ActionReplace Action = iota
	// ActionAccumulate adds the fresh totals to the stored month.
	ActionAccumulate
)

func (a Action) String() string {
	if a == ActionAccumulate {
		return "accumulate"
	}
	return "replace"
}

func ParseAction(raw string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "replace":
		return ActionReplace, nil
	case "accumulate":
		return ActionAccumulate, nil
	default:
		return ActionReplace, fmt.Errorf("unsupported import action %q (supported: replace|accumulate)", raw)
	}
}

// RateSource picks which rates an accumulate commit applies to the merged month.
type RateSource int

const (
	// RatesConfirmed uses the rates confirmed on the preview.
	RatesConfirmed RateSource = iota
	// RatesStored keeps the existing month's stored rates. A month that does
	// not exist yet falls back to the confirmed rates.
	RatesStored
)

func (r RateSource) String() string {
	if r == RatesStored {
		return "stored"
	}
	return "confirmed"
}

func ParseRateSource(raw string) (RateSource, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "confirmed":
		return RatesConfirmed, nil
	case "stored":
		return RatesStored, nil
	default:
		return RatesConfirmed, fmt.Errorf("unsupported rate source %q (supported: confirmed|stored)", raw)
	}
}

type CommitOptions struct {
	Action     Action
	RateSource RateSource
}

var (
	ErrBusy               = errors.New("an import is already being parsed or committed")
	ErrNoPreview          = errors.New("no import preview to commit")
	ErrWeeklyRetryPending = errors.New("weekly summaries of the previous commit are pending; retry or cancel first")
	ErrNothingToRetry     = errors.New("no weekly summaries pending retry")
)

// WeeklyWriteError reports a commit whose monthly row was saved but whose
// weekly breakdown was not. RetryWeekly writes only the missing part.
type WeeklyWriteError struct {
	Month   string
	MonthID int64
	Err     error
}

func (e *WeeklyWriteError) Error() string {
	return fmt.Sprintf("month %s was saved but its weekly summaries were not: %v", e.Month, e.Err)
}

func (e *WeeklyWriteError) Unwrap() error {
	return e.Err
}

// Parser turns raw export bytes into entries.
type Parser interface {
	Parse(data []byte) (*importer.Result, error)
}

type MonthlyStore interface {
	Save(ctx context.Context, summary timesheet.MonthlySummary) (timesheet.MonthlySummary, error)
	Fetch(ctx context.Context, month string) (timesheet.MonthlySummary, bool, error)
}

type WeeklyStore interface {
	SaveAll(ctx context.Context, monthID int64, summaries []timesheet.WeeklySummary) error
	Fetch(ctx context.Context, monthID int64) ([]timesheet.WeeklySummary, error)
}

// RatesStore remembers the last rates used for an import.
type RatesStore interface {
	LoadRates() timesheet.HourlyRates
	SaveRates(rates timesheet.HourlyRates) error
}

type Config struct {
	Parser     Parser
	Aggregator *aggregate.Aggregator
	Monthly    MonthlyStore
	Weekly     WeeklyStore
	Rates      RatesStore
	Logger     *logging.Logger
}

type pendingImport struct {
	source      string
	entries     []timesheet.TimeEntry
	summary     aggregate.Summary
	rowsSkipped int
	rates       timesheet.HourlyRates
	existing    *timesheet.MonthlySummary
}

type pendingWeekly struct {
	month   string
	monthID int64
	weeks   []timesheet.WeeklySummary
	rates   timesheet.HourlyRates
}

type Workflow struct {
	parser     Parser
	aggregator *aggregate.Aggregator
	monthly    MonthlyStore
	weekly     WeeklyStore
	rates      RatesStore
	logger     *logging.Logger

	mu      sync.Mutex
	state   State
	lastErr error
	pending *pendingImport
	retry   *pendingWeekly
}

func New(cfg Config) (*Workflow, error) {
	switch {
	case cfg.Parser == nil:
		return nil, fmt.Errorf("import workflow requires a parser")
	case cfg.Aggregator == nil:
		return nil, fmt.Errorf("import workflow requires an aggregator")
	case cfg.Monthly == nil || cfg.Weekly == nil:
		return nil, fmt.Errorf("import workflow requires monthly and weekly stores")
	case cfg.Rates == nil:
		return nil, fmt.Errorf("import workflow requires a rates store")
	}
	return &Workflow{
		parser:     cfg.Parser,
		aggregator: cfg.Aggregator,
		monthly:    cfg.Monthly,
		weekly:     cfg.Weekly,
		rates:      cfg.Rates,
		logger:     logging.OrDiscard(cfg.Logger, logging.ComponentWorkflow),
	}, nil
}

func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Err returns the error that moved the workflow into StateError.
func (w *Workflow) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// Preview returns the pending preview, if any.
func (w *Workflow) Preview() (timesheet.ImportPreview, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending == nil {
		return timesheet.ImportPreview{}, false
	}
	return w.pending.preview(), true
}

// Weeks returns the weekly reports of the pending import.
func (w *Workflow) Weeks() []timesheet.WeeklyReport {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending == nil {
		return nil
	}
	return append([]timesheet.WeeklyReport(nil), w.pending.summary.Weekly...)
}

// Existing returns the stored month the pending import would affect.
func (w *Workflow) Existing() (timesheet.MonthlySummary, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending == nil || w.pending.existing == nil {
		return timesheet.MonthlySummary{}, false
	}
	return *w.pending.existing, true
}

func (p *pendingImport) preview() timesheet.ImportPreview {
	return timesheet.ImportPreview{
		Month:         p.summary.MonthKey,
		WeekdayHours:  p.summary.Totals.WeekdayHours,
		WeekendHours:  p.summary.Totals.WeekendHours,
		EntryCount:    p.summary.EntryCount,
		RowsSkipped:   p.rowsSkipped,
		Rates:         p.rates,
		Salary:        salary.Calculate(p.summary.Totals.WeekdayHours, p.summary.Totals.WeekendHours, p.rates),
		ExistingMonth: p.existing != nil,
	}
}

// setState must be called with mu held.
func (w *Workflow) setState(next State, err error) {
	if w.state != next {
		w.logger.Debug("state transition", "from", w.state.String(), "to", next.String())
	}
	w.state = next
	w.lastErr = err
}

// acquire moves the workflow into a busy state if allowed.
func (w *Workflow) acquire(busy State, allowed func() error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateParsing || w.state == StateCommitting {
		return ErrBusy
	}
	if allowed != nil {
		if err := allowed(); err != nil {
			return err
		}
	}
	w.setState(busy, nil)
	return nil
}

// BeginFile reads path and starts an import from its contents.
func (w *Workflow) BeginFile(ctx context.Context, path string) (timesheet.ImportPreview, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return timesheet.ImportPreview{}, apperr.Wrap(apperr.FileReadError, path, err)
	}
	return w.Begin(ctx, data, path)
}

// Begin parses data and moves to StatePreviewing. Starting over while a
// preview is pending discards the old preview.
func (w *Workflow) Begin(ctx context.Context, data []byte, source string) (timesheet.ImportPreview, error) {
	err := w.acquire(StateParsing, func() error {
		if w.retry != nil {
			return ErrWeeklyRetryPending
		}
		w.pending = nil
		return nil
	})
	if err != nil {
		return timesheet.ImportPreview{}, err
	}

	pending, err := w.prepare(ctx, data, source)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.setState(StateError, err)
		w.logger.Warn("import parse failed", "source", source, "error", err)
		return timesheet.ImportPreview{}, err
	}
	w.pending = pending
	w.setState(StatePreviewing, nil)
	return pending.preview(), nil
}

func (w *Workflow) prepare(ctx context.Context, data []byte, source string) (*pendingImport, error) {
	result, err := w.parser.Parse(data)
	if err != nil {
		return nil, err
	}
	if len(result.Entries) == 0 {
		return nil, apperr.New(apperr.EmptyFile, "")
	}

	summary, err := w.aggregator.Summarize(result.Entries)
	if err != nil {
		return nil, err
	}

	pending := &pendingImport{
		source:      source,
		entries:     result.Entries,
		summary:     summary,
		rowsSkipped: result.RowsSkipped,
		rates:       w.rates.LoadRates(),
	}

	existing, found, err := w.monthly.Fetch(ctx, summary.MonthKey)
	if err != nil {
		return nil, err
	}
	if found {
		pending.existing = &existing
	}

	w.logger.Info("import ready for review",
		"source", source,
		"month", summary.MonthKey,
		"entries", summary.EntryCount,
		"rows_skipped", result.RowsSkipped,
		"existing_month", found)
	return pending, nil
}

// SetRates validates rates and recomputes the preview salary without
// re-parsing.
func (w *Workflow) SetRates(rates timesheet.HourlyRates) (timesheet.ImportPreview, error) {
	if err := salary.ValidateRates(rates); err != nil {
		return timesheet.ImportPreview{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateParsing || w.state == StateCommitting {
		return timesheet.ImportPreview{}, ErrBusy
	}
	if w.pending == nil {
		return timesheet.ImportPreview{}, ErrNoPreview
	}
	w.pending.rates = rates
	return w.pending.preview(), nil
}

// Cancel discards the pending preview and any pending weekly retry. It has
// no persistence side effects and cannot interrupt a running commit.
func (w *Workflow) Cancel() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateParsing || w.state == StateCommitting {
		return ErrBusy
	}
	if w.pending != nil {
		w.logger.Info("import cancelled", "month", w.pending.summary.MonthKey)
	}
	w.pending = nil
	w.retry = nil
	w.setState(StateIdle, nil)
	return nil
}

// Commit persists the pending import. The monthly row is written first, then
// re-read for its id, then the weekly set is replaced. Once admitted the
// commit ignores ctx cancellation so it runs to completion or fails.
func (w *Workflow) Commit(ctx context.Context, opts CommitOptions) (timesheet.MonthlySummary, error) {
	var pending *pendingImport
	err := w.acquire(StateCommitting, func() error {
		if w.retry != nil {
			return ErrWeeklyRetryPending
		}
		if w.pending == nil {
			return ErrNoPreview
		}
		if err := salary.ValidateRates(w.pending.rates); err != nil {
			return err
		}
		pending = w.pending
		return nil
	})
	if err != nil {
		return timesheet.MonthlySummary{}, err
	}

	ctx = context.WithoutCancel(ctx)
	saved, retry, err := w.persist(ctx, pending, opts)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.retry = retry
		w.setState(StateError, err)
		w.logger.Error("import commit failed",
			"month", pending.summary.MonthKey,
			"action", opts.Action.String(),
			"weekly_retry_pending", retry != nil,
			"error", err)
		return saved, err
	}

	w.finish(retry.rates)
	w.logger.Info("import committed",
		"month", saved.Month,
		"action", opts.Action.String(),
		"rate_source", opts.RateSource.String(),
		"weekday_hours", saved.WeekdayHours,
		"weekend_hours", saved.WeekendHours,
		"salary", saved.Salary)
	return saved, nil
}

// persist returns the pending weekly write alongside any error so a failed
// weekly step can be retried on its own.
func (w *Workflow) persist(ctx context.Context, pending *pendingImport, opts CommitOptions) (timesheet.MonthlySummary, *pendingWeekly, error) {
	month := pending.summary.MonthKey
	rates := pending.rates
	totals := pending.summary.Totals
	weeks := pending.summary.Weekly

	existing, found, err := w.monthly.Fetch(ctx, month)
	if err != nil {
		return timesheet.MonthlySummary{}, nil, err
	}

	if opts.Action == ActionAccumulate && found {
		totals = aggregate.Totals{
			WeekdayHours: timesheet.Round2(existing.WeekdayHours + totals.WeekdayHours),
			WeekendHours: timesheet.Round2(existing.WeekendHours + totals.WeekendHours),
		}
		if opts.RateSource == RatesStored {
			rates = existing.Rates()
		}

		storedWeeks, err := w.weekly.Fetch(ctx, existing.ID)
		if err != nil {
			return timesheet.MonthlySummary{}, nil, err
		}
		storedReports := make([]timesheet.WeeklyReport, 0, len(storedWeeks))
		for _, week := range storedWeeks {
			report, err := week.Report(w.aggregator.Location())
			if err != nil {
				return timesheet.MonthlySummary{}, nil, apperr.Wrap(apperr.QueryFailed, "read stored week", err)
			}
			storedReports = append(storedReports, report)
		}
		weeks = aggregate.MergeWeeks(storedReports, weeks)
	}

	pay, err := salary.CalculateChecked(totals.WeekdayHours, totals.WeekendHours, rates)
	if err != nil {
		return timesheet.MonthlySummary{}, nil, err
	}
	summary := timesheet.MonthlySummary{
		Month:        month,
		WeekdayHours: totals.WeekdayHours,
		WeekendHours: totals.WeekendHours,
		WeekdayRate:  rates.Weekday,
		WeekendRate:  rates.Weekend,
		Salary:       pay,
	}

	if _, err := w.monthly.Save(ctx, summary); err != nil {
		return timesheet.MonthlySummary{}, nil, err
	}

	saved, found, err := w.monthly.Fetch(ctx, month)
	if err != nil {
		return timesheet.MonthlySummary{}, nil, err
	}
	if !found {
		return timesheet.MonthlySummary{}, nil, apperr.New(apperr.RecordNotFound, "month "+month+" after save")
	}

	retry := &pendingWeekly{month: month, monthID: saved.ID, rates: rates}
	for _, report := range weeks {
		retry.weeks = append(retry.weeks, timesheet.SummaryFromReport(report, saved.ID))
	}

	if err := w.weekly.SaveAll(ctx, saved.ID, retry.weeks); err != nil {
		return saved, retry, &WeeklyWriteError{Month: month, MonthID: saved.ID, Err: err}
	}
	return saved, retry, nil
}

// RetryWeekly writes the weekly set left behind by a WeeklyWriteError.
func (w *Workflow) RetryWeekly(ctx context.Context) error {
	var retry *pendingWeekly
	err := w.acquire(StateCommitting, func() error {
		if w.retry == nil {
			return ErrNothingToRetry
		}
		retry = w.retry
		return nil
	})
	if err != nil {
		return err
	}

	err = w.weekly.SaveAll(context.WithoutCancel(ctx), retry.monthID, retry.weeks)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		werr := &WeeklyWriteError{Month: retry.month, MonthID: retry.monthID, Err: err}
		w.setState(StateError, werr)
		w.logger.Error("weekly retry failed", "month", retry.month, "error", err)
		return werr
	}

	w.finish(retry.rates)
	w.logger.Info("weekly summaries written on retry", "month", retry.month, "weeks", len(retry.weeks))
	return nil
}

// finish must be called with mu held after a fully successful commit.
func (w *Workflow) finish(rates timesheet.HourlyRates) {
	if err := w.rates.SaveRates(rates); err != nil {
		w.logger.Warn("could not remember rates", "error", err)
	}
	w.pending = nil
	w.retry = nil
	w.setState(StateIdle, nil)
}
