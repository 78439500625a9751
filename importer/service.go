// Package importer turns a time-tracking CSV export into TimeEntry values.
// Row-level failures are collected rather than aborting the whole file.
package importer

import (
	"fmt"
	"os"
	"sort"

	"clockedout/apperr"
	"clockedout/internal/dateparse"
	"clockedout/internal/logging"
	"clockedout/timesheet"
)

const (
	ColumnTimeTracked = "Time Tracked"
	ColumnStart       = "Start"
	ColumnStartText   = "Start Text"
)

type Result struct {
	RowsRead    int
	RowsMapped  int
	RowsSkipped int
	Entries     []timesheet.TimeEntry
	RowErrors   []RowError
	// Strategies counts how many rows each date strategy resolved.
	Strategies map[string]int
}

// RowError ties a per-row failure to its 1-based line number.
type RowError struct {
	RowNumber int
	Err       error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.RowNumber, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}

type Ingestor struct {
	parser *dateparse.Parser
	logger *logging.Logger
}

func NewIngestor(parser *dateparse.Parser, logger *logging.Logger) *Ingestor {
	if parser == nil {
		parser = dateparse.New(dateparse.Options{})
	}
	return &Ingestor{parser: parser, logger: logging.OrDiscard(logger, logging.ComponentImporter)}
}

func (i *Ingestor) ParseFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.FileReadError, path, err)
	}
	return i.Parse(data)
}

// Parse tokenizes data and maps every row with a matching column count. It
// fails only for file-level problems, or when no row could be mapped, in
// which case the first row error is returned.
func (i *Ingestor) Parse(data []byte) (*Result, error) {
	i.logger.Debug("parsing csv", "bytes", len(data), "date_strategies", i.parser.Strategies())
	table, err := ReadCSV(data)
	if err != nil {
		return nil, err
	}

	if missing := missingColumns(table); len(missing) > 0 {
		return nil, apperr.Missing(missing...)
	}

	result := &Result{
		Entries:    make([]timesheet.TimeEntry, 0, len(table.Rows)),
		Strategies: make(map[string]int),
	}
	for _, row := range table.Rows {
		result.RowsRead++
		if len(row.Fields) != len(table.Headers) {
			result.RowsSkipped++
			i.logger.Warn("skipping row with wrong column count",
				"row", row.RowNumber,
				"columns", len(row.Fields),
				"expected", len(table.Headers))
			continue
		}

		entry, strategy, mapErr := i.mapRecord(table.Record(row))
		if mapErr != nil {
			result.RowsSkipped++
			result.RowErrors = append(result.RowErrors, RowError{RowNumber: row.RowNumber, Err: mapErr})
			i.logger.Warn("failed to parse row", "row", row.RowNumber, "error", mapErr)
			continue
		}

		i.logger.Debug("parsed row", "row", row.RowNumber, "date_strategy", strategy)
		result.RowsMapped++
		result.Strategies[strategy]++
		result.Entries = append(result.Entries, entry)
	}

	if len(result.Entries) == 0 && len(result.RowErrors) > 0 {
		return nil, result.RowErrors[0]
	}

	i.logger.Info("parsed csv",
		"rows_read", result.RowsRead,
		"rows_mapped", result.RowsMapped,
		"rows_skipped", result.RowsSkipped,
		"date_strategies", strategySummary(result.Strategies))
	return result, nil
}

func (i *Ingestor) mapRecord(record Record) (timesheet.TimeEntry, string, error) {
	parsed, err := i.parser.Parse(record.StartText(), record.StartMillis())
	if err != nil {
		return timesheet.TimeEntry{}, "", err
	}

	millis, err := parseDurationMillis(record.TimeTracked())
	if err != nil {
		return timesheet.TimeEntry{}, "", err
	}

	entry := timesheet.NewTimeEntry(parsed.Time, millis)
	if err := entry.Validate(); err != nil {
		return timesheet.TimeEntry{}, "", err
	}
	return entry, parsed.Strategy, nil
}

func missingColumns(table Table) []string {
	missing := make([]string, 0, 2)
	if !table.HasColumn(ColumnTimeTracked) {
		missing = append(missing, ColumnTimeTracked)
	}
	if !table.HasColumn(ColumnStart) && !table.HasColumn(ColumnStartText) {
		missing = append(missing, ColumnStart+" or "+ColumnStartText)
	}
	return missing
}

func strategySummary(counts map[string]int) []string {
	names := make([]string, 0, len(counts))
	for name, count := range counts {
		names = append(names, fmt.Sprintf("%s=%d", name, count))
	}
	sort.Strings(names)
	return names
}
