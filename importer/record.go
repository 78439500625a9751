package importer

import (
	"strings"
)

// Record is one data row keyed by folded header name.
type Record struct {
	RowNumber int
	Values    map[string]string
}

// StartText is the human-readable timestamp, empty when the column is absent.
func (r Record) StartText() string {
	return r.field(ColumnStartText)
}

// StartMillis is the epoch-milliseconds timestamp, empty when absent.
func (r Record) StartMillis() string {
	return r.field(ColumnStart)
}

// TimeTracked is the raw duration cell in milliseconds.
func (r Record) TimeTracked() string {
	return r.field(ColumnTimeTracked)
}

func (r Record) field(column string) string {
	return strings.TrimSpace(r.Values[foldHeader(column)])
}

// foldHeader makes "Time Tracked", "time_tracked" and "TIME-TRACKED" equal.
func foldHeader(input string) string {
	folded := strings.ToLower(strings.TrimSpace(input))
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-':
			return -1
		}
		return r
	}, folded)
}
