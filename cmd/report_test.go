package cmd

import (
	"testing"
	"time"

	"clockedout/apperr"
	"clockedout/timesheet"
)

func TestParseDateRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		from      string
		to        string
		wantStart string
		wantEnd   string
	}{
		{name: "both bounds", from: "2025-11-15", to: "2025-12-15", wantStart: "2025-11-15", wantEnd: "2025-12-15"},
		{name: "from only runs to month end", from: "2025-12-10", wantStart: "2025-12-10", wantEnd: "2025-12-31"},
		{name: "from only in february", from: "2024-02-03", wantStart: "2024-02-03", wantEnd: "2024-02-29"},
		{name: "to only starts on the first", to: " 2025-11-20 ", wantStart: "2025-11-01", wantEnd: "2025-11-20"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			start, end, err := parseDateRange(tc.from, tc.to, time.UTC)
			if err != nil {
				t.Fatalf("parse range: %v", err)
			}
			if got := start.Format(timesheet.DateLayout); got != tc.wantStart {
				t.Fatalf("unexpected start: want %s, got %s", tc.wantStart, got)
			}
			if got := end.Format(timesheet.DateLayout); got != tc.wantEnd {
				t.Fatalf("unexpected end: want %s, got %s", tc.wantEnd, got)
			}
		})
	}
}

func TestParseDateRangeRejects(t *testing.T) {
	t.Parallel()

	if _, _, err := parseDateRange("", "", time.UTC); err == nil {
		t.Fatalf("expected an error without bounds")
	}
	if _, _, err := parseDateRange("12/01/2025", "", time.UTC); !apperr.Is(err, apperr.InvalidDate) {
		t.Fatalf("expected InvalidDate, got %v", err)
	}
	if _, _, err := parseDateRange("2025-12-15", "2025-12-01", time.UTC); !apperr.Is(err, apperr.OutOfRange) {
		t.Fatalf("expected OutOfRange, got %v", err)
	}
}
