package timeutil

import (
	"testing"
	"time"
)

func TestStartOfDay(t *testing.T) {
	t.Parallel()

	input := time.Date(2026, 3, 1, 14, 37, 9, 123, time.Local)
	got := StartOfDay(input)

	if got.Year() != 2026 || got.Month() != time.March || got.Day() != 1 {
		t.Fatalf("unexpected date: %v", got)
	}
	if got.Hour() != 0 || got.Minute() != 0 || got.Second() != 0 || got.Nanosecond() != 0 {
		t.Fatalf("expected midnight, got %v", got)
	}
}

func TestWeekBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		value     time.Time
		weekStart time.Weekday
		wantStart string
		wantEnd   string
	}{
		{name: "monday in sunday week", value: time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC), weekStart: time.Sunday, wantStart: "2025-11-30", wantEnd: "2025-12-06"},
		{name: "sunday starts its own week", value: time.Date(2025, 12, 7, 23, 59, 0, 0, time.UTC), weekStart: time.Sunday, wantStart: "2025-12-07", wantEnd: "2025-12-13"},
		{name: "saturday ends sunday week", value: time.Date(2025, 12, 6, 12, 0, 0, 0, time.UTC), weekStart: time.Sunday, wantStart: "2025-11-30", wantEnd: "2025-12-06"},
		{name: "sunday in monday week", value: time.Date(2025, 12, 7, 8, 0, 0, 0, time.UTC), weekStart: time.Monday, wantStart: "2025-12-01", wantEnd: "2025-12-07"},
		{name: "crosses year end", value: time.Date(2025, 12, 31, 8, 0, 0, 0, time.UTC), weekStart: time.Sunday, wantStart: "2025-12-28", wantEnd: "2026-01-03"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			start, end := WeekBounds(tc.value, tc.weekStart)
			if got := start.Format("2006-01-02"); got != tc.wantStart {
				t.Fatalf("unexpected start: want %s, got %s", tc.wantStart, got)
			}
			if got := end.Format("2006-01-02"); got != tc.wantEnd {
				t.Fatalf("unexpected end: want %s, got %s", tc.wantEnd, got)
			}
			if start.Hour() != 0 || start.Minute() != 0 {
				t.Fatalf("expected week start at midnight, got %v", start)
			}
		})
	}
}

func TestStartOfMonth(t *testing.T) {
	t.Parallel()

	got := StartOfMonth(time.Date(2025, 12, 31, 22, 0, 0, 0, time.UTC))
	if !got.Equal(time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected month start: %v", got)
	}
}
