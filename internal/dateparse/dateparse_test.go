package dateparse

import (
	"testing"
	"time"

	"clockedout/apperr"
)

func TestParse_EpochMillisIsAuthoritative(t *testing.T) {
	t.Parallel()

	parser := New(Options{})
	got, err := parser.Parse("not a date at all", "1764579600000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Strategy != StrategyEpochMillis {
		t.Fatalf("expected epoch strategy, got %q", got.Strategy)
	}
	want := time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)
	if !got.Time.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got.Time)
	}
}

func TestParse_InvalidEpochFallsBackToText(t *testing.T) {
	t.Parallel()

	parser := New(Options{})
	got, err := parser.Parse("12/01/2025", "abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Strategy != StrategyDateOnly {
		t.Fatalf("expected date-only strategy, got %q", got.Strategy)
	}
}

func TestParse_Strategies(t *testing.T) {
	t.Parallel()

	berlin := time.FixedZone("CET", 3600)
	parser := New(Options{Location: berlin})

	tests := []struct {
		name     string
		input    string
		want     time.Time
		strategy string
	}{
		{
			name:     "known abbreviation",
			input:    "12/01/2025, 9:00:00 AM EST",
			want:     time.Date(2025, 12, 1, 14, 0, 0, 0, time.UTC),
			strategy: StrategyZoneAbbrev,
		},
		{
			name:     "ist abbreviation",
			input:    "12/01/2025, 3:45:57 PM IST",
			want:     time.Date(2025, 12, 1, 10, 15, 57, 0, time.UTC),
			strategy: StrategyZoneAbbrev,
		},
		{
			name:     "lowercase meridiem",
			input:    "12/01/2025, 9:00:00 am utc",
			want:     time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC),
			strategy: StrategyZoneAbbrev,
		},
		{
			name:     "no zone uses configured location",
			input:    "12/01/2025, 9:00:00 AM",
			want:     time.Date(2025, 12, 1, 8, 0, 0, 0, time.UTC),
			strategy: StrategyZoneless,
		},
		{
			name:     "single digit month",
			input:    "3/05/2025, 11:30:00 PM",
			want:     time.Date(2025, 3, 5, 22, 30, 0, 0, time.UTC),
			strategy: StrategyZoneless,
		},
		{
			name:     "date only",
			input:    "12/24/2025",
			want:     time.Date(2025, 12, 23, 23, 0, 0, 0, time.UTC),
			strategy: StrategyDateOnly,
		},
		{
			name:     "unknown abbreviation falls back to fixed offset",
			input:    "12/01/2025, 3:45:57 PM XYZ",
			want:     time.Date(2025, 12, 1, 10, 15, 57, 0, time.UTC),
			strategy: StrategyFixedOffset,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := parser.Parse(tc.input, "")
			if err != nil {
				t.Fatalf("unexpected error for %q: %v", tc.input, err)
			}
			if got.Strategy != tc.strategy {
				t.Fatalf("strategy for %q: want %q, got %q", tc.input, tc.strategy, got.Strategy)
			}
			if !got.Time.Equal(tc.want) {
				t.Fatalf("instant for %q: want %v, got %v", tc.input, tc.want, got.Time.UTC())
			}
		})
	}
}

func TestParse_InvalidDate(t *testing.T) {
	t.Parallel()

	parser := New(Options{})
	for _, input := range []string{"yesterday", "2025-12-01T09:00:00Z", "13/45/2025", ""} {
		_, err := parser.Parse(input, "")
		if !apperr.Is(err, apperr.InvalidDate) {
			t.Fatalf("expected InvalidDate for %q, got %v", input, err)
		}
	}
}

func TestParse_CustomFallbackOffset(t *testing.T) {
	t.Parallel()

	offset := -3 * time.Hour
	parser := New(Options{FallbackOffset: &offset})
	got, err := parser.Parse("12/01/2025, 9:00:00 AM BRT", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2025, 12, 1, 12, 0, 0, 0, time.UTC)
	if !got.Time.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got.Time.UTC())
	}
}

func TestNewWithStrategies_Order(t *testing.T) {
	t.Parallel()

	parser := NewWithStrategies(DateOnly{Location: time.UTC})
	if names := parser.Strategies(); len(names) != 1 || names[0] != StrategyDateOnly {
		t.Fatalf("unexpected strategies: %v", names)
	}
	if _, err := parser.Parse("12/01/2025, 9:00:00 AM", ""); err == nil {
		t.Fatalf("expected failure when only date-only strategy is configured")
	}
}

func TestParseOffset(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{input: "", want: DefaultFallbackOffset},
		{input: "+05:30", want: 5*time.Hour + 30*time.Minute},
		{input: "-0800", want: -8 * time.Hour},
		{input: "2h", want: 2 * time.Hour},
		{input: "noon", wantErr: true},
	}

	for _, tc := range tests {
		got, err := ParseOffset(tc.input)
		if tc.wantErr {
			if !apperr.Is(err, apperr.TimezoneConversionFailed) {
				t.Fatalf("expected TimezoneConversionFailed for %q, got %v", tc.input, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("ParseOffset(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestLoadLocation(t *testing.T) {
	t.Parallel()

	if loc, err := LoadLocation("Local"); err != nil || loc != time.Local {
		t.Fatalf("expected local location, got %v (%v)", loc, err)
	}
	if loc, err := LoadLocation("UTC"); err != nil || loc != time.UTC {
		t.Fatalf("expected utc location, got %v (%v)", loc, err)
	}
	if _, err := LoadLocation("Mars/Olympus_Mons"); !apperr.Is(err, apperr.TimezoneConversionFailed) {
		t.Fatalf("expected TimezoneConversionFailed, got %v", err)
	}
}
