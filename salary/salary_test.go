package salary

import (
	"math"
	"testing"

	"clockedout/apperr"
	"clockedout/timesheet"
)

func TestValidateRate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		value    float64
		wantKind apperr.Kind
	}{
		{name: "typical", value: 50},
		{name: "upper bound", value: MaxRate},
		{name: "tiny", value: 0.01},
		{name: "zero", value: 0, wantKind: apperr.ZeroValue},
		{name: "negative", value: -1, wantKind: apperr.NegativeValue},
		{name: "too large", value: 15000, wantKind: apperr.OutOfRange},
		{name: "nan", value: math.NaN(), wantKind: apperr.InvalidRate},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateRate(tc.value, FieldWeekdayRate)
			if tc.wantKind == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !apperr.Is(err, tc.wantKind) {
				t.Fatalf("expected %s, got %v", tc.wantKind, err)
			}
		})
	}
}

func TestValidateRatesChecksBoth(t *testing.T) {
	t.Parallel()

	err := ValidateRates(timesheet.HourlyRates{Weekday: 90, Weekend: 0})
	if !apperr.Is(err, apperr.ZeroValue) {
		t.Fatalf("expected ZeroValue, got %v", err)
	}
	if apperr.UserMessage(err) != "Weekend rate cannot be zero." {
		t.Fatalf("unexpected message: %q", apperr.UserMessage(err))
	}
}

func TestParseRate(t *testing.T) {
	t.Parallel()

	if got, err := ParseRate(" 92.5 ", FieldWeekdayRate); err != nil || got != 92.5 {
		t.Fatalf("expected 92.5, got %v, %v", got, err)
	}
	if _, err := ParseRate("ninety", FieldWeekdayRate); !apperr.Is(err, apperr.InvalidRate) {
		t.Fatalf("expected InvalidRate, got %v", err)
	}
	if _, err := ParseRate("20000", FieldWeekdayRate); !apperr.Is(err, apperr.OutOfRange) {
		t.Fatalf("expected OutOfRange, got %v", err)
	}
}

func TestValidateHours(t *testing.T) {
	t.Parallel()

	if err := ValidateHours(0, FieldWeekdayHours); err != nil {
		t.Fatalf("zero hours should be valid: %v", err)
	}
	if err := ValidateHours(-0.5, FieldWeekdayHours); !apperr.Is(err, apperr.NegativeValue) {
		t.Fatalf("expected NegativeValue, got %v", err)
	}
	if err := ValidateHours(1500.25, FieldWeekendHours); err != nil {
		t.Fatalf("large monthly totals should be valid: %v", err)
	}
	if err := ValidateHours(math.Inf(1), FieldWeekendHours); !apperr.Is(err, apperr.InvalidFormat) {
		t.Fatalf("expected InvalidFormat, got %v", err)
	}
}

func TestCalculate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		weekdayHours float64
		weekendHours float64
		rates        timesheet.HourlyRates
		want         float64
	}{
		{weekdayHours: 10, weekendHours: 5, rates: timesheet.HourlyRates{Weekday: 90, Weekend: 100}, want: 1400},
		{weekdayHours: 0, weekendHours: 0, rates: timesheet.HourlyRates{Weekday: 90, Weekend: 100}, want: 0},
		{weekdayHours: 1.33, weekendHours: 0.67, rates: timesheet.HourlyRates{Weekday: 33.33, Weekend: 47.5}, want: 76.15},
		{weekdayHours: 0.1, weekendHours: 0.2, rates: timesheet.HourlyRates{Weekday: 3, Weekend: 3}, want: 0.9},
		{weekdayHours: 160.25, weekendHours: 12.75, rates: timesheet.HourlyRates{Weekday: 92.5, Weekend: 110}, want: 16225.63},
	}

	for _, tc := range tests {
		got := Calculate(tc.weekdayHours, tc.weekendHours, tc.rates)
		if got != tc.want {
			t.Fatalf("Calculate(%v, %v, %+v): want %v, got %v", tc.weekdayHours, tc.weekendHours, tc.rates, tc.want, got)
		}
		direct := math.Round((tc.weekdayHours*tc.rates.Weekday+tc.weekendHours*tc.rates.Weekend)*100) / 100
		if got != direct {
			t.Fatalf("Calculate disagrees with direct rounding: %v vs %v", got, direct)
		}
	}
}

func TestCalculateChecked(t *testing.T) {
	t.Parallel()

	if _, err := CalculateChecked(1, 1, timesheet.HourlyRates{Weekday: 15000, Weekend: 1}); !apperr.Is(err, apperr.OutOfRange) {
		t.Fatalf("expected OutOfRange, got %v", err)
	}
	got, err := CalculateChecked(2, 1, timesheet.HourlyRates{Weekday: 50, Weekend: 60})
	if err != nil || got != 160 {
		t.Fatalf("expected 160, got %v, %v", got, err)
	}
}

func TestRecalculate(t *testing.T) {
	t.Parallel()

	summary := timesheet.MonthlySummary{WeekdayHours: 8, WeekendHours: 2, WeekdayRate: 90, WeekendRate: 100, Salary: 1}
	Recalculate(&summary)
	if summary.Salary != 920 {
		t.Fatalf("expected 920, got %v", summary.Salary)
	}
}
