// Package salary validates hourly rates and turns aggregated hours into pay.
package salary

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"clockedout/apperr"
	"clockedout/timesheet"
)

const (
	// MaxRate is the inclusive upper bound for either hourly rate.
	MaxRate = 10000

	FieldWeekdayRate  = "Weekday rate"
	FieldWeekendRate  = "Weekend rate"
	FieldWeekdayHours = "Weekday hours"
	FieldWeekendHours = "Weekend hours"
)

// ValidateRate accepts values in (0, MaxRate].
func ValidateRate(value float64, field string) error {
	switch {
	case math.IsNaN(value) || math.IsInf(value, 0):
		return apperr.New(apperr.InvalidRate, field)
	case value < 0:
		return apperr.New(apperr.NegativeValue, field)
	case value == 0:
		return apperr.New(apperr.ZeroValue, field)
	case value > MaxRate:
		return apperr.Range(field, 0, MaxRate)
	}
	return nil
}

func ValidateRates(rates timesheet.HourlyRates) error {
	if err := ValidateRate(rates.Weekday, FieldWeekdayRate); err != nil {
		return err
	}
	return ValidateRate(rates.Weekend, FieldWeekendRate)
}

// ParseRate reads user input such as "90" or "92.5" and validates it.
func ParseRate(raw, field string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, apperr.Wrap(apperr.InvalidRate, field, err)
	}
	if err := ValidateRate(value, field); err != nil {
		return 0, err
	}
	return value, nil
}

// ValidateHours accepts any finite, non-negative value. Accumulated months
// have no upper bound.
func ValidateHours(value float64, field string) error {
	switch {
	case math.IsNaN(value) || math.IsInf(value, 0):
		return apperr.New(apperr.InvalidFormat, field)
	case value < 0:
		return apperr.New(apperr.NegativeValue, field)
	}
	return nil
}

// Calculate returns weekdayHours*weekdayRate + weekendHours*weekendRate
// rounded half away from zero to cents.
func Calculate(weekdayHours, weekendHours float64, rates timesheet.HourlyRates) float64 {
	weekday := decimal.NewFromFloat(weekdayHours).Mul(decimal.NewFromFloat(rates.Weekday))
	weekend := decimal.NewFromFloat(weekendHours).Mul(decimal.NewFromFloat(rates.Weekend))
	return weekday.Add(weekend).Round(2).InexactFloat64()
}

// CalculateChecked validates rates before calculating.
func CalculateChecked(weekdayHours, weekendHours float64, rates timesheet.HourlyRates) (float64, error) {
	if err := ValidateRates(rates); err != nil {
		return 0, err
	}
	return Calculate(weekdayHours, weekendHours, rates), nil
}

// Recalculate refreshes summary.Salary from its own hours and rates.
func Recalculate(summary *timesheet.MonthlySummary) {
	summary.Salary = Calculate(summary.WeekdayHours, summary.WeekendHours, summary.Rates())
}
