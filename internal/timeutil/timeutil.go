package timeutil

import "time"

func StartOfDay(value time.Time) time.Time {
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, value.Location())
}

// StartOfWeek returns midnight of the most recent weekStart day on or before value.
func StartOfWeek(value time.Time, weekStart time.Weekday) time.Time {
	day := StartOfDay(value)
	offset := (int(day.Weekday()) - int(weekStart) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

// WeekBounds returns the first and last calendar day of the week containing value.
func WeekBounds(value time.Time, weekStart time.Weekday) (time.Time, time.Time) {
	start := StartOfWeek(value, weekStart)
	return start, start.AddDate(0, 0, 6)
}

func StartOfMonth(value time.Time) time.Time {
	return time.Date(value.Year(), value.Month(), 1, 0, 0, 0, 0, value.Location())
}
