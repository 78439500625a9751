package importer

import (
	"strconv"
	"strings"

	"clockedout/apperr"
)

// parseDurationMillis reads the "Time Tracked" cell: a whole number of milliseconds.
func parseDurationMillis(raw string) (int64, error) {
	cleaned := strings.TrimSpace(raw)
	millis, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0, apperr.Wrap(apperr.InvalidTime, raw, err)
	}
	if millis < 0 {
		return 0, apperr.New(apperr.NegativeValue, ColumnTimeTracked)
	}
	return millis, nil
}
