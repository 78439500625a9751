// Package apperr defines the error taxonomy for parsing, validation and
// storage failures. Each kind carries a short user message and an optional
// recovery hint; program logic must branch on Kind, never on the messages.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

type Category string

const (
	CategoryParse      Category = "parse"
	CategoryValidation Category = "validation"
	CategoryStorage    Category = "storage"
	CategoryUnknown    Category = "unknown"
)

type Kind string

// Parse kinds.
const (
	InvalidFormat            Kind = "invalid_format"
	MissingColumns           Kind = "missing_columns"
	InvalidDate              Kind = "invalid_date"
	InvalidTime              Kind = "invalid_time"
	EmptyFile                Kind = "empty_file"
	FileReadError            Kind = "file_read_error"
	TimezoneConversionFailed Kind = "timezone_conversion_failed"
)

// Validation kinds.
const (
	InvalidRate   Kind = "invalid_rate"
	NegativeValue Kind = "negative_value"
	ZeroValue     Kind = "zero_value"
	OutOfRange    Kind = "out_of_range"
)

// Storage kinds.
const (
	MigrationFailed     Kind = "migration_failed"
	QueryFailed         Kind = "query_failed"
	ConstraintViolation Kind = "constraint_violation"
	ConnectionFailed    Kind = "connection_failed"
	TransactionFailed   Kind = "transaction_failed"
	RecordNotFound      Kind = "record_not_found"
)

type kindInfo struct {
	category Category
	message  string
	recovery string
}

var kinds = map[Kind]kindInfo{
	InvalidFormat:            {CategoryParse, "The CSV file format is invalid.", "Please ensure the file is a valid CSV file."},
	MissingColumns:           {CategoryParse, "The CSV file is missing required columns.", "The CSV must contain a 'Time Tracked' column and a 'Start' or 'Start Text' column."},
	InvalidDate:              {CategoryParse, "Some dates in the CSV file could not be parsed.", "Please check that dates are in the format 'MM/dd/yyyy, h:mm:ss a zzz'."},
	InvalidTime:              {CategoryParse, "Some time values in the CSV file are invalid.", "Please check that time values are whole numbers of milliseconds."},
	EmptyFile:                {CategoryParse, "The CSV file is empty.", "Please select a CSV file that contains data."},
	FileReadError:            {CategoryParse, "Could not read the CSV file.", "Please check that the file exists and is readable."},
	TimezoneConversionFailed: {CategoryParse, "Could not convert timezone information.", "Please check the configured timezone and fallback offset."},
	InvalidRate:              {CategoryValidation, "The hourly rate is invalid.", "Please enter a valid number for the hourly rate."},
	NegativeValue:            {CategoryValidation, "A value is negative.", "Please enter a positive number."},
	ZeroValue:                {CategoryValidation, "A value is zero.", "Please enter a value greater than zero."},
	OutOfRange:               {CategoryValidation, "A value is out of the allowed range.", ""},
	MigrationFailed:          {CategoryStorage, "Database update failed.", "Please try again. If the problem persists, back up and recreate the database."},
	QueryFailed:              {CategoryStorage, "Could not retrieve data from the database.", "Please try again. If the problem persists, the database may be corrupted."},
	ConstraintViolation:      {CategoryStorage, "Data validation failed.", "Please check that the imported data does not contain duplicate weeks."},
	ConnectionFailed:         {CategoryStorage, "Could not connect to the database.", "Please check the database path."},
	TransactionFailed:        {CategoryStorage, "Database operation failed.", "Please try the operation again."},
	RecordNotFound:           {CategoryStorage, "The requested record was not found.", "The data may have been deleted."},
}

// Error is a classified failure. Detail names the offending value or field;
// Columns is only set for MissingColumns.
type Error struct {
	Kind    Kind
	Detail  string
	Columns []string
	Err     error
}

func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

func Wrap(kind Kind, detail string, err error) *Error {
	return &Error{Kind: kind, Detail: detail, Err: err}
}

func Missing(columns ...string) *Error {
	return &Error{
		Kind:    MissingColumns,
		Detail:  strings.Join(columns, ", "),
		Columns: append([]string(nil), columns...),
	}
}

// Range reports a value outside [min, max].
func Range(field string, min, max float64) *Error {
	return &Error{Kind: OutOfRange, Detail: fmt.Sprintf("%s must be between %g and %g", field, min, max)}
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.describe())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) describe() string {
	switch e.Kind {
	case InvalidFormat:
		return "invalid csv format: " + e.Detail
	case MissingColumns:
		return "missing required columns: " + e.Detail
	case InvalidDate:
		return fmt.Sprintf("invalid date %q", e.Detail)
	case InvalidTime:
		return fmt.Sprintf("invalid time value %q", e.Detail)
	case EmptyFile:
		return "csv file is empty"
	case FileReadError:
		return "read file " + e.Detail
	case TimezoneConversionFailed:
		return "timezone conversion failed for " + e.Detail
	case InvalidRate:
		return "invalid rate value: " + e.Detail
	case NegativeValue:
		return e.Detail + " cannot be negative"
	case ZeroValue:
		return e.Detail + " cannot be zero"
	case OutOfRange:
		return e.Detail
	case MigrationFailed:
		return "migration failed: " + e.Detail
	case QueryFailed:
		return "query failed: " + e.Detail
	case ConstraintViolation:
		return "constraint violation: " + e.Detail
	case ConnectionFailed:
		return "database connection failed: " + e.Detail
	case TransactionFailed:
		return "transaction failed: " + e.Detail
	case RecordNotFound:
		return "record not found: " + e.Detail
	default:
		return string(e.Kind) + ": " + e.Detail
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Category() Category {
	if info, ok := kinds[e.Kind]; ok {
		return info.category
	}
	return CategoryUnknown
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind, true
	}
	return "", false
}

func Is(err error, kind Kind) bool {
	got, ok := KindOf(err)
	return ok && got == kind
}

func CategoryOf(err error) Category {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Category()
	}
	return CategoryUnknown
}

// UserMessage returns a short human-readable summary for err.
func UserMessage(err error) string {
	var appErr *Error
	if !errors.As(err, &appErr) {
		if err == nil {
			return ""
		}
		return err.Error()
	}
	info, ok := kinds[appErr.Kind]
	if !ok {
		return appErr.Error()
	}
	switch appErr.Kind {
	case NegativeValue, ZeroValue:
		return appErr.describe() + "."
	case OutOfRange:
		return appErr.Detail + "."
	}
	return info.message
}

// RecoverySuggestion returns an actionable hint, or "" when none applies.
func RecoverySuggestion(err error) string {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return ""
	}
	if appErr.Kind == OutOfRange {
		return "Please enter a value within the allowed range."
	}
	return kinds[appErr.Kind].recovery
}
