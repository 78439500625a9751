// Package dateparse turns the start-time fields of a time-tracking export into
// absolute instants. Free-text values are tried against an ordered list of
// strategies; the name of the strategy that matched is reported back so the
// caller can log it.
package dateparse

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"clockedout/apperr"
)

const (
	StrategyEpochMillis  = "epoch-millis"
	StrategyZoneAbbrev   = "zone-abbreviation"
	StrategyZoneless     = "zoneless"
	StrategyDateOnly     = "date-only"
	StrategyFixedOffset  = "fixed-offset"
	maxZoneTokenLength   = 5
	defaultFallbackHours = 5
	defaultFallbackMins  = 30
)

// DefaultFallbackOffset is the UTC+5:30 assumption applied when a trailing
// zone token cannot be resolved.
const DefaultFallbackOffset = defaultFallbackHours*time.Hour + defaultFallbackMins*time.Minute

var dateTimeLayouts = []string{
	"01/02/2006, 3:04:05 PM",
	"1/2/2006, 3:04:05 PM",
}

var dateOnlyLayouts = []string{
	"01/02/2006",
	"1/2/2006",
}

// DefaultAbbreviations maps common zone abbreviations to their UTC offset in seconds.
var DefaultAbbreviations = map[string]int{
	"UTC":  0,
	"GMT":  0,
	"Z":    0,
	"EST":  -5 * 3600,
	"EDT":  -4 * 3600,
	"CST":  -6 * 3600,
	"CDT":  -5 * 3600,
	"MST":  -7 * 3600,
	"MDT":  -6 * 3600,
	"PST":  -8 * 3600,
	"PDT":  -7 * 3600,
	"AKST": -9 * 3600,
	"AKDT": -8 * 3600,
	"HST":  -10 * 3600,
	"WET":  0,
	"BST":  1 * 3600,
	"CET":  1 * 3600,
	"CEST": 2 * 3600,
	"EET":  2 * 3600,
	"EEST": 3 * 3600,
	"MSK":  3 * 3600,
	"IST":  5*3600 + 30*60,
	"SGT":  8 * 3600,
	"JST":  9 * 3600,
	"KST":  9 * 3600,
	"AEST": 10 * 3600,
	"AEDT": 11 * 3600,
	"NZST": 12 * 3600,
	"NZDT": 13 * 3600,
}

// Strategy is one way of reading a free-text timestamp.
type Strategy interface {
	Name() string
	Parse(value string) (time.Time, bool)
}

type Result struct {
	Time     time.Time
	Strategy string
}

type Options struct {
	// Location applies to values that carry no zone information. Defaults to UTC.
	Location *time.Location
	// FallbackOffset is used by the last-resort strategy. Defaults to UTC+5:30.
	FallbackOffset *time.Duration
	// Abbreviations overrides DefaultAbbreviations when non-nil.
	Abbreviations map[string]int
}

// Parser is immutable after construction and safe for concurrent use.
type Parser struct {
	strategies []Strategy
}

// New returns a parser with the standard strategy order: known zone
// abbreviation, no zone, date only, fixed-offset fallback.
func New(opts Options) *Parser {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	offset := DefaultFallbackOffset
	if opts.FallbackOffset != nil {
		offset = *opts.FallbackOffset
	}
	abbreviations := opts.Abbreviations
	if abbreviations == nil {
		abbreviations = DefaultAbbreviations
	}

	return NewWithStrategies(
		ZoneAbbreviation{Offsets: abbreviations},
		Zoneless{Location: loc},
		DateOnly{Location: loc},
		FixedOffset{Offset: offset},
	)
}

func NewWithStrategies(strategies ...Strategy) *Parser {
	return &Parser{strategies: append([]Strategy(nil), strategies...)}
}

func (p *Parser) Strategies() []string {
	names := make([]string, 0, len(p.strategies))
	for _, strategy := range p.strategies {
		names = append(names, strategy.Name())
	}
	return names
}

// Parse resolves a start instant. A non-empty epochMillis that parses as an
// integer wins outright; otherwise text goes through the strategy list.
func (p *Parser) Parse(text, epochMillis string) (Result, error) {
	if millis, ok := parseEpochMillis(epochMillis); ok {
		return Result{Time: time.UnixMilli(millis).UTC(), Strategy: StrategyEpochMillis}, nil
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, apperr.New(apperr.InvalidDate, strings.TrimSpace(epochMillis))
	}

	for _, strategy := range p.strategies {
		if parsed, ok := strategy.Parse(text); ok {
			return Result{Time: parsed, Strategy: strategy.Name()}, nil
		}
	}

	return Result{}, apperr.New(apperr.InvalidDate, text)
}

func parseEpochMillis(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return millis, true
}

// ZoneAbbreviation handles "MM/dd/yyyy, h:mm:ss a ZZZ" where ZZZ is a known abbreviation.
type ZoneAbbreviation struct {
	Offsets map[string]int
}

func (s ZoneAbbreviation) Name() string { return StrategyZoneAbbrev }

func (s ZoneAbbreviation) Parse(value string) (time.Time, bool) {
	rest, token, ok := splitTrailingToken(value)
	if !ok {
		return time.Time{}, false
	}
	token = strings.ToUpper(token)
	offset, known := s.Offsets[token]
	if !known {
		return time.Time{}, false
	}
	return parseLayouts(dateTimeLayouts, rest, time.FixedZone(token, offset))
}

// Zoneless handles "MM/dd/yyyy, h:mm:ss a" in a configured location.
type Zoneless struct {
	Location *time.Location
}

func (s Zoneless) Name() string { return StrategyZoneless }

func (s Zoneless) Parse(value string) (time.Time, bool) {
	return parseLayouts(dateTimeLayouts, value, s.Location)
}

// DateOnly handles "MM/dd/yyyy", resolving to midnight in Location.
type DateOnly struct {
	Location *time.Location
}

func (s DateOnly) Name() string { return StrategyDateOnly }

func (s DateOnly) Parse(value string) (time.Time, bool) {
	return parseLayouts(dateOnlyLayouts, value, s.Location)
}

// FixedOffset strips a short trailing token assumed to be an unknown zone
// abbreviation and reads the remainder at a fixed UTC offset.
type FixedOffset struct {
	Offset time.Duration
}

func (s FixedOffset) Name() string { return StrategyFixedOffset }

func (s FixedOffset) Parse(value string) (time.Time, bool) {
	rest, _, ok := splitTrailingToken(value)
	if !ok {
		return time.Time{}, false
	}
	zone := time.FixedZone(FormatOffset(s.Offset), int(s.Offset/time.Second))
	return parseLayouts(dateTimeLayouts, rest, zone)
}

func splitTrailingToken(value string) (string, string, bool) {
	value = strings.TrimSpace(value)
	idx := strings.LastIndex(value, " ")
	if idx <= 0 {
		return "", "", false
	}
	token := value[idx+1:]
	if token == "" || len(token) > maxZoneTokenLength {
		return "", "", false
	}
	return strings.TrimSpace(value[:idx]), token, true
}

func parseLayouts(layouts []string, value string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	value = strings.ToUpper(strings.TrimSpace(value))
	for _, layout := range layouts {
		if parsed, err := time.ParseInLocation(layout, value, loc); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// ParseOffset reads "+05:30", "-0800" or "5h30m" style offsets.
func ParseOffset(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultFallbackOffset, nil
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d, nil
	}
	for _, layout := range []string{"-07:00", "-0700", "-07"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			_, seconds := parsed.Zone()
			return time.Duration(seconds) * time.Second, nil
		}
	}
	return 0, apperr.New(apperr.TimezoneConversionFailed, fmt.Sprintf("offset %q", raw))
}

func FormatOffset(offset time.Duration) string {
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	hours := int(offset / time.Hour)
	minutes := int((offset % time.Hour) / time.Minute)
	return fmt.Sprintf("UTC%s%02d:%02d", sign, hours, minutes)
}

// LoadLocation resolves "Local", "" or an IANA name.
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	switch strings.ToLower(name) {
	case "", "local":
		return time.Local, nil
	case "utc":
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, apperr.Wrap(apperr.TimezoneConversionFailed, fmt.Sprintf("location %q", name), err)
	}
	return loc, nil
}
