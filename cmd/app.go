package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"clockedout/aggregate"
	"clockedout/apperr"
	"clockedout/config"
	"clockedout/importer"
	"clockedout/importflow"
	"clockedout/internal/dateparse"
	"clockedout/internal/logging"
	"clockedout/prefs"
	"clockedout/report"
	"clockedout/storage"
	"clockedout/timesheet"
)

// app holds the services a command works with. Commands open it once and
// close it when they return.
type app struct {
	cfg      *config.Config
	logger   *logging.Logger
	location *time.Location
	store    *storage.Store
	rates    *prefs.Rates
}

func openApp() (*app, error) {
	cfg, err := config.LoadAndValidate()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(dbPath) != "" {
		cfg.Database.Path = dbPath
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	location, err := dateparse.LoadLocation(cfg.Calendar.Timezone)
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(cfg.Database.Path, logger)
	if err != nil {
		return nil, err
	}

	prefStore, err := prefs.OpenFileStore(cfg.Preferences.Path)
	if err != nil {
		store.Close()
		return nil, err
	}
	defaults := timesheet.HourlyRates{Weekday: cfg.Rates.Weekday, Weekend: cfg.Rates.Weekend}

	return &app{
		cfg:      cfg,
		logger:   logger,
		location: location,
		store:    store,
		rates:    prefs.NewRates(prefStore, defaults, logger),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

func newLogger(cfg *config.Config) (*logging.Logger, error) {
	level := cfg.Log.Level
	if strings.TrimSpace(logLevel) != "" {
		level = logLevel
	}
	logger, err := logging.New(logging.Config{Level: level, Format: cfg.Log.Format, Output: os.Stderr})
	if err != nil {
		return nil, err
	}
	logging.SetDefault(logger)
	return logger, nil
}

func (a *app) aggregator() (*aggregate.Aggregator, error) {
	policy, err := aggregate.ParsePolicy(a.cfg.Calendar.WeekdayPolicy)
	if err != nil {
		return nil, err
	}
	weekStart, err := aggregate.ParseWeekStart(a.cfg.Calendar.WeekStart)
	if err != nil {
		return nil, err
	}
	return aggregate.New(aggregate.Options{
		Policy:    policy,
		WeekStart: weekStart,
		Location:  a.location,
	}, a.logger), nil
}

func (a *app) ingestor() (*importer.Ingestor, error) {
	offset, err := dateparse.ParseOffset(a.cfg.Parser.FallbackOffset)
	if err != nil {
		return nil, err
	}
	parser := dateparse.New(dateparse.Options{
		Location:       a.location,
		FallbackOffset: &offset,
	})
	return importer.NewIngestor(parser, a.logger), nil
}

func (a *app) workflow() (*importflow.Workflow, error) {
	ingestor, err := a.ingestor()
	if err != nil {
		return nil, err
	}
	aggregator, err := a.aggregator()
	if err != nil {
		return nil, err
	}
	return importflow.New(importflow.Config{
		Parser:     ingestor,
		Aggregator: aggregator,
		Monthly:    a.store.Monthly(),
		Weekly:     a.store.Weekly(),
		Rates:      a.rates,
		Logger:     a.logger,
	})
}

func (a *app) reports() *report.Builder {
	return report.NewBuilder(a.store.Monthly(), a.store.Weekly(), a.location, a.logger)
}

// parseMonthFlag validates a --month value.
func parseMonthFlag(raw string) (string, error) {
	month := strings.TrimSpace(raw)
	if month == "" {
		return "", fmt.Errorf("--month is required (format MM/YYYY)")
	}
	if !timesheet.ValidMonthKey(month) {
		return "", apperr.New(apperr.InvalidFormat, fmt.Sprintf("month %q, expected MM/YYYY", raw))
	}
	return month, nil
}
