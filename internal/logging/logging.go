// Package logging wraps slog with a component attribute so every line can be
// traced back to the importer, aggregator, storage or workflow.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	ComponentApp       = "app"
	ComponentParser    = "parser"
	ComponentImporter  = "importer"
	ComponentAggregate = "aggregate"
	ComponentStorage   = "storage"
	ComponentWorkflow  = "importflow"
	ComponentReport    = "report"
	ComponentPrefs     = "prefs"
)

// Logger is an slog.Logger bound to one component.
type Logger struct {
	*slog.Logger
	component string
}

type Config struct {
	Level  string
	Format string
	Output io.Writer
}

// New builds a logger writing text or JSON records to cfg.Output (stderr by default).
func New(cfg Config) (*Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "text":
		handler = slog.NewTextHandler(out, opts)
	case "json":
		handler = slog.NewJSONHandler(out, opts)
	default:
		return nil, fmt.Errorf("unsupported log format %q (supported: text|json)", cfg.Format)
	}

	return &Logger{Logger: slog.New(handler), component: ComponentApp}, nil
}

// Discard returns a logger that drops everything; used by tests and as a nil fallback.
func Discard() *Logger {
	return &Logger{
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		component: ComponentApp,
	}
}

func ParseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unsupported log level %q (supported: debug|info|warn|error)", raw)
	}
}

// WithComponent returns a child logger tagged with component.
func (l *Logger) WithComponent(component string) *Logger {
	if l == nil {
		l = Discard()
	}
	return &Logger{
		Logger:    l.Logger.With("component", component),
		component: component,
	}
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger:    l.Logger.With(args...),
		component: l.component,
	}
}

func (l *Logger) Component() string {
	return l.component
}

// OrDiscard lets constructors accept a nil logger.
func OrDiscard(l *Logger, component string) *Logger {
	if l == nil {
		return Discard().WithComponent(component)
	}
	return l.WithComponent(component)
}

func SetDefault(l *Logger) {
	slog.SetDefault(l.Logger)
}
