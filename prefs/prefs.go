// Package prefs persists the last-used hourly rates so future imports can be
// prefilled. Values live in a flat key-value document on disk.
package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"

	"clockedout/internal/logging"
	"clockedout/salary"
	"clockedout/timesheet"
)

const (
	KeyWeekdayRate = "weekdayRate"
	KeyWeekendRate = "weekendRate"

	DefaultWeekdayRate = 90.0
	DefaultWeekendRate = 100.0
)

// DefaultRates is used for any rate that has never been saved.
var DefaultRates = timesheet.HourlyRates{Weekday: DefaultWeekdayRate, Weekend: DefaultWeekendRate}

// KeyValueStore is the minimal preference collaborator.
type KeyValueStore interface {
	Get(key string) (any, bool)
	Set(key string, value any) error
	// SetAll stores every pair or none of them.
	SetAll(values map[string]any) error
}

// MemoryStore keeps values for the life of the process.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]any
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]any)}
}

func (s *MemoryStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok
}

func (s *MemoryStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStore) SetAll(values map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, value := range values {
		s.values[key] = value
	}
	return nil
}

// FileStore is a KeyValueStore backed by a YAML, TOML or JSON file chosen by
// extension. Every Set rewrites the whole file.
type FileStore struct {
	mu     sync.RWMutex
	path   string
	format string
	values map[string]any
}

// OpenFileStore loads path if it exists; a missing file starts empty.
func OpenFileStore(path string) (*FileStore, error) {
	format, err := formatForPath(path)
	if err != nil {
		return nil, err
	}

	store := &FileStore{path: path, format: format, values: make(map[string]any)}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return store, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error accessing preferences file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a file", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading preferences file: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return store, nil
	}

	values, err := decode(format, data)
	if err != nil {
		return nil, err
	}
	store.values = values
	return store, nil
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok
}

func (s *FileStore) Set(key string, value any) error {
	return s.SetAll(map[string]any{key: value})
}

// SetAll applies values and rewrites the file once. On a failed write the
// in-memory state is rolled back.
func (s *FileStore) SetAll(values map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := make(map[string]any, len(values))
	for key := range values {
		if value, ok := s.values[key]; ok {
			previous[key] = value
		}
	}
	for key, value := range values {
		s.values[key] = value
	}
	if err := s.flush(); err != nil {
		for key := range values {
			if value, ok := previous[key]; ok {
				s.values[key] = value
			} else {
				delete(s.values, key)
			}
		}
		return err
	}
	return nil
}

func (s *FileStore) flush() error {
	data, err := encode(s.format, s.values)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create preferences directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write preferences file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace preferences file: %w", err)
	}
	return nil
}

func formatForPath(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return "yaml", nil
	case ".toml":
		return "toml", nil
	case ".json":
		return "json", nil
	default:
		return "", fmt.Errorf("unsupported preferences file format: %q", ext)
	}
}

func decode(format string, data []byte) (map[string]any, error) {
	values := make(map[string]any)
	switch format {
	case "toml":
		tree, err := toml.LoadBytes(data)
		if err != nil {
			return nil, fmt.Errorf("error parsing TOML file: %w", err)
		}
		values = tree.ToMap()
	case "yaml":
		if err := yaml.Unmarshal(data, &values); err != nil {
			return nil, fmt.Errorf("error parsing YAML file: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, &values); err != nil {
			return nil, fmt.Errorf("error parsing JSON file: %w", err)
		}
	}
	if values == nil {
		values = make(map[string]any)
	}
	return values, nil
}

func encode(format string, values map[string]any) ([]byte, error) {
	switch format {
	case "toml":
		tree, err := toml.TreeFromMap(values)
		if err != nil {
			return nil, fmt.Errorf("encode TOML preferences: %w", err)
		}
		return []byte(tree.String()), nil
	case "yaml":
		data, err := yaml.Marshal(values)
		if err != nil {
			return nil, fmt.Errorf("encode YAML preferences: %w", err)
		}
		return data, nil
	default:
		data, err := json.MarshalIndent(values, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode JSON preferences: %w", err)
		}
		return append(data, '\n'), nil
	}
}

// Rates reads and writes the last-used rate pair through a KeyValueStore.
type Rates struct {
	store    KeyValueStore
	defaults timesheet.HourlyRates
	logger   *logging.Logger
}

func NewRates(store KeyValueStore, defaults timesheet.HourlyRates, logger *logging.Logger) *Rates {
	if store == nil {
		store = NewMemoryStore()
	}
	if defaults.Weekday == 0 && defaults.Weekend == 0 {
		defaults = DefaultRates
	}
	return &Rates{store: store, defaults: defaults, logger: logging.OrDiscard(logger, logging.ComponentPrefs)}
}

func (r *Rates) Defaults() timesheet.HourlyRates {
	return r.defaults
}

// LoadRates returns the stored pair. Missing or invalid values fall back to
// the defaults one field at a time.
func (r *Rates) LoadRates() timesheet.HourlyRates {
	return timesheet.HourlyRates{
		Weekday: r.load(KeyWeekdayRate, salary.FieldWeekdayRate, r.defaults.Weekday),
		Weekend: r.load(KeyWeekendRate, salary.FieldWeekendRate, r.defaults.Weekend),
	}
}

func (r *Rates) load(key, field string, fallback float64) float64 {
	raw, ok := r.store.Get(key)
	if !ok {
		return fallback
	}
	value, ok := toFloat(raw)
	if !ok {
		r.logger.Warn("ignoring unreadable stored rate", "key", key, "value", raw)
		return fallback
	}
	if err := salary.ValidateRate(value, field); err != nil {
		r.logger.Warn("ignoring invalid stored rate", "key", key, "error", err)
		return fallback
	}
	return value
}

// SaveRates validates and stores both rates in a single write.
func (r *Rates) SaveRates(rates timesheet.HourlyRates) error {
	if err := salary.ValidateRates(rates); err != nil {
		return err
	}
	err := r.store.SetAll(map[string]any{
		KeyWeekdayRate: rates.Weekday,
		KeyWeekendRate: rates.Weekend,
	})
	if err != nil {
		return fmt.Errorf("save rates: %w", err)
	}
	r.logger.Debug("saved rates", "weekday_rate", rates.Weekday, "weekend_rate", rates.Weekend)
	return nil
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}
