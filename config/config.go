package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"clockedout/internal/dateparse"
)

const (
	KeyDatabasePath          = "database.path"
	KeyPreferencesPath       = "preferences.path"
	KeyRatesWeekday          = "rates.weekday"
	KeyRatesWeekend          = "rates.weekend"
	KeyCalendarWeekStart     = "calendar.week_start"
	KeyCalendarWeekdayPolicy = "calendar.weekday_policy"
	KeyCalendarTimezone      = "calendar.timezone"
	KeyParserFallbackOffset  = "parser.fallback_offset"
	KeyLogLevel              = "log.level"
	KeyLogFormat             = "log.format"

	// EnvPrefix namespaces environment overrides, e.g. CLOCKEDOUT_DATABASE_PATH.
	EnvPrefix = "CLOCKEDOUT"

	dataDirName = ".clockedout"
)

type Config struct {
	Database    DatabaseConfig    `mapstructure:"database"`
	Preferences PreferencesConfig `mapstructure:"preferences"`
	Rates       RatesConfig       `mapstructure:"rates"`
	Calendar    CalendarConfig    `mapstructure:"calendar"`
	Parser      ParserConfig      `mapstructure:"parser"`
	Log         LogConfig         `mapstructure:"log"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type PreferencesConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// RatesConfig seeds the preference store the first time it is read.
type RatesConfig struct {
	Weekday float64 `mapstructure:"weekday" validate:"gt=0,lte=10000"`
	Weekend float64 `mapstructure:"weekend" validate:"gt=0,lte=10000"`
}

type CalendarConfig struct {
	WeekStart     string `mapstructure:"week_start" validate:"oneof=sunday monday"`
	WeekdayPolicy string `mapstructure:"weekday_policy" validate:"oneof=sun-thu mon-fri"`
	Timezone      string `mapstructure:"timezone" validate:"required"`
}

type ParserConfig struct {
	FallbackOffset string `mapstructure:"fallback_offset" validate:"required"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn warning error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// DataDir is where the database and preferences live by default.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return dataDirName
	}
	return filepath.Join(home, dataDirName)
}

// SetDefaults sets default values if not provided
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// LoadAndValidate loads config from Viper and validates it
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	dir := DataDir()
	return fmt.Sprintf(`# clockedout configuration
database:
  path: %q

preferences:
  path: %q

# Seed hourly rates; "clockedout rates set" stores the ones actually used.
rates:
  weekday: 90
  weekend: 100

calendar:
  week_start: "sunday"        # sunday | monday
  weekday_policy: "sun-thu"   # sun-thu | mon-fri
  timezone: "Local"           # Local, UTC or an IANA name

parser:
  fallback_offset: "+05:30"   # applied when a zone token cannot be resolved

log:
  level: "warn"               # debug | info | warn | error
  format: "text"              # text | json
`, filepath.Join(dir, "clockedout.db"), filepath.Join(dir, "preferences.yaml"))
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	normalize(&cfg)

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := validateCalendar(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// BindEnv lets CLOCKEDOUT_SECTION_KEY variables override file values.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

func setDefaults(v *viper.Viper) {
	dir := DataDir()
	v.SetDefault(KeyDatabasePath, filepath.Join(dir, "clockedout.db"))
	v.SetDefault(KeyPreferencesPath, filepath.Join(dir, "preferences.yaml"))
	v.SetDefault(KeyRatesWeekday, 90.0)
	v.SetDefault(KeyRatesWeekend, 100.0)
	v.SetDefault(KeyCalendarWeekStart, "sunday")
	v.SetDefault(KeyCalendarWeekdayPolicy, "sun-thu")
	v.SetDefault(KeyCalendarTimezone, "Local")
	v.SetDefault(KeyParserFallbackOffset, "+05:30")
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFormat, "text")
}

func normalize(cfg *Config) {
	cfg.Database.Path = expandHome(strings.TrimSpace(cfg.Database.Path))
	cfg.Preferences.Path = expandHome(strings.TrimSpace(cfg.Preferences.Path))
	cfg.Calendar.WeekStart = strings.ToLower(strings.TrimSpace(cfg.Calendar.WeekStart))
	cfg.Calendar.WeekdayPolicy = strings.ToLower(strings.TrimSpace(cfg.Calendar.WeekdayPolicy))
	cfg.Calendar.Timezone = strings.TrimSpace(cfg.Calendar.Timezone)
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))
}

func validateCalendar(cfg Config) error {
	if _, err := dateparse.LoadLocation(cfg.Calendar.Timezone); err != nil {
		return fmt.Errorf("validation failed: calendar.timezone: %w", err)
	}
	if _, err := dateparse.ParseOffset(cfg.Parser.FallbackOffset); err != nil {
		return fmt.Errorf("validation failed: parser.fallback_offset: %w", err)
	}
	return nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
