// Package conf loads threshgen settings and the threshold routing configuration.
package conf

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/threshgen/threshgen/internal/logger"
)

// EnvPrefix is the prefix of environment variables overriding settings.
const EnvPrefix = "THRESHGEN"

// Setting keys, shared by flags, environment variables and settings files.
const (
	KeyOpennmsHome      = "opennms-home"
	KeyConfig           = "config"
	KeyNotifications    = "notifications"
	KeyLogLevel         = "log-level"
	KeyOutput           = "output"
	KeyHistoryDatabase  = "history.database"
	KeyHistoryRetention = "history.retention"
	KeyMetricsTextfile  = "metrics.textfile"
)

// Output formats for commands printing results.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// OutputFormats lists the accepted output formats.
var OutputFormats = []string{OutputTable, OutputJSON, OutputYAML}

// ErrInvalidSettings is returned when settings fail validation.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings holds the runtime options of threshgen.
type Settings struct {
	OpennmsHome   string          `mapstructure:"opennms-home" yaml:"opennms-home"`
	Config        string          `mapstructure:"config" yaml:"config"`
	Notifications string          `mapstructure:"notifications" yaml:"notifications"`
	LogLevel      string          `mapstructure:"log-level" yaml:"log-level"`
	Output        string          `mapstructure:"output" yaml:"output"`
	History       HistorySettings `mapstructure:"history" yaml:"history"`
	Metrics       MetricsSettings `mapstructure:"metrics" yaml:"metrics"`
}

// HistorySettings controls the generation run history database.
type HistorySettings struct {
	// Database is the sqlite file path; empty disables history.
	Database  string   `mapstructure:"database" yaml:"database"`
	Retention Duration `mapstructure:"retention" yaml:"retention"`
}

// MetricsSettings controls the Prometheus textfile export.
type MetricsSettings struct {
	Textfile string `mapstructure:"textfile" yaml:"textfile"`
}

// NewViper returns a viper instance with defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyLogLevel, string(logger.LogLevelInfo))
	v.SetDefault(KeyOutput, OutputTable)
	v.SetDefault(KeyHistoryDatabase, "")
	v.SetDefault(KeyHistoryRetention, "90d")
	v.SetDefault(KeyMetricsTextfile, "")
	v.SetDefault(KeyOpennmsHome, "")
	v.SetDefault(KeyConfig, "")
	v.SetDefault(KeyNotifications, "")
	return v
}

// LoadSettings reads the optional settings file and unmarshals v into Settings.
func LoadSettings(v *viper.Viper, settingsFile string) (*Settings, error) {
	if settingsFile != "" {
		v.SetConfigFile(settingsFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read settings file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s, viper.DecodeHook(DurationDecodeHook())); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the values that cannot be validated by decoding alone.
func (s *Settings) Validate() error {
	if _, err := logger.ParseLevel(s.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	if !slices.Contains(OutputFormats, s.Output) {
		return fmt.Errorf("%w: output must be one of %s, got %q", ErrInvalidSettings, strings.Join(OutputFormats, ", "), s.Output)
	}
	if s.History.Retention < 0 {
		return fmt.Errorf("%w: history retention cannot be negative", ErrInvalidSettings)
	}
	return nil
}

// RetentionCutoff returns the time before which history runs are pruned, or
// the zero time when retention is disabled.
func (s *Settings) RetentionCutoff(now time.Time) time.Time {
	if s.History.Retention == 0 {
		return time.Time{}
	}
	return now.Add(-s.History.Retention.Std())
}
