package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"csvaudit/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Data      DataConfig      `yaml:"data" envconfig:"DATA"`
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Export    ExportConfig    `yaml:"export" envconfig:"EXPORT"`
}

// DataConfig holds the inspection defaults shared by the CLI and the API
type DataConfig struct {
	Dir           string `yaml:"dir" envconfig:"DIR"`
	PreferredFile string `yaml:"preferred_file" envconfig:"PREFERRED_FILE"`
	PeekRows      int    `yaml:"peek_rows" envconfig:"PEEK_ROWS"`
	LabelColumn   string `yaml:"label_column" envconfig:"LABEL_COLUMN"`
	MissingTopK   int    `yaml:"missing_top_k" envconfig:"MISSING_TOP_K"`
	MaxCols       int    `yaml:"max_cols" envconfig:"MAX_COLS"`
	Workers       int    `yaml:"workers" envconfig:"WORKERS"`
	CleanColumns  bool   `yaml:"clean_columns" envconfig:"CLEAN_COLUMNS"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string          `yaml:"host" envconfig:"HOST"`
	Port            int             `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration   `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// TelemetryConfig controls OpenTelemetry tracing and metrics
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	TracingEnabled bool   `yaml:"tracing_enabled" envconfig:"TRACING_ENABLED"`
	MetricsEnabled bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
	// TraceOutput is "stdout" or a file path for the stdout trace exporter.
	TraceOutput string `yaml:"trace_output" envconfig:"TRACE_OUTPUT"`
}

// ExportConfig contains report export settings
type ExportConfig struct {
	IncludeBOM bool `yaml:"include_bom" envconfig:"INCLUDE_BOM"`
}

// Load resolves configuration from defaults, the optional YAML file and
// the environment, in increasing order of precedence.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit config file. An empty path skips the file.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, errors.NewConfigError("failed to load config from file", err).
				WithContext("file", configFile)
		}
	}

	// Fields without a matching variable keep the file or default value.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, errors.NewConfigError("failed to load config from env", err)
	}

	cfg.normalize()

	if err := cfg.validate(); err != nil {
		return nil, errors.NewConfigError("config validation failed", err)
	}

	return cfg, nil
}

// loadFromFile overlays YAML values onto cfg. Keys absent from the file
// leave cfg untouched.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// normalize replaces non-positive inspection knobs with their defaults
func (c *Config) normalize() {
	if c.Data.PeekRows <= 0 {
		c.Data.PeekRows = DefaultPeekRows
	}
	if c.Data.MissingTopK <= 0 {
		c.Data.MissingTopK = DefaultMissingTopK
	}
	if c.Data.MaxCols <= 0 {
		c.Data.MaxCols = DefaultMaxCols
	}
	if c.Data.Workers <= 0 {
		c.Data.Workers = DefaultWorkers
	}
	if c.Data.LabelColumn == "" {
		c.Data.LabelColumn = DefaultLabelColumn
	}
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Output = strings.ToLower(c.Logging.Output)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Data.Dir == "" {
		return fmt.Errorf("data directory must be set")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Server.RateLimit.Enabled && (c.Server.RateLimit.RPS <= 0 || c.Server.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive when enabled")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Logging.Level)
	}

	switch c.Logging.Output {
	case "console", "stdout", "file", "both":
	default:
		return fmt.Errorf("invalid log output: %q", c.Logging.Output)
	}

	if (c.Logging.Output == "file" || c.Logging.Output == "both") && c.Logging.FilePath == "" {
		return fmt.Errorf("log file path must be set for output %q", c.Logging.Output)
	}

	return nil
}

// DataDir returns the data directory as an absolute path when it can be
// resolved, and as configured otherwise.
func (c *Config) DataDir() string {
	if abs, err := filepath.Abs(c.Data.Dir); err == nil {
		return abs
	}
	return c.Data.Dir
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// getConfigFilePath returns the path to the config file, or "" if none
func getConfigFilePath() string {
	if explicit := os.Getenv(ConfigFileEnv); explicit != "" {
		return explicit
	}

	locations := []string{
		"csvaudit.yaml",
		"configs/csvaudit.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Dir:         DefaultDataDir,
			PeekRows:    DefaultPeekRows,
			LabelColumn: DefaultLabelColumn,
			MissingTopK: DefaultMissingTopK,
			MaxCols:     DefaultMaxCols,
			Workers:     DefaultWorkers,
		},
		Server: ServerConfig{
			Port:            DefaultPort,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			RequestTimeout:  DefaultRequestTimeout,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimitRPS,
				Burst:   DefaultRateLimitBurst,
			},
		},
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   DefaultLogOutput,
			FilePath: DefaultLogFilePath,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    AppName,
			TracingEnabled: false,
			MetricsEnabled: true,
			TraceOutput:    "stdout",
		},
		Export: ExportConfig{
			IncludeBOM: true,
		},
	}
}
