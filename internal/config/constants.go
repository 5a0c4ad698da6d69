package config

import "time"

// Application constants
const (
	AppName    = "csvaudit"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable (CSVAUDIT_*).
	EnvPrefix = "CSVAUDIT"

	// ConfigFileEnv names an explicit YAML config file.
	ConfigFileEnv = "CSVAUDIT_CONFIG"
)

// Inspection defaults
const (
	DefaultDataDir     = "data/raw"
	DefaultPeekRows    = 5000
	DefaultLabelColumn = "Label"
	DefaultMissingTopK = 15
	DefaultMaxCols     = 25
	DefaultWorkers     = 4
)

// Server defaults
const (
	DefaultPort            = 8080
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultRequestTimeout  = 2 * time.Minute
	DefaultRateLimitRPS    = 20
	DefaultRateLimitBurst  = 40
)

// Logging defaults
const (
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "json"
	DefaultLogOutput   = "console"
	DefaultLogFilePath = "logs/csvaudit.log"
)
