package config

import "time"

// Application constants
const (
	AppName    = "OpenIndex Resolver"
	AppVersion = "0.2"
	EnvPrefix  = "OI"

	// ConfigFileEnv names an explicit YAML config file.
	ConfigFileEnv = "OI_CONFIG_FILE"

	// On-disk record layout
	NamespaceDescriptor = "_namespace.json"
	RecordExtension     = ".json"

	// Directories (relative to the base directory)
	DefaultRecordsDir  = "records"
	DefaultContextsDir = "contexts"
	DefaultStaticDir   = "static"
	DefaultLogsDir     = "logs"

	// Server defaults
	DefaultPort            = 8000
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultRequestTimeout  = 10 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1 << 20

	// Rate limiting
	DefaultRateLimitRPS   = 100
	DefaultRateLimitBurst = 50

	// Log settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
	DefaultLogOutput = "console"
	DefaultLogFile   = "logs/resolver.log"
)

// Operational endpoints. The leading underscore keeps them out of the
// namespace space: namespace segments may not start with '_'.
const (
	OpsBasePath     = "/_api"
	HealthEndpoint  = OpsBasePath + "/health"
	VersionEndpoint = OpsBasePath + "/version"
	MetricsEndpoint = OpsBasePath + "/metrics"
)
