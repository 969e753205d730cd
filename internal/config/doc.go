// Package config provides configuration management for the resolver.
//
// # Configuration Sources
//
// Configuration is assembled from the following sources in order of
// increasing precedence:
//
//	1. Default() values
//	2. A YAML file (OI_CONFIG_FILE, ./config.yaml or ./configs/config.yaml)
//	3. Environment variables with the OI_ prefix
//
// # Environment Variables
//
// Variables follow the struct nesting:
//
//	OI_SERVER_PORT=8000
//	OI_SERVER_REQUEST_TIMEOUT=5s
//	OI_LOGGING_LEVEL=debug
//	OI_PATHS_RECORDS_DIR=/srv/openindex/records
//	OI_TELEMETRY_TRACE_EXPORTER=stdout
//
// # Paths
//
// ResolvePaths turns the configured (possibly relative) directories into
// absolute ones, anchored at the working directory or, with
// paths.relative_to_exe, at the executable directory.
package config
