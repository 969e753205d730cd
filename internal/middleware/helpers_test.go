package middleware

import "openindex/internal/config"

func otelConfig() config.TelemetryConfig {
	return config.TelemetryConfig{
		Environment:    "test",
		TraceExporter:  "none",
		MetricExporter: "prometheus",
		SampleRatio:    1,
	}
}
