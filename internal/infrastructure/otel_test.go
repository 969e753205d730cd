package infrastructure

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"openindex/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInitializeOTel(t *testing.T) {
	tests := []struct {
		name        string
		cfg         config.TelemetryConfig
		wantErr     bool
		wantPromURL bool
		wantTracer  bool
	}{
		{
			name:        "prometheus metrics, no tracing",
			cfg:         config.TelemetryConfig{TraceExporter: "none", MetricExporter: "prometheus", SampleRatio: 1},
			wantPromURL: true,
		},
		{
			name:       "stdout tracing, no metrics",
			cfg:        config.TelemetryConfig{TraceExporter: "stdout", MetricExporter: "none", SampleRatio: 0.5},
			wantTracer: true,
		},
		{
			name:    "unknown trace exporter",
			cfg:     config.TelemetryConfig{TraceExporter: "zipkin", MetricExporter: "none"},
			wantErr: true,
		},
		{
			name:    "unknown metric exporter",
			cfg:     config.TelemetryConfig{TraceExporter: "none", MetricExporter: "statsd"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			providers, err := InitializeOTel(tt.cfg, discardLogger())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer providers.Shutdown(context.Background())

			assert.NotNil(t, providers.Tracer)
			assert.NotNil(t, providers.Meter)
			assert.Equal(t, tt.wantPromURL, providers.PrometheusHTTP != nil)
			assert.Equal(t, tt.wantTracer, providers.TracerProvider != nil)
		})
	}
}

func TestMetricsExposedOnPrometheusHandler(t *testing.T) {
	providers, err := InitializeOTel(config.TelemetryConfig{
		TraceExporter:  "none",
		MetricExporter: "prometheus",
		SampleRatio:    1,
	}, discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordResolution(ctx, "record", "jsonld", "ok")
	metrics.RecordSkipped(ctx, "earthpress", 2)
	metrics.RecordLoad(ctx, "record", 3*time.Millisecond)

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "resolver_resolutions_total")
	assert.Contains(t, body, `representation="jsonld"`)
	assert.Contains(t, body, "resolver_skipped_records_total")
	assert.Contains(t, body, "go_goroutines")
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordResolution(context.Background(), "record", "json", "ok")
		m.RecordSkipped(context.Background(), "ns", 1)
		m.RecordLoad(context.Background(), "record", time.Second)
	})
	assert.NotNil(t, NoopMetrics())
}
