package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"openindex/internal/config"
)

// Health states
const (
	StatusOK       = "ok"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
	StatusDegraded = "degraded"
	StatusAlive    = "alive"
)

// HealthService provides health check functionality
type HealthService struct {
	name      string
	version   string
	paths     *config.Paths
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]any           `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents one readiness check
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a new health service
func NewHealthService(name, version string, paths *config.Paths, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("name", name),
		slog.String("version", version))

	return &HealthService{
		name:      name,
		version:   version,
		paths:     paths,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    StatusOK,
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck reports whether the directories the resolver serves from
// are present. Only the records directory is required; a missing contexts
// or static directory degrades the service without making it unready.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusReady,
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]ServiceHealth{
			"records":  hs.checkRecords(),
			"contexts": checkDir("contexts", hs.paths.ContextsDir),
			"static":   checkDir("static", hs.paths.StaticDir),
		},
	}

	if status.Services["records"].Status != StatusReady {
		status.Status = StatusNotReady
	} else if status.Services["contexts"].Status != StatusReady || status.Services["static"].Status != StatusReady {
		status.Status = StatusDegraded
	}

	if status.Status != StatusReady {
		hs.logger.WarnContext(ctx, "ReadinessCheck: not fully ready", slog.String("status", status.Status))
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    StatusAlive,
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]any{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]any {
	return map[string]any{
		"name":         hs.name,
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
}

// checkRecords requires the records directory and counts namespaces in it
func (hs *HealthService) checkRecords() ServiceHealth {
	dir := hs.paths.RecordsDir
	if h := checkDir("records", dir); h.Status != StatusReady {
		return h
	}

	descriptors, err := doublestar.Glob(os.DirFS(dir), "*/"+config.NamespaceDescriptor, doublestar.WithFilesOnly())
	if err != nil {
		return ServiceHealth{
			Status:  StatusNotReady,
			Message: fmt.Sprintf("Cannot list records directory: %v", err),
		}
	}

	return ServiceHealth{
		Status:  StatusReady,
		Message: fmt.Sprintf("%d namespaces", len(descriptors)),
	}
}

func checkDir(name, dir string) ServiceHealth {
	if !config.DirExists(dir) {
		return ServiceHealth{
			Status:  StatusNotReady,
			Message: fmt.Sprintf("%s directory not found: %s", name, dir),
		}
	}
	return ServiceHealth{Status: StatusReady}
}
