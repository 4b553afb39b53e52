package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"time"

	"github.com/DevLab-Dome/kross-dashboard-2026/internal/storage"
)

// DefaultProbeTimeout bounds each readiness probe
const DefaultProbeTimeout = 2 * time.Second

// Prober is a dependency the readiness check pings
type Prober interface {
	Name() string
	Check(ctx context.Context) error
}

// ProbeFunc adapts a function to Prober
type ProbeFunc struct {
	ProbeName string
	Fn        func(ctx context.Context) error
}

// Name returns the probe name
func (p ProbeFunc) Name() string { return p.ProbeName }

// Check runs the probe
func (p ProbeFunc) Check(ctx context.Context) error { return p.Fn(ctx) }

// StorageProbe lists the object store root
func StorageProbe(store storage.ObjectStore) Prober {
	return ProbeFunc{ProbeName: "storage", Fn: func(ctx context.Context) error {
		_, err := store.List(ctx, "")
		return err
	}}
}

// Pinger is implemented by remote cache stores
type Pinger interface {
	Ping(ctx context.Context) error
}

// CacheProbe pings a remote cache
func CacheProbe(p Pinger) Prober {
	return ProbeFunc{ProbeName: "cache", Fn: p.Ping}
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	probes    []Prober
	timeout   time.Duration
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// NewHealthService creates a health service. Probes are run by ReadinessCheck.
func NewHealthService(version, buildTime string, logger *slog.Logger, probes ...Prober) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		buildTime: buildTime,
		probes:    probes,
		timeout:   DefaultProbeTimeout,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck pings every dependency. One failing probe makes the service not ready.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]ServiceHealth, len(hs.probes)),
	}

	for _, p := range hs.probes {
		sh := hs.runProbe(ctx, p)
		status.Services[p.Name()] = sh
		if sh.Status != "ready" {
			status.Status = "not_ready"
		}
	}
	return status
}

func (hs *HealthService) runProbe(ctx context.Context, p Prober) ServiceHealth {
	ctx, cancel := context.WithTimeout(ctx, hs.timeout)
	defer cancel()

	start := time.Now()
	err := p.Check(ctx)
	latency := time.Since(start)
	if err != nil {
		hs.logger.WarnContext(ctx, "Readiness probe failed",
			slog.String("probe", p.Name()),
			slog.String("error", err.Error()))
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("%s: %v", p.Name(), err),
			Latency: latency.String(),
		}
	}
	return ServiceHealth{Status: "ready", Latency: latency.String()}
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	probes := make([]string, 0, len(hs.probes))
	for _, p := range hs.probes {
		probes = append(probes, p.Name())
	}
	sort.Strings(probes)

	result := map[string]interface{}{
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
		"probes":       probes,
	}
	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	return result
}
