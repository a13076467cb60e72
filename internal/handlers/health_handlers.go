package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"
)

const healthCheckTimeout = 3 * time.Second

// Pinger is a dependency that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlers handles health check and monitoring endpoints
type HealthHandlers struct {
	checks    []namedCheck
	version   string
	startedAt time.Time
}

type namedCheck struct {
	name     string
	pinger   Pinger
	critical bool
}

// NewHealthHandlers creates a new health handlers instance. The database is
// critical for readiness; cache and storage only degrade the service.
func NewHealthHandlers(db, cache, storage Pinger, version string) *HealthHandlers {
	return &HealthHandlers{
		checks: []namedCheck{
			{name: "database", pinger: db, critical: true},
			{name: "redis", pinger: cache},
			{name: "storage", pinger: storage},
		},
		version:   version,
		startedAt: time.Now(),
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Uptime    string            `json:"uptime"`
	Version   string            `json:"version"`
}

// CheckResult is the outcome of one dependency check.
type CheckResult struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	LatencyMS int64  `json:"latencyMs"`
}

type DetailedHealth struct {
	OverallStatus string                 `json:"overallStatus"`
	Checks        map[string]CheckResult `json:"checks"`
	Timestamp     string                 `json:"timestamp"`
	Version       string                 `json:"version"`
	Uptime        string                 `json:"uptime"`
	Goroutines    int                    `json:"goroutines"`
}

func (h *HealthHandlers) run(ctx context.Context) (map[string]CheckResult, bool, bool) {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	results := make(map[string]CheckResult, len(h.checks))
	healthy, ready := true, true
	for _, check := range h.checks {
		if check.pinger == nil {
			results[check.name] = CheckResult{Status: "disabled"}
			continue
		}
		start := time.Now()
		err := check.pinger.Ping(ctx)
		result := CheckResult{Status: "healthy", LatencyMS: time.Since(start).Milliseconds()}
		if err != nil {
			result.Status = "unhealthy"
			result.Message = err.Error()
			healthy = false
			if check.critical {
				ready = false
			}
		}
		results[check.name] = result
	}
	return results, healthy, ready
}

func (h *HealthHandlers) uptime() string {
	return time.Since(h.startedAt).Round(time.Second).String()
}

// HealthCheck handles GET /health
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	results, healthy, _ := h.run(c.Request().Context())

	health := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string, len(results)),
		Uptime:    h.uptime(),
		Version:   h.version,
	}
	for name, result := range results {
		health.Services[name] = result.Status
	}

	statusCode := http.StatusOK
	if !healthy {
		health.Status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}
	return c.JSON(statusCode, health)
}

// DetailedHealthCheck handles GET /health/detailed
func (h *HealthHandlers) DetailedHealthCheck(c echo.Context) error {
	results, healthy, _ := h.run(c.Request().Context())

	detailed := &DetailedHealth{
		OverallStatus: "healthy",
		Checks:        results,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       h.version,
		Uptime:        h.uptime(),
		Goroutines:    runtime.NumGoroutine(),
	}

	statusCode := http.StatusOK
	if !healthy {
		detailed.OverallStatus = "degraded"
		statusCode = http.StatusServiceUnavailable
	}
	return c.JSON(statusCode, detailed)
}

// ReadinessCheck handles GET /health/ready. Only critical dependencies
// decide readiness.
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	_, _, ready := h.run(c.Request().Context())
	if !ready {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":  "not_ready",
			"message": "Critical services unavailable",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ready",
		"message": "All critical services operational",
	})
}

// LivenessCheck handles GET /health/live
func (h *HealthHandlers) LivenessCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "alive",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
