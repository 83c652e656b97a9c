// Package healthcheck provides health and readiness check functionality
// Following the Health Check API pattern for cloud-native applications
package healthcheck

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Status represents the health status
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

// Check represents a health check
type Check struct {
	Name        string        `json:"name"`
	Status      Status        `json:"status"`
	Message     string        `json:"message,omitempty"`
	LastChecked time.Time     `json:"last_checked"`
	Duration    time.Duration `json:"duration_ms"`
}

// Response represents the health check response
type Response struct {
	Status    Status    `json:"status"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Checks    []Check   `json:"checks"`
}

// Checker defines the interface for health checks
type Checker interface {
	Check(ctx context.Context) Check
}

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc func(ctx context.Context) Check

// Check implements Checker
func (f CheckerFunc) Check(ctx context.Context) Check {
	return f(ctx)
}

// HealthCheck manages health checks
type HealthCheck struct {
	version  string
	checkers map[string]Checker
	logger   *zap.Logger
	mu       sync.RWMutex
}

// New creates a new health check instance
func New(version string, logger *zap.Logger) *HealthCheck {
	return &HealthCheck{
		version:  version,
		checkers: make(map[string]Checker),
		logger:   logger,
	}
}

// Register registers a health checker
func (h *HealthCheck) Register(name string, checker Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = checker
}

// Run executes all registered checks
func (h *HealthCheck) Run(ctx context.Context) Response {
	h.mu.RLock()
	defer h.mu.RUnlock()

	resp := Response{
		Status:    StatusHealthy,
		Version:   h.version,
		Timestamp: time.Now(),
	}

	for name, checker := range h.checkers {
		start := time.Now()
		check := checker.Check(ctx)
		check.Name = name
		check.LastChecked = time.Now()
		check.Duration = time.Since(start)

		if check.Status != StatusHealthy {
			resp.Status = StatusUnhealthy
			h.logger.Warn("Health check failed",
				zap.String("check", name),
				zap.String("message", check.Message),
			)
		}

		resp.Checks = append(resp.Checks, check)
	}

	return resp
}

// Handler returns an http.Handler serving the health check response
func (h *HealthCheck) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := h.Run(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if resp.Status != StatusHealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		_ = json.NewEncoder(w).Encode(resp)
	})
}
