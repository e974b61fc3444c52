package handler

import (
	"net/http"
	"runtime"
	"time"

	"refab-api/internal/cache"
	"refab-api/internal/repository"
	"refab-api/pkg/response"
)

// StartTime tracks when the server started for uptime calculation
var StartTime = time.Now()

// HealthHandler serves liveness, readiness and status probes.
type HealthHandler struct {
	repo  repository.QuoteRepository
	cache cache.Cache
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(repo repository.QuoteRepository, c cache.Cache) *HealthHandler {
	return &HealthHandler{repo: repo, cache: c}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.OK(w, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   "1.0.0",
	})
}

// Check represents an individual readiness check.
type Check struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Ready     bool      `json:"ready"`
	Timestamp time.Time `json:"timestamp"`
	Checks    []Check   `json:"checks"`
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	checks := []Check{
		{Name: "database", Status: "ok"},
		{Name: "cache", Status: "ok"},
	}

	if _, err := h.repo.Stats(r.Context()); err != nil {
		checks[0].Status = "error"
	}
	if err := h.cache.Set(r.Context(), "refab:health:ping", []byte("ok"), time.Minute); err != nil {
		checks[1].Status = "error"
	}

	allReady := true
	for _, check := range checks {
		if check.Status != "ok" {
			allReady = false
			break
		}
	}

	resp := ReadyResponse{
		Ready:     allReady,
		Timestamp: time.Now().UTC(),
		Checks:    checks,
	}

	if !allReady {
		response.JSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	response.OK(w, resp)
}

// StatusResponse represents the detailed status response.
type StatusResponse struct {
	Status     string                 `json:"status"`
	Timestamp  time.Time              `json:"timestamp"`
	Uptime     string                 `json:"uptime"`
	Goroutines int                    `json:"goroutines"`
	Database   map[string]interface{} `json:"database,omitempty"`
}

// Status handles GET /status
func (h *HealthHandler) Status(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Status:     "running",
		Timestamp:  time.Now().UTC(),
		Uptime:     time.Since(StartTime).Round(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
	}
	if stats, err := h.repo.Stats(r.Context()); err == nil {
		resp.Database = stats
	}
	response.OK(w, resp)
}
