// Package handlers implements the operational HTTP endpoints of the ledger.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/benx421/banking-ledger/internal/service"
)

const healthTimeout = 2 * time.Second

// Health statuses
const (
	Healthy   = "healthy"
	Unhealthy = "unhealthy"
)

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status string `json:"status"`
}

// HealthHandler reports whether the database answers
type HealthHandler struct {
	healthChecker service.HealthChecker
	logger        *slog.Logger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(healthChecker service.HealthChecker, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		healthChecker: healthChecker,
		logger:        logger,
	}
}

// ServeHTTP handles GET /health
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	pingCtx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	status, code := Healthy, http.StatusOK
	if err := h.healthChecker.PingContext(pingCtx); err != nil {
		h.logger.Error("health check failed: database unreachable", "error", err)
		status, code = Unhealthy, http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(HealthResponse{Status: status}); err != nil {
		h.logger.Error("failed to encode health response", "error", err)
	}
}
