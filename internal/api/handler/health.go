package handler

import (
	"context"
	"net/http"

	"github.com/mcoot/connections-go/internal/api/response"
)

// Pinger reports whether a backend is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles the health check endpoint
type HealthHandler struct {
	storage Pinger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(storage Pinger) *HealthHandler {
	return &HealthHandler{storage: storage}
}

// Health handles GET /api/v1/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.Ping(r.Context()); err != nil {
		response.JSON(w, http.StatusServiceUnavailable, response.Health{Status: "degraded", Storage: "unreachable"})
		return
	}
	response.JSON(w, http.StatusOK, response.Health{Status: "ok", Storage: "ok"})
}
