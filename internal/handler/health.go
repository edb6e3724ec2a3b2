package handler

import (
	"net/http"
)

// TenantCounter reports how many accounts are configured.
type TenantCounter interface {
	Len() int
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	tenants TenantCounter
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(tenants TenantCounter) *HealthHandler {
	return &HealthHandler{
		tenants: tenants,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.tenants == nil || h.tenants.Len() == 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "no accounts configured",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ready",
		"accounts": h.tenants.Len(),
	})
}
