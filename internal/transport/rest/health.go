package rest

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/minrisk/risk-management/internal"
)

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthUnhealthy HealthStatus = "unhealthy"
)

type HealthResponse struct {
	Status     HealthStatus          `json:"status"`
	CheckedAt  time.Time             `json:"checked_at"`
	Components map[string]CheckEntry `json:"components"`
}

type CheckEntry struct {
	Status     HealthStatus   `json:"status"`
	Message    string         `json:"message,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	CheckedAt  time.Time      `json:"checked_at"`
	DurationMs int64          `json:"duration_ms"`
}

type HealthHandler struct {
	db *sql.DB
}

func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// pingHandler answers liveness probes without touching any dependency.
func (h *HealthHandler) pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "OK"})
}

// healthCheckHandler answers readiness probes; unhealthy components flip the
// overall status and the HTTP code to 503.
func (h *HealthHandler) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := internal.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbEntry := h.checkDatabase(ctx)

	resp := HealthResponse{
		Status:     HealthHealthy,
		CheckedAt:  time.Now(),
		Components: map[string]CheckEntry{"postgres": dbEntry},
	}

	statusCode := http.StatusOK
	if dbEntry.Status == HealthUnhealthy {
		resp.Status = HealthUnhealthy
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}

func (h *HealthHandler) checkDatabase(ctx context.Context) CheckEntry {
	start := time.Now()
	err := h.db.PingContext(ctx)

	stats := h.db.Stats()
	entry := CheckEntry{
		Status:    HealthHealthy,
		CheckedAt: time.Now(),
		Details: map[string]any{
			"open_connections": stats.OpenConnections,
			"in_use":           stats.InUse,
		},
		DurationMs: time.Since(start).Milliseconds(),
	}

	if err != nil {
		entry.Status = HealthUnhealthy
		entry.Message = err.Error()
	}
	return entry
}
