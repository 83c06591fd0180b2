package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// HealthHandler reports liveness and store reachability.
type HealthHandler struct {
	check func(ctx context.Context) error
}

// NewHealthHandler takes an optional store check; nil skips it.
func NewHealthHandler(check func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{check: check}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.check != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.check(ctx); err != nil {
			slog.Warn("health check failed", "err", err)
			writeError(w, http.StatusServiceUnavailable, "store unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
