package handlers

import (
	"context"
	"net/http"
	"time"

	"pressroom/internal/render"
)

// Pinger is anything that can report its own reachability.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// Health reports whether the process and its dependencies are up.
type Health struct {
	checks map[string]Pinger
}

// NewHealth creates a Health handler checking the named dependencies.
func NewHealth(checks map[string]Pinger) *Health {
	return &Health{checks: checks}
}

type healthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// Check answers 200 when every dependency responds and 503 otherwise.
func (h *Health) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok", Timestamp: time.Now().UTC(), Checks: map[string]string{}}
	status := http.StatusOK
	for name, p := range h.checks {
		if err := p.PingContext(ctx); err != nil {
			resp.Checks[name] = "unavailable"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	render.JSON(w, status, resp)
}
