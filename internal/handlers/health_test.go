package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthCheck(t *testing.T) {
	up := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("refused") })

	tests := []struct {
		name   string
		checks map[string]Pinger
		status int
		want   string
	}{
		{"no dependencies", nil, http.StatusOK, "ok"},
		{"all up", map[string]Pinger{"database": up, "valkey": up}, http.StatusOK, "ok"},
		{"one down", map[string]Pinger{"database": up, "valkey": down}, http.StatusServiceUnavailable, "degraded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewHealth(tt.checks).Check(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			body := decodeBody(t, rec)
			if body["status"] != tt.want {
				t.Errorf("status field = %v, want %s", body["status"], tt.want)
			}
			checks, _ := body["checks"].(map[string]any)
			for name := range tt.checks {
				if checks[name] == nil {
					t.Errorf("missing check %s in %v", name, checks)
				}
			}
			if tt.want == "degraded" && checks["valkey"] != "unavailable" {
				t.Errorf("valkey = %v, want unavailable", checks["valkey"])
			}
		})
	}
}
