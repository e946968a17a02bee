package worker

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestHealthServer() *HealthServer {
	return NewHealthServer(":0", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHealthServer_Liveness(t *testing.T) {
	h := newTestHealthServer()

	rec := httptest.NewRecorder()
	h.handleLiveness(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("liveness status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
}

func TestHealthServer_Readiness(t *testing.T) {
	h := newTestHealthServer()

	// Not ready at start.
	rec := httptest.NewRecorder()
	h.handleReadiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("initial readiness status = %d, want 503", rec.Code)
	}

	h.SetReady(true)
	rec = httptest.NewRecorder()
	h.handleReadiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("readiness status after SetReady = %d, want 200", rec.Code)
	}

	h.SetReady(false)
	rec = httptest.NewRecorder()
	h.handleReadiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readiness status after un-ready = %d, want 503", rec.Code)
	}
}
