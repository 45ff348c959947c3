package health_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/eduflow/internal/app/features/health"
	"github.com/dalemusser/eduflow/internal/app/store/records"
	"go.uber.org/zap"
)

type healthBody struct {
	Status  string `json:"status"`
	Store   string `json:"store"`
	Backend string `json:"backend"`
	Error   string `json:"error"`
}

func serve(t *testing.T, h *health.Handler) (*httptest.ResponseRecorder, healthBody) {
	t.Helper()
	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	health.Routes(h).ServeHTTP(rec, req)

	var body healthBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return rec, body
}

func TestServe_StoreConnected(t *testing.T) {
	store := records.NewMemory(zap.NewNop())
	h := health.NewHandler(store, "memory", zap.NewNop())

	rec, body := serve(t, h)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want %q", ct, "application/json")
	}
	if body.Status != "ok" {
		t.Errorf("status: got %q, want %q", body.Status, "ok")
	}
	if body.Store != "connected" {
		t.Errorf("store: got %q, want %q", body.Store, "connected")
	}
	if body.Backend != "memory" {
		t.Errorf("backend: got %q, want %q", body.Backend, "memory")
	}
}

func TestServe_StoreDown(t *testing.T) {
	store := records.NewMemory(zap.NewNop())
	store.SetUnavailable(errors.New("connection refused"))
	h := health.NewHandler(store, "memory", zap.NewNop())

	rec, body := serve(t, h)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
	if body.Status != "error" {
		t.Errorf("status: got %q, want %q", body.Status, "error")
	}
	if body.Store != "disconnected" {
		t.Errorf("store: got %q, want %q", body.Store, "disconnected")
	}
	if body.Error == "" {
		t.Error("expected error detail in response")
	}
}
