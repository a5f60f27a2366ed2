package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// mockHealthChecker is a mock implementation of HealthChecker for testing.
type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) Ping(ctx context.Context) error {
	return m.err
}

func readyz(t *testing.T, checks map[string]HealthChecker) (int, HealthResponse) {
	t.Helper()

	rec := httptest.NewRecorder()
	NewHealthHandler(checks).Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	var response HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return rec.Code, response
}

func TestHealthHandler_Healthz(t *testing.T) {
	h := NewHealthHandler(nil)

	rec := httptest.NewRecorder()
	h.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	var response HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Status != "ok" {
		t.Errorf("expected status 'ok', got %s", response.Status)
	}
}

func TestHealthHandler_Readyz_AllHealthy(t *testing.T) {
	code, response := readyz(t, map[string]HealthChecker{
		"database": &mockHealthChecker{},
		"redis":    &mockHealthChecker{},
	})

	if code != http.StatusOK {
		t.Errorf("expected status 200, got %d", code)
	}
	if response.Status != "ok" {
		t.Errorf("expected status 'ok', got %s", response.Status)
	}
	if response.Checks["database"] != "ok" || response.Checks["redis"] != "ok" {
		t.Errorf("unexpected checks: %v", response.Checks)
	}
}

func TestHealthHandler_Readyz_DatabaseUnhealthy(t *testing.T) {
	code, response := readyz(t, map[string]HealthChecker{
		"database": &mockHealthChecker{err: errors.New("database is locked")},
		"redis":    &mockHealthChecker{},
	})

	if code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", code)
	}
	if response.Status != "unhealthy" {
		t.Errorf("expected status 'unhealthy', got %s", response.Status)
	}
	if response.Checks["database"] != "error: database is locked" {
		t.Errorf("unexpected database check: %s", response.Checks["database"])
	}
}

func TestHealthHandler_Readyz_RedisNotConfigured(t *testing.T) {
	code, response := readyz(t, map[string]HealthChecker{
		"database": &mockHealthChecker{},
		"redis":    nil,
	})

	if code != http.StatusOK {
		t.Errorf("expected status 200, got %d", code)
	}
	if response.Checks["redis"] != "not configured" {
		t.Errorf("expected 'not configured', got %s", response.Checks["redis"])
	}
}
