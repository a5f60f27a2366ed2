package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusRecorder_Counters(t *testing.T) {
	p := NewPrometheus()

	p.IncStockCacheHit()
	p.IncStockCacheHit()
	p.IncStockCacheMiss()
	p.ObserveStockTableLoad(time.Millisecond, nil)
	p.ObserveStockTableLoad(time.Millisecond, errors.New("boom"))
	p.IncLoginAttempt(LoginFailure)

	if got := testutil.ToFloat64(p.stockCache.WithLabelValues("hit")); got != 2 {
		t.Errorf("expected 2 cache hits, got %v", got)
	}
	if got := testutil.ToFloat64(p.stockCache.WithLabelValues("miss")); got != 1 {
		t.Errorf("expected 1 cache miss, got %v", got)
	}
	if got := testutil.ToFloat64(p.stockLoads.WithLabelValues("error")); got != 1 {
		t.Errorf("expected 1 failed load, got %v", got)
	}
	if got := testutil.ToFloat64(p.loginAttempts.WithLabelValues(LoginFailure)); got != 1 {
		t.Errorf("expected 1 failed login, got %v", got)
	}
}

func TestPrometheusRecorder_Handler(t *testing.T) {
	p := NewPrometheus()
	p.IncPlanetCreated()
	p.ObserveHTTPRequest(http.MethodGet, "/planets", http.StatusOK, 3*time.Millisecond)

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		"planets_planets_created_total 1",
		`planets_http_requests_total{method="GET",route="/planets",status="200"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("expected exposition to contain %q", want)
		}
	}
}

func TestInMemoryRecorder_Snapshot(t *testing.T) {
	m := NewInMemory()
	m.IncUserRegistered()
	m.IncLoginAttempt(LoginSuccess)
	m.IncLoginAttempt(LoginFailure)
	m.ObserveStockTableLoad(time.Millisecond, nil)
	m.ObserveStockTableLoad(time.Millisecond, errors.New("x"))

	snap := m.Snapshot()
	if snap.UsersRegistered != 1 || snap.LoginSuccesses != 1 || snap.LoginFailures != 1 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
	if snap.StockTableLoads != 1 || snap.StockTableFailures != 1 {
		t.Errorf("unexpected load counters: %+v", snap)
	}
}
