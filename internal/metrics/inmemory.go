package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	HTTPRequests       uint64
	StockCacheHits     uint64
	StockCacheMisses   uint64
	StockTableLoads    uint64
	StockTableFailures uint64
	UsersRegistered    uint64
	PlanetsCreated     uint64
	LoginSuccesses     uint64
	LoginFailures      uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	httpRequests       atomic.Uint64
	stockCacheHits     atomic.Uint64
	stockCacheMisses   atomic.Uint64
	stockTableLoads    atomic.Uint64
	stockTableFailures atomic.Uint64
	usersRegistered    atomic.Uint64
	planetsCreated     atomic.Uint64
	loginSuccesses     atomic.Uint64
	loginFailures      atomic.Uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		HTTPRequests:       m.httpRequests.Load(),
		StockCacheHits:     m.stockCacheHits.Load(),
		StockCacheMisses:   m.stockCacheMisses.Load(),
		StockTableLoads:    m.stockTableLoads.Load(),
		StockTableFailures: m.stockTableFailures.Load(),
		UsersRegistered:    m.usersRegistered.Load(),
		PlanetsCreated:     m.planetsCreated.Load(),
		LoginSuccesses:     m.loginSuccesses.Load(),
		LoginFailures:      m.loginFailures.Load(),
	}
}

// ObserveHTTPRequest counts handled requests.
func (m *InMemoryRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	m.httpRequests.Add(1)
}

// IncStockCacheHit increments cache hit counter.
func (m *InMemoryRecorder) IncStockCacheHit() {
	m.stockCacheHits.Add(1)
}

// IncStockCacheMiss increments cache miss counter.
func (m *InMemoryRecorder) IncStockCacheMiss() {
	m.stockCacheMisses.Add(1)
}

// ObserveStockTableLoad counts table loads and failed loads.
func (m *InMemoryRecorder) ObserveStockTableLoad(duration time.Duration, err error) {
	if err != nil {
		m.stockTableFailures.Add(1)
		return
	}
	m.stockTableLoads.Add(1)
}

// IncUserRegistered increments the registration counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	m.usersRegistered.Add(1)
}

// IncPlanetCreated increments the planet creation counter.
func (m *InMemoryRecorder) IncPlanetCreated() {
	m.planetsCreated.Add(1)
}

// IncLoginAttempt increments the login counter for result.
func (m *InMemoryRecorder) IncLoginAttempt(result string) {
	if result == LoginSuccess {
		m.loginSuccesses.Add(1)
		return
	}
	m.loginFailures.Add(1)
}
