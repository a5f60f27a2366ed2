// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Login attempt outcomes.
const (
	LoginSuccess = "success"
	LoginFailure = "failure"
)

// Recorder captures metric events for the application.
type Recorder interface {
	// HTTP metrics
	ObserveHTTPRequest(method, route string, status int, duration time.Duration)

	// Stock table cache metrics
	IncStockCacheHit()
	IncStockCacheMiss()
	ObserveStockTableLoad(duration time.Duration, err error)

	// Record creation metrics
	IncUserRegistered()
	IncPlanetCreated()
	IncLoginAttempt(result string)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
