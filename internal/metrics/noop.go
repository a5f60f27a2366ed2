package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// ObserveHTTPRequest is a no-op.
func (n *NoopRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {}

// IncStockCacheHit is a no-op.
func (n *NoopRecorder) IncStockCacheHit() {}

// IncStockCacheMiss is a no-op.
func (n *NoopRecorder) IncStockCacheMiss() {}

// ObserveStockTableLoad is a no-op.
func (n *NoopRecorder) ObserveStockTableLoad(duration time.Duration, err error) {}

// IncUserRegistered is a no-op.
func (n *NoopRecorder) IncUserRegistered() {}

// IncPlanetCreated is a no-op.
func (n *NoopRecorder) IncPlanetCreated() {}

// IncLoginAttempt is a no-op.
func (n *NoopRecorder) IncLoginAttempt(result string) {}
