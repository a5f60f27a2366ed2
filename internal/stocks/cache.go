package stocks

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/planetsapi/planets/internal/metrics"
)

// DefaultTTL is how long a loaded table is reused.
const DefaultTTL = 60 * time.Second

// Loader produces a fresh table.
type Loader func(ctx context.Context) (*Table, error)

// FileLoader returns a Loader that reads the CSV at path.
func FileLoader(path string) Loader {
	return func(context.Context) (*Table, error) {
		return LoadFile(path)
	}
}

// TableCache is a single-slot TTL cache for the stock table.
//
// A read within ttl of the last successful load returns the stored table without I/O.
// Otherwise the table is reloaded; concurrent reads of an expired slot share one load.
// A failed load leaves the slot expired.
type TableCache struct {
	load    Loader
	ttl     time.Duration
	now     func() time.Time
	metrics metrics.Recorder
	logger  *slog.Logger

	mu       sync.RWMutex
	table    *Table
	loadedAt time.Time

	group singleflight.Group
}

// CacheOption configures a TableCache.
type CacheOption func(*TableCache)

// WithClock sets the time source.
func WithClock(now func() time.Time) CacheOption {
	return func(c *TableCache) { c.now = now }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(recorder metrics.Recorder) CacheOption {
	return func(c *TableCache) { c.metrics = recorder }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) CacheOption {
	return func(c *TableCache) { c.logger = logger }
}

// NewTableCache creates an empty cache. A non-positive ttl uses DefaultTTL.
func NewTableCache(load Loader, ttl time.Duration, opts ...CacheOption) *TableCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &TableCache{
		load:    load,
		ttl:     ttl,
		now:     time.Now,
		metrics: metrics.NewNoop(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached table, loading it if the slot is absent or expired.
func (c *TableCache) Get(ctx context.Context) (*Table, error) {
	if t, ok := c.fresh(); ok {
		c.metrics.IncStockCacheHit()
		return t, nil
	}
	c.metrics.IncStockCacheMiss()

	v, err, _ := c.group.Do("table", func() (any, error) {
		// A flight that finished just before this one started may have refreshed the slot.
		if t, ok := c.fresh(); ok {
			return t, nil
		}
		return c.reload(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}
	return v.(*Table), nil
}

func (c *TableCache) fresh() (*Table, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.table == nil || c.now().Sub(c.loadedAt) >= c.ttl {
		return nil, false
	}
	return c.table, true
}

func (c *TableCache) reload(ctx context.Context) (*Table, error) {
	start := time.Now()
	t, err := c.load(ctx)
	duration := time.Since(start)
	c.metrics.ObserveStockTableLoad(duration, err)

	if err != nil {
		c.logger.Error("stock table load failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", duration),
		)
		return nil, err
	}

	c.mu.Lock()
	c.table = t
	c.loadedAt = c.now()
	c.mu.Unlock()

	c.logger.Info("stock table loaded",
		slog.Int("rows", t.Len()),
		slog.Duration("duration", duration),
	)
	return t, nil
}
