package schema

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/datachat/datachat/internal/observability"
)

// MemoryCache is a single-slot, process-wide cache. The schema itself is
// tenant-independent, so all tenants share one view; only row data is
// tenant-scoped. The mutex is held across a rebuild so readers that observe
// an expired slot block and receive that one rebuild's result.
type MemoryCache struct {
	source Source
	ttl    time.Duration
	logger *slog.Logger

	// Now is overridable so tests control freshness deterministically.
	Now func() time.Time

	mu    sync.Mutex
	entry *cacheEntry
}

type cacheEntry struct {
	description string
	builtAt     time.Time
}

func NewMemoryCache(source Source, ttl time.Duration, logger *slog.Logger) *MemoryCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryCache{
		source: source,
		ttl:    ttl,
		logger: logger,
		Now:    time.Now,
	}
}

func (c *MemoryCache) Get(ctx context.Context) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.Now()
	if c.entry != nil && now.Sub(c.entry.builtAt) < c.ttl {
		observability.ObserveSchemaCacheHit()
		return c.entry.description
	}

	description, err := c.source.Describe(ctx)
	observability.ObserveSchemaCacheRebuild(err != nil)
	if err != nil {
		// Do not cache the sentinel: the next request retries the rebuild.
		c.logger.WarnContext(ctx, "schema introspection failed",
			slog.String("trace_id", observability.TraceIDFromContext(ctx)),
			slog.Any("error", err),
		)
		return Unavailable
	}

	c.entry = &cacheEntry{description: description, builtAt: now}
	return description
}

func (c *MemoryCache) Invalidate(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = nil
}
