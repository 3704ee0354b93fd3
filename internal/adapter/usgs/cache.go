package usgs

import (
	"context"
	"sync"
	"time"

	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/couchcryptid/quake-map-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

// FeedFetcher loads one feed document.
type FeedFetcher interface {
	FetchFeed(ctx context.Context) (domain.Feed, error)
}

// CachedFeed serves the last successful feed until it is older than ttl.
// Failures are never cached, so the next call after an error goes upstream.
type CachedFeed struct {
	inner   FeedFetcher
	ttl     time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics

	mu        sync.Mutex
	feed      domain.Feed
	fetchedAt time.Time
	valid     bool
}

// NewCachedFeed wraps inner with a TTL cache. A ttl of zero disables caching.
func NewCachedFeed(inner FeedFetcher, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *CachedFeed {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &CachedFeed{
		inner:   inner,
		ttl:     ttl,
		clock:   clock,
		metrics: metrics,
	}
}

// FetchFeed returns the cached feed when fresh, otherwise fetches a new one.
// The lock is held across the upstream call so concurrent page loads share a
// single request.
func (c *CachedFeed) FetchFeed(ctx context.Context) (domain.Feed, error) {
	if c.ttl <= 0 {
		return c.inner.FetchFeed(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid && c.clock.Since(c.fetchedAt) < c.ttl {
		c.metrics.FeedCache.WithLabelValues("hit").Inc()
		return c.feed, nil
	}
	c.metrics.FeedCache.WithLabelValues("miss").Inc()

	feed, err := c.inner.FetchFeed(ctx)
	if err != nil {
		return domain.Feed{}, err
	}
	c.feed = feed
	c.fetchedAt = c.clock.Now()
	c.valid = true
	return feed, nil
}
