package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/seenimoa/eventstudy/internal/infra"
	"github.com/seenimoa/eventstudy/pkg/models"
	"github.com/seenimoa/eventstudy/pkg/utils"
)

// CachedProvider memoises successful, non-empty responses of another provider.
// The benchmark is requested once per event with overlapping ranges; identical
// ranges (same announcement date) hit the cache.
type CachedProvider struct {
	next  PriceProvider
	cache *infra.Cache[[]models.PricePoint]
}

// sweepAt is the entry count above which a store first drops expired entries.
const sweepAt = 512

// Cached wraps p with a TTL cache.
func Cached(p PriceProvider, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		next:  p,
		cache: infra.NewCache[[]models.PricePoint](ttl),
	}
}

// Name returns the wrapped provider's name.
func (c *CachedProvider) Name() string { return c.next.Name() }

// Prices returns a cached copy when available.
func (c *CachedProvider) Prices(ctx context.Context, ticker string, start, end time.Time) ([]models.PricePoint, error) {
	key := fmt.Sprintf("%s:%s:%s", utils.NormalizeTicker(ticker), utils.FormatDate(start), utils.FormatDate(end))
	if cached, ok := c.cache.Get(key); ok {
		return append([]models.PricePoint(nil), cached...), nil
	}

	points, err := c.next.Prices(ctx, ticker, start, end)
	if err != nil {
		return nil, err
	}
	if len(points) > 0 {
		if c.cache.Len() >= sweepAt {
			c.cache.Cleanup()
		}
		c.cache.Set(key, append([]models.PricePoint(nil), points...))
	}
	return points, nil
}
