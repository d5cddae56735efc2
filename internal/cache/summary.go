// Package cache is a Redis read-through cache for the portfolio summary
// view. A cache miss or a Redis outage just means computing the summary
// again, so every error here degrades to a miss.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tradekeeper/portfolio-analytics/internal/views"
)

// DefaultTTL bounds how stale a cached summary can get
const DefaultTTL = 30 * time.Second

// SummaryCache caches portfolio summaries in Redis with a TTL
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSummaryCache creates a summary cache. A non-positive ttl falls back to
// DefaultTTL.
func NewSummaryCache(client *redis.Client, ttl time.Duration) *SummaryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SummaryCache{client: client, ttl: ttl}
}

// Get returns the cached summary for a portfolio, or nil on a miss
func (c *SummaryCache) Get(ctx context.Context, portfolioID string) (*views.Summary, error) {
	data, err := c.client.Get(ctx, summaryKey(portfolioID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var summary views.Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// Set stores a summary under the portfolio's key with the cache TTL
func (c *SummaryCache) Set(ctx context.Context, summary views.Summary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, summaryKey(summary.PortfolioID), data, c.ttl).Err()
}

// Invalidate drops the cached summary for a portfolio. Called after an
// order fill settles; price ticks are left to expire with the TTL.
func (c *SummaryCache) Invalidate(ctx context.Context, portfolioID string) error {
	return c.client.Del(ctx, summaryKey(portfolioID)).Err()
}

func summaryKey(portfolioID string) string {
	return fmt.Sprintf("portfolio:summary:%s", portfolioID)
}
