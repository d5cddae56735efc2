// Package retention prunes aged time-series rows on a schedule. Portfolio
// history is deliberately exempt: performance windows need the full series.
package retention

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tradekeeper/portfolio-analytics/internal/models"
)

// Default retention ages per data class
const (
	DefaultMarketDataAge    = 365 * 24 * time.Hour
	DefaultPriceUpdatesAge  = 365 * 24 * time.Hour
	DefaultSentimentAge     = 180 * 24 * time.Hour
	DefaultSystemMetricsAge = 90 * 24 * time.Hour

	DefaultSweepInterval = 24 * time.Hour
)

// Store is the pruning surface the manager drives
type Store interface {
	DeleteMarketDataOlderThan(cutoff time.Time) (int64, error)
	DeletePriceUpdatesOlderThan(cutoff time.Time) (int64, error)
	DeleteSentimentOlderThan(cutoff time.Time) (int64, error)
	DeleteSystemMetricsOlderThan(cutoff time.Time) (int64, error)
}

// MetricRecorder receives the row count each sweep pruned
type MetricRecorder interface {
	RecordMetric(m *models.SystemMetric) error
}

// Policy holds the retention age for each data class
type Policy struct {
	MarketDataAge    time.Duration
	PriceUpdatesAge  time.Duration
	SentimentAge     time.Duration
	SystemMetricsAge time.Duration
}

// DefaultPolicy returns the standard retention ages
func DefaultPolicy() Policy {
	return Policy{
		MarketDataAge:    DefaultMarketDataAge,
		PriceUpdatesAge:  DefaultPriceUpdatesAge,
		SentimentAge:     DefaultSentimentAge,
		SystemMetricsAge: DefaultSystemMetricsAge,
	}
}

// SweepResult reports rows pruned per data class in one sweep
type SweepResult struct {
	MarketData    int64
	PriceUpdates  int64
	Sentiment     int64
	SystemMetrics int64
	Errors        int
}

// Manager runs retention sweeps over the time-series tables
type Manager struct {
	store    Store
	policy   Policy
	interval time.Duration
	metrics  MetricRecorder
}

// NewManager creates a retention manager. Zero policy ages fall back to the
// defaults so a partially configured policy never means "delete everything".
// metrics may be nil to run without sweep metrics.
func NewManager(store Store, policy Policy, interval time.Duration, metrics MetricRecorder) *Manager {
	if policy.MarketDataAge <= 0 {
		policy.MarketDataAge = DefaultMarketDataAge
	}
	if policy.PriceUpdatesAge <= 0 {
		policy.PriceUpdatesAge = DefaultPriceUpdatesAge
	}
	if policy.SentimentAge <= 0 {
		policy.SentimentAge = DefaultSentimentAge
	}
	if policy.SystemMetricsAge <= 0 {
		policy.SystemMetricsAge = DefaultSystemMetricsAge
	}
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Manager{store: store, policy: policy, interval: interval, metrics: metrics}
}

// Sweep prunes every data class once. A failure in one class is logged and
// counted but does not stop the others.
func (m *Manager) Sweep(now time.Time) SweepResult {
	var result SweepResult

	classes := []struct {
		name   string
		cutoff time.Time
		prune  func(time.Time) (int64, error)
		out    *int64
	}{
		{"market_data", now.Add(-m.policy.MarketDataAge), m.store.DeleteMarketDataOlderThan, &result.MarketData},
		{"price_updates", now.Add(-m.policy.PriceUpdatesAge), m.store.DeletePriceUpdatesOlderThan, &result.PriceUpdates},
		{"sentiment_data", now.Add(-m.policy.SentimentAge), m.store.DeleteSentimentOlderThan, &result.Sentiment},
		{"system_metrics", now.Add(-m.policy.SystemMetricsAge), m.store.DeleteSystemMetricsOlderThan, &result.SystemMetrics},
	}

	for _, c := range classes {
		deleted, err := c.prune(c.cutoff)
		if err != nil {
			log.Printf("Retention sweep failed for %s: %v", c.name, err)
			result.Errors++
			continue
		}
		*c.out = deleted
		if deleted > 0 {
			log.Printf("Retention sweep pruned %d rows from %s", deleted, c.name)
		}
	}

	if m.metrics != nil {
		total := result.MarketData + result.PriceUpdates + result.Sentiment + result.SystemMetrics
		err := m.metrics.RecordMetric(&models.SystemMetric{
			Time:       now,
			MetricName: "retention_rows_pruned",
			Value:      decimal.NewFromInt(total),
		})
		if err != nil {
			log.Printf("Failed to record retention sweep metric: %v", err)
		}
	}
	return result
}

// Start runs a sweep immediately and then on every interval tick until the
// context is cancelled
func (m *Manager) Start(ctx context.Context) {
	log.Printf("Starting retention manager, sweeping every %s", m.interval)
	m.Sweep(time.Now())

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Retention manager shutting down...")
			return
		case <-ticker.C:
			m.Sweep(time.Now())
		}
	}
}
