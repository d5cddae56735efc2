package database

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tradekeeper/portfolio-analytics/internal/models"
)

// InsertMarketData upserts one OHLCV candle
func (db *DB) InsertMarketData(m *models.MarketData) error {
	query := `
		INSERT INTO market_data (time, asset_id, timeframe, open_price, high_price, low_price, close_price, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (time, asset_id, timeframe) DO UPDATE SET
			open_price = EXCLUDED.open_price,
			high_price = EXCLUDED.high_price,
			low_price = EXCLUDED.low_price,
			close_price = EXCLUDED.close_price,
			volume = EXCLUDED.volume
	`
	_, err := db.conn.Exec(query,
		m.Time, m.AssetID, m.Timeframe, m.OpenPrice, m.HighPrice, m.LowPrice, m.ClosePrice, m.Volume,
	)
	if err != nil {
		return fmt.Errorf("failed to insert market data: %w", err)
	}
	return nil
}

// InsertSentiment records one sentiment sample for an asset
func (db *DB) InsertSentiment(s *models.SentimentData) error {
	query := `
		INSERT INTO sentiment_data (time, asset_id, twitter_sentiment, reddit_sentiment, news_sentiment, overall_sentiment)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (time, asset_id) DO UPDATE SET
			twitter_sentiment = EXCLUDED.twitter_sentiment,
			reddit_sentiment = EXCLUDED.reddit_sentiment,
			news_sentiment = EXCLUDED.news_sentiment,
			overall_sentiment = EXCLUDED.overall_sentiment
	`
	_, err := db.conn.Exec(query,
		s.Time, s.AssetID, s.TwitterSentiment, s.RedditSentiment, s.NewsSentiment, s.OverallSentiment,
	)
	if err != nil {
		return fmt.Errorf("failed to insert sentiment data: %w", err)
	}
	return nil
}

// RecordMetric appends one operational metric sample. A zero Time defaults
// to now.
func (db *DB) RecordMetric(m *models.SystemMetric) error {
	query := `
		INSERT INTO system_metrics (time, metric_name, value, string_value)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (time, metric_name) DO UPDATE SET
			value = EXCLUDED.value,
			string_value = EXCLUDED.string_value
	`
	ts := m.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := db.conn.Exec(query, ts, m.MetricName, m.Value, nullString(m.StringValue))
	if err != nil {
		return fmt.Errorf("failed to record metric: %w", err)
	}
	return nil
}

// GetLatestPrice returns the most recent recorded price for an asset
func (db *DB) GetLatestPrice(assetID string) (*models.PriceUpdate, error) {
	query := `
		SELECT time, asset_id, price, volume_24h, change_percent_24h
		FROM price_updates
		WHERE asset_id = $1
		ORDER BY time DESC
		LIMIT 1
	`
	var p models.PriceUpdate
	var volume, change decimal.NullDecimal

	err := db.conn.QueryRow(query, assetID).Scan(&p.Time, &p.AssetID, &p.Price, &volume, &change)
	if err != nil {
		return nil, fmt.Errorf("no price recorded for asset %s: %w", assetID, err)
	}

	if volume.Valid {
		p.Volume24h = volume.Decimal
	}
	if change.Valid {
		p.ChangePercent24h = change.Decimal
	}
	return &p, nil
}

// DeleteMarketDataOlderThan removes candles older than the cutoff
func (db *DB) DeleteMarketDataOlderThan(cutoff time.Time) (int64, error) {
	return db.deleteSeriesOlderThan("market_data", cutoff)
}

// DeletePriceUpdatesOlderThan removes price ticks older than the cutoff
func (db *DB) DeletePriceUpdatesOlderThan(cutoff time.Time) (int64, error) {
	return db.deleteSeriesOlderThan("price_updates", cutoff)
}

// DeleteSentimentOlderThan removes sentiment samples older than the cutoff
func (db *DB) DeleteSentimentOlderThan(cutoff time.Time) (int64, error) {
	return db.deleteSeriesOlderThan("sentiment_data", cutoff)
}

// DeleteSystemMetricsOlderThan removes metric samples older than the cutoff
func (db *DB) DeleteSystemMetricsOlderThan(cutoff time.Time) (int64, error) {
	return db.deleteSeriesOlderThan("system_metrics", cutoff)
}

func (db *DB) deleteSeriesOlderThan(table string, cutoff time.Time) (int64, error) {
	result, err := db.conn.Exec(fmt.Sprintf("DELETE FROM %s WHERE time < $1", table), cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old rows from %s: %w", table, err)
	}
	return result.RowsAffected()
}
