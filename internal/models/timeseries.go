package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketData represents one OHLCV candle for an asset
type MarketData struct {
	Time       time.Time       `json:"time"`
	AssetID    string          `json:"asset_id"`
	Timeframe  string          `json:"timeframe"`
	OpenPrice  decimal.Decimal `json:"open_price"`
	HighPrice  decimal.Decimal `json:"high_price"`
	LowPrice   decimal.Decimal `json:"low_price"`
	ClosePrice decimal.Decimal `json:"close_price"`
	Volume     decimal.Decimal `json:"volume"`
}

// PriceUpdate represents a single price tick for an asset
type PriceUpdate struct {
	Time             time.Time       `json:"time"`
	AssetID          string          `json:"asset_id"`
	Price            decimal.Decimal `json:"price"`
	Volume24h        decimal.Decimal `json:"volume_24h,omitempty"`
	ChangePercent24h decimal.Decimal `json:"change_percent_24h,omitempty"`
}

// SentimentData represents aggregated sentiment scores for an asset
type SentimentData struct {
	Time             time.Time       `json:"time"`
	AssetID          string          `json:"asset_id"`
	TwitterSentiment decimal.Decimal `json:"twitter_sentiment,omitempty"`
	RedditSentiment  decimal.Decimal `json:"reddit_sentiment,omitempty"`
	NewsSentiment    decimal.Decimal `json:"news_sentiment,omitempty"`
	OverallSentiment decimal.Decimal `json:"overall_sentiment,omitempty"`
}

// SystemMetric represents one operational metric sample
type SystemMetric struct {
	Time        time.Time       `json:"time"`
	MetricName  string          `json:"metric_name"`
	Value       decimal.Decimal `json:"value,omitempty"`
	StringValue string          `json:"string_value,omitempty"`
}

// PortfolioSnapshot represents a periodic snapshot of portfolio total value.
// The snapshot series is append-only and feeds the performance calculator.
type PortfolioSnapshot struct {
	Time          time.Time       `json:"time"`
	PortfolioID   string          `json:"portfolio_id"`
	TotalValue    decimal.Decimal `json:"total_value"`
	CashBalance   decimal.Decimal `json:"cash_balance"`
	InvestedValue decimal.Decimal `json:"invested_value"`
	UnrealizedPnl decimal.Decimal `json:"unrealized_pnl"`
	RealizedPnl   decimal.Decimal `json:"realized_pnl"`
}
