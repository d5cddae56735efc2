package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order side constants
const (
	OrderSideBuy  = "buy"
	OrderSideSell = "sell"
)

// Order status constants. Transitions are monotonic:
// pending -> {executed, cancelled, failed}; terminal states are immutable.
const (
	OrderStatusPending   = "pending"
	OrderStatusExecuted  = "executed"
	OrderStatusCancelled = "cancelled"
	OrderStatusFailed    = "failed"
)

// Order represents a buy/sell instruction and its execution outcome
type Order struct {
	ID            string          `json:"id"`
	PortfolioID   string          `json:"portfolio_id"`
	PositionID    string          `json:"position_id,omitempty"`
	AssetID       string          `json:"asset_id"`
	Side          string          `json:"side"`
	Quantity      decimal.Decimal `json:"quantity"`
	Price         decimal.Decimal `json:"price,omitempty"`
	Status        string          `json:"status"`
	ExecutedPrice decimal.Decimal `json:"executed_price,omitempty"`
	FeeAmount     decimal.Decimal `json:"fee_amount"`
	CreatedAt     time.Time       `json:"created_at"`
	ExecutedAt    *time.Time      `json:"executed_at,omitempty"`
	CancelledAt   *time.Time      `json:"cancelled_at,omitempty"`
	ExternalID    string          `json:"external_order_id,omitempty"`
}
