package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event type constants for the pub/sub channels
const (
	EventTypeAlertRaised   = "ALERT_RAISED"
	EventTypeAlertResolved = "ALERT_RESOLVED"
	EventTypePriceTick     = "PRICE_TICK"
	EventTypeOrderFill     = "ORDER_FILL"
)

// AlertEvent is the structured payload published when a critical or high
// severity alert is raised. Delivery is best-effort.
type AlertEvent struct {
	EventType   string    `json:"event_type"`
	AlertID     string    `json:"alert_id"`
	UserID      string    `json:"user_id"`
	PortfolioID string    `json:"portfolio_id,omitempty"`
	AlertType   string    `json:"alert_type"`
	Severity    string    `json:"severity"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
}

// PriceTickEvent is the inbound payload from the market-data collaborator
type PriceTickEvent struct {
	EventType string          `json:"event_type"`
	AssetID   string          `json:"asset_id"`
	Price     decimal.Decimal `json:"price"`
	Timestamp time.Time       `json:"timestamp"`
}

// OrderFillEvent is the inbound payload from the order-execution collaborator
type OrderFillEvent struct {
	EventType     string          `json:"event_type"`
	OrderID       string          `json:"order_id"`
	ExecutedPrice decimal.Decimal `json:"executed_price"`
	Fee           decimal.Decimal `json:"fee"`
	Timestamp     time.Time       `json:"timestamp"`
}
