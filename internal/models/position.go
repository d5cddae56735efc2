package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position status constants
const (
	PositionStatusOpen   = "open"
	PositionStatusClosed = "closed"
)

// Position represents a holding of one asset within a portfolio.
// UnrealizedPnl is derived: (current_price - avg_buy_price) * quantity.
type Position struct {
	ID            string          `json:"id"`
	PortfolioID   string          `json:"portfolio_id"`
	AssetID       string          `json:"asset_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	AvgBuyPrice   decimal.Decimal `json:"avg_buy_price"`
	CurrentPrice  decimal.Decimal `json:"current_price,omitempty"`
	UnrealizedPnl decimal.Decimal `json:"unrealized_pnl"`
	RealizedPnl   decimal.Decimal `json:"realized_pnl"`
	Status        string          `json:"status"`
	OpenedAt      time.Time       `json:"opened_at"`
	ClosedAt      *time.Time      `json:"closed_at,omitempty"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CurrentValue returns quantity * current_price
func (p *Position) CurrentValue() decimal.Decimal {
	return p.Quantity.Mul(p.CurrentPrice)
}

// PnlPercent returns the unrealized gain relative to the entry price, as a
// percentage. Zero when the entry price is uninitialized.
func (p *Position) PnlPercent() decimal.Decimal {
	if p.AvgBuyPrice.IsZero() {
		return decimal.Zero
	}
	return p.CurrentPrice.Sub(p.AvgBuyPrice).Div(p.AvgBuyPrice).Mul(decimal.NewFromInt(100))
}
