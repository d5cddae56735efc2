package analytics

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tradekeeper/portfolio-analytics/internal/models"
)

// Recompute refreshes the derived fields of a position from its raw fields
// and bumps updated_at. It is a pure function of the row: recomputing with
// unchanged inputs yields identical output. Uninitialized prices contribute
// zero rather than failing.
func Recompute(p models.Position, now time.Time) models.Position {
	p.UnrealizedPnl = p.CurrentPrice.Sub(p.AvgBuyPrice).Mul(p.Quantity)
	p.UpdatedAt = now
	return p
}

// ApplyPriceUpdate sets a new current price on a position and recomputes its
// derived fields in the same step, so callers never hold a position whose
// unrealized P&L is stale for its current price.
func ApplyPriceUpdate(p models.Position, newPrice decimal.Decimal, now time.Time) models.Position {
	p.CurrentPrice = newPrice
	return Recompute(p, now)
}
