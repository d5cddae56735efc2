// Package views holds the read-model aggregations: portfolio summary, AI
// consensus and trading performance. The aggregations are pure functions
// over rows supplied by a Repository, so they stay unit-testable without a
// live store and never mutate anything.
package views

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tradekeeper/portfolio-analytics/internal/models"
)

// TradingWindow is the rolling window for the trading performance view
const TradingWindow = 30 * 24 * time.Hour

// Repository supplies the current state the aggregations read from
type Repository interface {
	GetPortfolioByID(id string) (*models.Portfolio, error)
	GetOpenPositionsByPortfolio(portfolioID string) ([]*models.Position, error)
	CountPendingOrders(portfolioID string) (int, error)
	GetOrdersSince(portfolioID string, since time.Time) ([]*models.Order, error)
	GetConsensusAnalyses() ([]*models.AIAnalysis, error)
}

// Summary is the derived state of one portfolio
type Summary struct {
	PortfolioID        string          `json:"portfolio_id"`
	TotalValue         decimal.Decimal `json:"total_value"`
	CashBalance        decimal.Decimal `json:"cash_balance"`
	InvestedValue      decimal.Decimal `json:"invested_value"`
	UnrealizedPnl      decimal.Decimal `json:"unrealized_pnl"`
	RealizedPnl        decimal.Decimal `json:"realized_pnl"`
	TotalPnl           decimal.Decimal `json:"total_pnl"`
	PositionsCount     int             `json:"positions_count"`
	PendingOrdersCount int             `json:"pending_orders_count"`
}

// TradingStats aggregates order activity over a rolling window
type TradingStats struct {
	PortfolioID        string          `json:"portfolio_id"`
	TotalOrders        int             `json:"total_orders"`
	ExecutedOrders     int             `json:"executed_orders"`
	BuyOrders          int             `json:"buy_orders"`
	ExecutedBuyOrders  int             `json:"executed_buy_orders"`
	ExecutedSellOrders int             `json:"executed_sell_orders"`
	TotalFees          decimal.Decimal `json:"total_fees"`
	AvgExecutedPrice   decimal.Decimal `json:"avg_executed_price"`
}

// PortfolioSummary computes the summary aggregate from a portfolio and its
// open positions. A portfolio with no positions is a valid state: sums come
// back zero and total value equals the cash balance.
func PortfolioSummary(p *models.Portfolio, positions []*models.Position, pendingOrders int) Summary {
	s := Summary{
		PortfolioID:        p.ID,
		CashBalance:        p.CurrentBalance,
		InvestedValue:      decimal.Zero,
		UnrealizedPnl:      decimal.Zero,
		RealizedPnl:        decimal.Zero,
		PositionsCount:     len(positions),
		PendingOrdersCount: pendingOrders,
	}
	for _, pos := range positions {
		s.InvestedValue = s.InvestedValue.Add(pos.CurrentValue())
		s.UnrealizedPnl = s.UnrealizedPnl.Add(pos.UnrealizedPnl)
		s.RealizedPnl = s.RealizedPnl.Add(pos.RealizedPnl)
	}
	s.TotalValue = p.CurrentBalance.Add(s.InvestedValue)
	s.TotalPnl = s.UnrealizedPnl.Add(s.RealizedPnl)
	return s
}

// Consensus selects, per asset, the most recently created consensus-type
// analysis that has not expired at the given time. Ties on creation time
// break to the lowest id so the selection is deterministic. Results come
// back newest first.
func Consensus(analyses []*models.AIAnalysis, now time.Time) []*models.AIAnalysis {
	latest := make(map[string]*models.AIAnalysis)
	for _, a := range analyses {
		if a.AnalysisType != models.AnalysisTypeConsensus || a.Expired(now) {
			continue
		}
		cur, ok := latest[a.AssetID]
		if !ok || a.CreatedAt.After(cur.CreatedAt) ||
			(a.CreatedAt.Equal(cur.CreatedAt) && a.ID < cur.ID) {
			latest[a.AssetID] = a
		}
	}

	result := make([]*models.AIAnalysis, 0, len(latest))
	for _, a := range latest {
		result = append(result, a)
	}
	sortAnalysesNewestFirst(result)
	return result
}

// TradingPerformance aggregates order counts, fees and average executed
// price over the trailing window. Orders created before the window boundary
// are excluded from every figure, not just the average.
func TradingPerformance(portfolioID string, orders []*models.Order, now time.Time, window time.Duration) TradingStats {
	stats := TradingStats{
		PortfolioID:      portfolioID,
		TotalFees:        decimal.Zero,
		AvgExecutedPrice: decimal.Zero,
	}
	cutoff := now.Add(-window)

	priceSum := decimal.Zero
	for _, o := range orders {
		if o.CreatedAt.Before(cutoff) {
			continue
		}
		stats.TotalOrders++
		if o.Side == models.OrderSideBuy {
			stats.BuyOrders++
		}
		if o.Status != models.OrderStatusExecuted {
			continue
		}
		stats.ExecutedOrders++
		if o.Side == models.OrderSideBuy {
			stats.ExecutedBuyOrders++
		} else {
			stats.ExecutedSellOrders++
		}
		stats.TotalFees = stats.TotalFees.Add(o.FeeAmount)
		priceSum = priceSum.Add(o.ExecutedPrice)
	}

	if stats.ExecutedOrders > 0 {
		stats.AvgExecutedPrice = priceSum.Div(decimal.NewFromInt(int64(stats.ExecutedOrders)))
	}
	return stats
}

func sortAnalysesNewestFirst(analyses []*models.AIAnalysis) {
	sort.Slice(analyses, func(i, j int) bool {
		if analyses[i].CreatedAt.Equal(analyses[j].CreatedAt) {
			return analyses[i].ID < analyses[j].ID
		}
		return analyses[i].CreatedAt.After(analyses[j].CreatedAt)
	})
}
