package views

import (
	"fmt"
	"time"

	"github.com/tradekeeper/portfolio-analytics/internal/models"
)

// Aggregator serves the read models from a Repository. Every method is a
// pure read: the aggregations run against whatever snapshot the store
// provides and never block writers.
type Aggregator struct {
	repo   Repository
	window time.Duration
}

// NewAggregator creates an Aggregator with the given trading window
func NewAggregator(repo Repository, window time.Duration) *Aggregator {
	if window <= 0 {
		window = TradingWindow
	}
	return &Aggregator{repo: repo, window: window}
}

// Summary returns the summary aggregate for a portfolio
func (a *Aggregator) Summary(portfolioID string) (Summary, error) {
	portfolio, err := a.repo.GetPortfolioByID(portfolioID)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to load portfolio: %w", err)
	}

	positions, err := a.repo.GetOpenPositionsByPortfolio(portfolioID)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to load positions: %w", err)
	}

	pending, err := a.repo.CountPendingOrders(portfolioID)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to count pending orders: %w", err)
	}

	return PortfolioSummary(portfolio, positions, pending), nil
}

// ConsensusView returns the latest unexpired consensus analysis per asset
func (a *Aggregator) ConsensusView() ([]*models.AIAnalysis, error) {
	analyses, err := a.repo.GetConsensusAnalyses()
	if err != nil {
		return nil, fmt.Errorf("failed to load consensus analyses: %w", err)
	}
	return Consensus(analyses, time.Now()), nil
}

// TradingStats returns trading performance over the aggregator's window
func (a *Aggregator) TradingStats(portfolioID string) (TradingStats, error) {
	now := time.Now()
	orders, err := a.repo.GetOrdersSince(portfolioID, now.Add(-a.window))
	if err != nil {
		return TradingStats{}, fmt.Errorf("failed to load orders: %w", err)
	}
	return TradingPerformance(portfolioID, orders, now, a.window), nil
}
