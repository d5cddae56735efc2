package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tradekeeper/portfolio-analytics/internal/models"
)

// DefaultLookbackDays is the default performance window
const DefaultLookbackDays = 30

const daysPerYear = 365

// PerformanceMetrics holds return metrics computed over a lookback window
type PerformanceMetrics struct {
	TotalReturn      decimal.Decimal `json:"total_return"`
	AnnualizedReturn decimal.Decimal `json:"annualized_return"`
	SharpeRatio      decimal.Decimal `json:"sharpe_ratio"`
	MaxDrawdown      decimal.Decimal `json:"max_drawdown"`
	Volatility       decimal.Decimal `json:"volatility"`
}

// Performance computes return metrics for a portfolio from its snapshot
// series. The start value is the earliest snapshot at or after now-window,
// the end value the latest snapshot. Absent or degenerate history is not an
// error: all metrics come back zero. The calculation is deterministic and
// mutates nothing.
//
// Volatility is the sample standard deviation of snapshot-to-snapshot
// returns annualized assuming daily snapshots; Sharpe is the annualized
// excess return over riskFree divided by that volatility; max drawdown is
// the largest peak-to-trough decline over the series.
func Performance(history []models.PortfolioSnapshot, now time.Time, window time.Duration, riskFree decimal.Decimal) PerformanceMetrics {
	windowStart := now.Add(-window)

	series := make([]models.PortfolioSnapshot, 0, len(history))
	for _, s := range history {
		if !s.Time.Before(windowStart) {
			series = append(series, s)
		}
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Time.Before(series[j].Time) })

	var m PerformanceMetrics
	if len(series) == 0 {
		return m
	}

	startValue := series[0].TotalValue
	endValue := series[len(series)-1].TotalValue
	if startValue.IsZero() {
		return m
	}

	m.TotalReturn = endValue.Sub(startValue).Div(startValue)

	daysElapsed := now.Sub(windowStart).Hours() / 24
	if daysElapsed <= 0 {
		m.AnnualizedReturn = m.TotalReturn
	} else {
		growth, _ := endValue.Div(startValue).Float64()
		if growth > 0 {
			annualized := math.Pow(growth, daysPerYear/daysElapsed) - 1
			m.AnnualizedReturn = decimal.NewFromFloat(annualized)
		}
	}

	m.Volatility = volatility(series)
	m.MaxDrawdown = maxDrawdown(series)
	if m.Volatility.IsPositive() {
		m.SharpeRatio = m.AnnualizedReturn.Sub(riskFree).Div(m.Volatility)
	}
	return m
}

// volatility returns the annualized sample standard deviation of
// snapshot-to-snapshot returns. At least three snapshots are needed for a
// sample estimate; fewer yield zero.
func volatility(series []models.PortfolioSnapshot) decimal.Decimal {
	returns := periodReturns(series)
	if len(returns) < 2 {
		return decimal.Zero
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)

	return decimal.NewFromFloat(math.Sqrt(variance) * math.Sqrt(daysPerYear))
}

// maxDrawdown returns the largest fractional peak-to-trough decline
func maxDrawdown(series []models.PortfolioSnapshot) decimal.Decimal {
	peak := decimal.Zero
	worst := decimal.Zero
	for _, s := range series {
		if s.TotalValue.GreaterThan(peak) {
			peak = s.TotalValue
		}
		if peak.IsPositive() {
			dd := peak.Sub(s.TotalValue).Div(peak)
			if dd.GreaterThan(worst) {
				worst = dd
			}
		}
	}
	return worst
}

func periodReturns(series []models.PortfolioSnapshot) []float64 {
	var returns []float64
	for i := 1; i < len(series); i++ {
		prev, _ := series[i-1].TotalValue.Float64()
		cur, _ := series[i].TotalValue.Float64()
		if prev != 0 {
			returns = append(returns, cur/prev-1)
		}
	}
	return returns
}
