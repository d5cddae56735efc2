package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Alert type constants
const (
	AlertTypeDrawdown      = "drawdown"
	AlertTypeConcentration = "concentration"
	AlertTypeVolatility    = "volatility"
	AlertTypeStopLoss      = "stop_loss"
	AlertTypeMarginCall    = "margin_call"
)

// Severity constants
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

// SeverityRank maps a severity to its display/notification rank.
// Lower rank sorts first; unrecognized severities sort last.
func SeverityRank(severity string) int {
	switch severity {
	case SeverityCritical:
		return 1
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 3
	case SeverityLow:
		return 4
	default:
		return 5
	}
}

// NotifiableSeverity reports whether alerts of this severity fan out to the
// notification channel. Only critical and high qualify.
func NotifiableSeverity(severity string) bool {
	return severity == SeverityCritical || severity == SeverityHigh
}

// RiskAlert represents a raised risk condition. Once ResolvedAt is set the
// alert is excluded from active views.
type RiskAlert struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	PortfolioID    string          `json:"portfolio_id,omitempty"`
	AlertType      string          `json:"alert_type"`
	Severity       string          `json:"severity"`
	Message        string          `json:"message"`
	CurrentValue   decimal.Decimal `json:"current_value,omitempty"`
	ThresholdValue decimal.Decimal `json:"threshold_value,omitempty"`
	IsActive       bool            `json:"is_active"`
	AcknowledgedAt *time.Time      `json:"acknowledged_at,omitempty"`
	ResolvedAt     *time.Time      `json:"resolved_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}
