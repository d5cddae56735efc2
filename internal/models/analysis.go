package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Analysis type constants
const (
	AnalysisTypeFundamental = "fundamental"
	AnalysisTypeTechnical   = "technical"
	AnalysisTypeSentiment   = "sentiment"
	AnalysisTypeConsensus   = "consensus"
)

// Recommendation constants
const (
	RecommendationBuy  = "BUY"
	RecommendationSell = "SELL"
	RecommendationHold = "HOLD"
)

// AIAnalysis represents one AI recommendation for one asset. Rows with a
// past ExpiresAt are excluded from latest views; consensus-type rows are the
// only ones surfaced by the consensus read-model.
type AIAnalysis struct {
	ID              string          `json:"id"`
	AssetID         string          `json:"asset_id"`
	AnalysisType    string          `json:"analysis_type"`
	Model           string          `json:"ai_model"`
	Recommendation  string          `json:"recommendation"`
	ConfidenceScore decimal.Decimal `json:"confidence_score"`
	TargetPrice     decimal.Decimal `json:"target_price,omitempty"`
	Reasoning       string          `json:"reasoning,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	ExpiresAt       *time.Time      `json:"expires_at,omitempty"`
}

// Expired reports whether the analysis has passed its expiry at the given time
func (a *AIAnalysis) Expired(now time.Time) bool {
	return a.ExpiresAt != nil && !a.ExpiresAt.After(now)
}
