package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tradekeeper/portfolio-analytics/internal/models"
)

// CreateAnalysis inserts a new AI analysis
func (db *DB) CreateAnalysis(a *models.AIAnalysis) error {
	query := `
		INSERT INTO ai_analyses (
			asset_id, analysis_type, ai_model, recommendation, confidence_score,
			target_price, reasoning, created_at, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	now := time.Now()
	err := db.conn.QueryRow(query,
		a.AssetID, a.AnalysisType, a.Model, a.Recommendation, a.ConfidenceScore,
		decimalOrNil(a.TargetPrice), nullString(a.Reasoning), now, a.ExpiresAt,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("failed to create analysis: %w", err)
	}
	a.CreatedAt = now
	return nil
}

// GetConsensusAnalyses returns, for each asset, the most recently created
// consensus analysis that has not expired. Ties on creation time break to the
// lowest id so the result is deterministic.
func (db *DB) GetConsensusAnalyses() ([]*models.AIAnalysis, error) {
	// DISTINCT ON keeps the newest row per asset, lowest id on ties
	query := selectAnalyses + `
		WHERE id IN (
			SELECT DISTINCT ON (asset_id) id
			FROM ai_analyses
			WHERE analysis_type = 'consensus'
			  AND (expires_at IS NULL OR expires_at > now())
			ORDER BY asset_id, created_at DESC, id ASC
		)
		ORDER BY created_at DESC`
	return db.scanAnalyses(db.conn.Query(query))
}

// GetAnalysesByAsset retrieves recent analyses for an asset, newest first
func (db *DB) GetAnalysesByAsset(assetID string, limit int) ([]*models.AIAnalysis, error) {
	query := selectAnalyses + `
		WHERE asset_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
	return db.scanAnalyses(db.conn.Query(query, assetID, limit))
}

const selectAnalyses = `
	SELECT id, asset_id, analysis_type, ai_model, recommendation,
	       confidence_score, target_price, reasoning, created_at, expires_at
	FROM ai_analyses`

func (db *DB) scanAnalyses(rows *sql.Rows, err error) ([]*models.AIAnalysis, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	var analyses []*models.AIAnalysis
	for rows.Next() {
		var a models.AIAnalysis
		var targetPrice, reasoning sql.NullString
		var expiresAt sql.NullTime

		err := rows.Scan(
			&a.ID, &a.AssetID, &a.AnalysisType, &a.Model, &a.Recommendation,
			&a.ConfidenceScore, &targetPrice, &reasoning, &a.CreatedAt, &expiresAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}

		if targetPrice.Valid {
			a.TargetPrice, _ = decimal.NewFromString(targetPrice.String)
		}
		if reasoning.Valid {
			a.Reasoning = reasoning.String
		}
		if expiresAt.Valid {
			a.ExpiresAt = &expiresAt.Time
		}
		analyses = append(analyses, &a)
	}
	return analyses, nil
}
