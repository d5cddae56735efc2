package database

import (
	"fmt"
	"time"

	"github.com/tradekeeper/portfolio-analytics/internal/models"
)

// CreateSnapshot appends a portfolio value snapshot to the history series.
// The series is append-only; rows are only ever removed by retention policy,
// and portfolio history carries no retention policy.
func (db *DB) CreateSnapshot(s *models.PortfolioSnapshot) error {
	query := `
		INSERT INTO portfolio_history (
			time, portfolio_id, total_value, cash_balance,
			invested_value, unrealized_pnl, realized_pnl
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := db.conn.Exec(query,
		s.Time, s.PortfolioID, s.TotalValue, s.CashBalance,
		s.InvestedValue, s.UnrealizedPnl, s.RealizedPnl,
	)
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	return nil
}

// GetSnapshotsSince retrieves snapshots for a portfolio taken at or after the
// given time, oldest first
func (db *DB) GetSnapshotsSince(portfolioID string, since time.Time) ([]models.PortfolioSnapshot, error) {
	query := `
		SELECT time, portfolio_id, total_value, cash_balance,
		       invested_value, unrealized_pnl, realized_pnl
		FROM portfolio_history
		WHERE portfolio_id = $1 AND time >= $2
		ORDER BY time ASC
	`
	rows, err := db.conn.Query(query, portfolioID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []models.PortfolioSnapshot
	for rows.Next() {
		var s models.PortfolioSnapshot
		err := rows.Scan(
			&s.Time, &s.PortfolioID, &s.TotalValue, &s.CashBalance,
			&s.InvestedValue, &s.UnrealizedPnl, &s.RealizedPnl,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, nil
}
