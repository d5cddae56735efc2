package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tradekeeper/portfolio-analytics/internal/models"
)

// CreateRiskAlert inserts a new risk alert
func (db *DB) CreateRiskAlert(a *models.RiskAlert) error {
	query := `
		INSERT INTO risk_alerts (
			user_id, portfolio_id, alert_type, severity, message,
			current_value, threshold_value, is_active, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	now := time.Now()
	err := db.conn.QueryRow(query,
		a.UserID, nullString(a.PortfolioID), a.AlertType, a.Severity, a.Message,
		decimalOrNil(a.CurrentValue), decimalOrNil(a.ThresholdValue), true, now,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("failed to create risk alert: %w", err)
	}
	a.IsActive = true
	a.CreatedAt = now
	return nil
}

// GetRiskAlertByID retrieves a risk alert by ID
func (db *DB) GetRiskAlertByID(id string) (*models.RiskAlert, error) {
	query := selectAlerts + ` WHERE id = $1`

	alerts, err := db.scanAlerts(db.conn.Query(query, id))
	if err != nil {
		return nil, err
	}
	if len(alerts) == 0 {
		return nil, fmt.Errorf("risk alert not found: %s", id)
	}
	return alerts[0], nil
}

// GetActiveAlerts retrieves unresolved active alerts for a user, ordered by
// severity rank (critical first), then newest first within a severity.
func (db *DB) GetActiveAlerts(userID string) ([]*models.RiskAlert, error) {
	query := selectAlerts + `
		WHERE user_id = $1 AND is_active = true AND resolved_at IS NULL
		ORDER BY ` + severityOrder
	return db.scanAlerts(db.conn.Query(query, userID))
}

// GetActiveAlertsByPortfolio retrieves unresolved active alerts scoped to a
// portfolio, same ordering as GetActiveAlerts
func (db *DB) GetActiveAlertsByPortfolio(portfolioID string) ([]*models.RiskAlert, error) {
	query := selectAlerts + `
		WHERE portfolio_id = $1 AND is_active = true AND resolved_at IS NULL
		ORDER BY ` + severityOrder
	return db.scanAlerts(db.conn.Query(query, portfolioID))
}

// AcknowledgeAlert stamps acknowledged_at on an alert
func (db *DB) AcknowledgeAlert(id string) error {
	result, err := db.conn.Exec(
		`UPDATE risk_alerts SET acknowledged_at = $2 WHERE id = $1`,
		id, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to acknowledge alert: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("risk alert not found: %s", id)
	}
	return nil
}

// ResolveAlert sets resolved_at and clears the active flag, removing the
// alert from active views
func (db *DB) ResolveAlert(id string) error {
	result, err := db.conn.Exec(
		`UPDATE risk_alerts SET is_active = false, resolved_at = $2 WHERE id = $1`,
		id, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to resolve alert: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("risk alert not found: %s", id)
	}
	return nil
}

const severityOrder = `
			CASE severity
				WHEN 'critical' THEN 1
				WHEN 'high' THEN 2
				WHEN 'medium' THEN 3
				WHEN 'low' THEN 4
				ELSE 5
			END,
			created_at DESC`

const selectAlerts = `
	SELECT id, user_id, portfolio_id, alert_type, severity, message,
	       current_value, threshold_value, is_active, acknowledged_at,
	       resolved_at, created_at
	FROM risk_alerts`

func (db *DB) scanAlerts(rows *sql.Rows, err error) ([]*models.RiskAlert, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to query risk alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*models.RiskAlert
	for rows.Next() {
		var a models.RiskAlert
		var portfolioID, currentValue, thresholdValue sql.NullString
		var acknowledgedAt, resolvedAt sql.NullTime

		err := rows.Scan(
			&a.ID, &a.UserID, &portfolioID, &a.AlertType, &a.Severity, &a.Message,
			&currentValue, &thresholdValue, &a.IsActive, &acknowledgedAt,
			&resolvedAt, &a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan risk alert: %w", err)
		}

		if portfolioID.Valid {
			a.PortfolioID = portfolioID.String
		}
		if currentValue.Valid {
			a.CurrentValue, _ = decimal.NewFromString(currentValue.String)
		}
		if thresholdValue.Valid {
			a.ThresholdValue, _ = decimal.NewFromString(thresholdValue.String)
		}
		if acknowledgedAt.Valid {
			a.AcknowledgedAt = &acknowledgedAt.Time
		}
		if resolvedAt.Valid {
			a.ResolvedAt = &resolvedAt.Time
		}
		alerts = append(alerts, &a)
	}
	return alerts, nil
}
