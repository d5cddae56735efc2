package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/tradekeeper/portfolio-analytics/internal/models"
)

// CreatePortfolio inserts a new portfolio
func (db *DB) CreatePortfolio(p *models.Portfolio) error {
	query := `
		INSERT INTO portfolios (
			user_id, name, initial_balance, current_balance,
			total_invested, total_profit_loss, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	now := time.Now()
	err := db.conn.QueryRow(query,
		p.UserID, p.Name, p.InitialBalance, p.CurrentBalance,
		p.TotalInvested, p.TotalProfitLoss, now, now,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("failed to create portfolio: %w", err)
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

// GetPortfolioByID retrieves a portfolio by ID
func (db *DB) GetPortfolioByID(id string) (*models.Portfolio, error) {
	query := `
		SELECT id, user_id, name, initial_balance, current_balance,
		       total_invested, total_profit_loss, created_at, updated_at
		FROM portfolios
		WHERE id = $1
	`
	var p models.Portfolio
	err := db.conn.QueryRow(query, id).Scan(
		&p.ID, &p.UserID, &p.Name, &p.InitialBalance, &p.CurrentBalance,
		&p.TotalInvested, &p.TotalProfitLoss, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("portfolio not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}
	return &p, nil
}

// GetPortfoliosByUser retrieves all portfolios for a user, newest first
func (db *DB) GetPortfoliosByUser(userID string) ([]*models.Portfolio, error) {
	query := `
		SELECT id, user_id, name, initial_balance, current_balance,
		       total_invested, total_profit_loss, created_at, updated_at
		FROM portfolios
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := db.conn.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolios: %w", err)
	}
	defer rows.Close()

	var portfolios []*models.Portfolio
	for rows.Next() {
		var p models.Portfolio
		err := rows.Scan(
			&p.ID, &p.UserID, &p.Name, &p.InitialBalance, &p.CurrentBalance,
			&p.TotalInvested, &p.TotalProfitLoss, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan portfolio: %w", err)
		}
		portfolios = append(portfolios, &p)
	}
	return portfolios, nil
}
