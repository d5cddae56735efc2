package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents an account that owns portfolios and receives alerts
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Portfolio represents one user's tradeable balance and holdings.
// UpdatedAt is bumped on every mutation.
type Portfolio struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Name            string          `json:"name"`
	InitialBalance  decimal.Decimal `json:"initial_balance"`
	CurrentBalance  decimal.Decimal `json:"current_balance"`
	TotalInvested   decimal.Decimal `json:"total_invested"`
	TotalProfitLoss decimal.Decimal `json:"total_profit_loss"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
