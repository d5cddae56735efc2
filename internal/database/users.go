package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/tradekeeper/portfolio-analytics/internal/models"
)

// CreateUser inserts a new user
func (db *DB) CreateUser(u *models.User) error {
	query := `
		INSERT INTO users (username, email, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	now := time.Now()
	err := db.conn.QueryRow(query, u.Username, u.Email, true, now, now).Scan(&u.ID)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	u.IsActive = true
	u.CreatedAt = now
	u.UpdatedAt = now
	return nil
}

// GetUserByID retrieves a user by ID
func (db *DB) GetUserByID(id string) (*models.User, error) {
	query := `
		SELECT id, username, email, is_active, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	var u models.User
	err := db.conn.QueryRow(query, id).Scan(
		&u.ID, &u.Username, &u.Email, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}
