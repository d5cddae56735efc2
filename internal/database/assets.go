package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/tradekeeper/portfolio-analytics/internal/models"
)

// CreateAsset inserts a new asset
func (db *DB) CreateAsset(a *models.Asset) error {
	query := `
		INSERT INTO assets (symbol, name, asset_type, exchange, is_active, sector, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	now := time.Now()
	err := db.conn.QueryRow(query,
		a.Symbol, a.Name, a.AssetType, nullString(a.Exchange), true, nullString(a.Sector), now,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("failed to create asset: %w", err)
	}
	a.IsActive = true
	a.CreatedAt = now
	return nil
}

// GetAssetByID retrieves an asset by ID
func (db *DB) GetAssetByID(id string) (*models.Asset, error) {
	query := `
		SELECT id, symbol, name, asset_type, exchange, is_active, sector, created_at
		FROM assets
		WHERE id = $1
	`
	return db.scanAsset(db.conn.QueryRow(query, id))
}

// GetAssetBySymbol retrieves an asset by its symbol
func (db *DB) GetAssetBySymbol(symbol string) (*models.Asset, error) {
	query := `
		SELECT id, symbol, name, asset_type, exchange, is_active, sector, created_at
		FROM assets
		WHERE symbol = $1
	`
	return db.scanAsset(db.conn.QueryRow(query, symbol))
}

func (db *DB) scanAsset(row *sql.Row) (*models.Asset, error) {
	var a models.Asset
	var exchange, sector sql.NullString

	err := row.Scan(&a.ID, &a.Symbol, &a.Name, &a.AssetType, &exchange, &a.IsActive, &sector, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("asset not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}

	if exchange.Valid {
		a.Exchange = exchange.String
	}
	if sector.Valid {
		a.Sector = sector.String
	}
	return &a, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
