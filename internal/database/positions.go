package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tradekeeper/portfolio-analytics/internal/models"
)

// CreatePosition inserts a new position. The derived unrealized_pnl is
// computed from the supplied prices so the invariant holds from the first
// visible state of the row.
func (db *DB) CreatePosition(p *models.Position) error {
	query := `
		INSERT INTO positions (
			portfolio_id, asset_id, quantity, avg_buy_price, current_price,
			unrealized_pnl, realized_pnl, status, opened_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	now := time.Now()
	if p.Status == "" {
		p.Status = models.PositionStatusOpen
	}
	p.UnrealizedPnl = p.CurrentPrice.Sub(p.AvgBuyPrice).Mul(p.Quantity)

	err := db.conn.QueryRow(query,
		p.PortfolioID, p.AssetID, p.Quantity, p.AvgBuyPrice, p.CurrentPrice,
		p.UnrealizedPnl, p.RealizedPnl, p.Status, now, now,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("failed to create position: %w", err)
	}
	p.OpenedAt = now
	p.UpdatedAt = now
	return nil
}

// GetPositionByID retrieves a position by ID
func (db *DB) GetPositionByID(id string) (*models.Position, error) {
	query := selectPositions + ` WHERE id = $1`

	positions, err := db.scanPositions(db.conn.Query(query, id))
	if err != nil {
		return nil, err
	}
	if len(positions) == 0 {
		return nil, fmt.Errorf("position not found: %s", id)
	}
	return positions[0], nil
}

// GetPositionsByPortfolio retrieves positions for a portfolio, optionally
// filtered by status, newest first
func (db *DB) GetPositionsByPortfolio(portfolioID, status string) ([]*models.Position, error) {
	if status != "" {
		query := selectPositions + ` WHERE portfolio_id = $1 AND status = $2 ORDER BY opened_at DESC`
		return db.scanPositions(db.conn.Query(query, portfolioID, status))
	}
	query := selectPositions + ` WHERE portfolio_id = $1 ORDER BY opened_at DESC`
	return db.scanPositions(db.conn.Query(query, portfolioID))
}

// GetOpenPositionsByPortfolio retrieves all open positions for a portfolio
func (db *DB) GetOpenPositionsByPortfolio(portfolioID string) ([]*models.Position, error) {
	return db.GetPositionsByPortfolio(portfolioID, models.PositionStatusOpen)
}

// ApplyPriceTick applies a price update to every open position referencing
// the asset. The derived unrealized_pnl is recomputed in the same statement,
// so no observer sees a position with a stale P&L for its current price. The
// tick is also appended to the price_updates series.
func (db *DB) ApplyPriceTick(assetID string, price decimal.Decimal, ts time.Time) (int64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		UPDATE positions SET
			current_price = $2,
			unrealized_pnl = ($2 - avg_buy_price) * quantity,
			updated_at = $3
		WHERE asset_id = $1 AND status = 'open'
	`, assetID, price, ts)
	if err != nil {
		return 0, fmt.Errorf("failed to apply price tick: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO price_updates (time, asset_id, price)
		VALUES ($1, $2, $3)
		ON CONFLICT (time, asset_id) DO UPDATE SET price = EXCLUDED.price
	`, ts, assetID, price)
	if err != nil {
		return 0, fmt.Errorf("failed to record price update: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	updated, _ := result.RowsAffected()
	return updated, nil
}

// ApplyOrderFill moves a pending order to executed and adjusts the related
// position atomically with the status change. The position row is locked for
// the duration so concurrent fills serialize rather than losing updates.
// Terminal orders are immutable: filling a non-pending order is an error.
// Returns the id of the portfolio the fill settled into.
func (db *DB) ApplyOrderFill(orderID string, executedPrice, fee decimal.Decimal, ts time.Time) (string, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var portfolioID, assetID, side string
	var quantity decimal.Decimal
	err = tx.QueryRow(`
		UPDATE orders SET
			status = 'executed',
			executed_price = $2,
			fee_amount = $3,
			executed_at = $4
		WHERE id = $1 AND status = 'pending'
		RETURNING portfolio_id, asset_id, side, quantity
	`, orderID, executedPrice, fee, ts).Scan(&portfolioID, &assetID, &side, &quantity)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("order not fillable: %s", orderID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to execute order: %w", err)
	}

	var posID string
	var posQty, avgBuy, realized decimal.Decimal
	err = tx.QueryRow(`
		SELECT id, quantity, avg_buy_price, realized_pnl
		FROM positions
		WHERE portfolio_id = $1 AND asset_id = $2 AND status = 'open'
		FOR UPDATE
	`, portfolioID, assetID).Scan(&posID, &posQty, &avgBuy, &realized)

	switch {
	case err == sql.ErrNoRows && side == models.OrderSideBuy:
		// First buy for this asset opens the position
		_, err = tx.Exec(`
			INSERT INTO positions (
				portfolio_id, asset_id, quantity, avg_buy_price, current_price,
				unrealized_pnl, realized_pnl, status, opened_at, updated_at
			) VALUES ($1, $2, $3, $4, $4, 0, 0, 'open', $5, $5)
		`, portfolioID, assetID, quantity, executedPrice, ts)
		if err != nil {
			return "", fmt.Errorf("failed to open position: %w", err)
		}

	case err == sql.ErrNoRows:
		return "", fmt.Errorf("no open position for sell order %s", orderID)

	case err != nil:
		return "", fmt.Errorf("failed to lock position: %w", err)

	case side == models.OrderSideBuy:
		newQty := posQty.Add(quantity)
		newAvg := posQty.Mul(avgBuy).Add(quantity.Mul(executedPrice)).Div(newQty)
		_, err = tx.Exec(`
			UPDATE positions SET
				quantity = $2,
				avg_buy_price = $3,
				current_price = $4,
				unrealized_pnl = ($4 - $3) * $2,
				updated_at = $5
			WHERE id = $1
		`, posID, newQty, newAvg, executedPrice, ts)
		if err != nil {
			return "", fmt.Errorf("failed to update position: %w", err)
		}

	default: // sell
		if quantity.GreaterThan(posQty) {
			return "", fmt.Errorf("sell quantity %s exceeds position quantity %s", quantity, posQty)
		}
		newQty := posQty.Sub(quantity)
		newRealized := realized.Add(executedPrice.Sub(avgBuy).Mul(quantity))
		status := models.PositionStatusOpen
		var closedAt interface{}
		if newQty.IsZero() {
			status = models.PositionStatusClosed
			closedAt = ts
		}
		_, err = tx.Exec(`
			UPDATE positions SET
				quantity = $2,
				current_price = $3,
				unrealized_pnl = ($3 - avg_buy_price) * $2,
				realized_pnl = $4,
				status = $5,
				closed_at = $6,
				updated_at = $7
			WHERE id = $1
		`, posID, newQty, executedPrice, newRealized, status, closedAt, ts)
		if err != nil {
			return "", fmt.Errorf("failed to update position: %w", err)
		}
	}

	// Cash moves the opposite way of the asset
	delta := quantity.Mul(executedPrice)
	if side == models.OrderSideBuy {
		delta = delta.Neg()
	}
	delta = delta.Sub(fee)
	_, err = tx.Exec(`
		UPDATE portfolios SET
			current_balance = current_balance + $2,
			updated_at = $3
		WHERE id = $1
	`, portfolioID, delta, ts)
	if err != nil {
		return "", fmt.Errorf("failed to update portfolio balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}
	return portfolioID, nil
}

const selectPositions = `
	SELECT id, portfolio_id, asset_id, quantity, avg_buy_price, current_price,
	       unrealized_pnl, realized_pnl, status, opened_at, closed_at, updated_at
	FROM positions`

func (db *DB) scanPositions(rows *sql.Rows, err error) ([]*models.Position, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var positions []*models.Position
	for rows.Next() {
		var p models.Position
		var currentPrice sql.NullString
		var closedAt sql.NullTime

		err := rows.Scan(
			&p.ID, &p.PortfolioID, &p.AssetID, &p.Quantity, &p.AvgBuyPrice, &currentPrice,
			&p.UnrealizedPnl, &p.RealizedPnl, &p.Status, &p.OpenedAt, &closedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}

		if currentPrice.Valid {
			p.CurrentPrice, _ = decimal.NewFromString(currentPrice.String)
		}
		if closedAt.Valid {
			p.ClosedAt = &closedAt.Time
		}
		positions = append(positions, &p)
	}
	return positions, nil
}
