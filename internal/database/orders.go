package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tradekeeper/portfolio-analytics/internal/models"
)

// CreateOrder inserts a new pending order
func (db *DB) CreateOrder(o *models.Order) error {
	query := `
		INSERT INTO orders (
			portfolio_id, position_id, asset_id, side, quantity, price,
			status, fee_amount, created_at, external_order_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	now := time.Now()
	if o.Status == "" {
		o.Status = models.OrderStatusPending
	}
	err := db.conn.QueryRow(query,
		o.PortfolioID, nullString(o.PositionID), o.AssetID, o.Side, o.Quantity,
		decimalOrNil(o.Price), o.Status, o.FeeAmount, now, nullString(o.ExternalID),
	).Scan(&o.ID)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	o.CreatedAt = now
	return nil
}

// GetOrderByID retrieves an order by ID
func (db *DB) GetOrderByID(id string) (*models.Order, error) {
	query := selectOrders + ` WHERE id = $1`

	orders, err := db.scanOrders(db.conn.Query(query, id))
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, fmt.Errorf("order not found: %s", id)
	}
	return orders[0], nil
}

// GetOrdersSince retrieves orders for a portfolio created at or after the
// given time, newest first
func (db *DB) GetOrdersSince(portfolioID string, since time.Time) ([]*models.Order, error) {
	query := selectOrders + ` WHERE portfolio_id = $1 AND created_at >= $2 ORDER BY created_at DESC`
	return db.scanOrders(db.conn.Query(query, portfolioID, since))
}

// CountPendingOrders returns the number of pending orders in a portfolio
func (db *DB) CountPendingOrders(portfolioID string) (int, error) {
	var count int
	err := db.conn.QueryRow(
		`SELECT count(*) FROM orders WHERE portfolio_id = $1 AND status = 'pending'`,
		portfolioID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending orders: %w", err)
	}
	return count, nil
}

// CancelOrder moves a pending order to cancelled. Terminal orders are
// immutable, so cancelling a non-pending order is an error.
func (db *DB) CancelOrder(id string) error {
	return db.terminateOrder(id, models.OrderStatusCancelled)
}

// FailOrder moves a pending order to failed
func (db *DB) FailOrder(id string) error {
	return db.terminateOrder(id, models.OrderStatusFailed)
}

func (db *DB) terminateOrder(id, status string) error {
	query := `
		UPDATE orders SET status = $2, cancelled_at = $3
		WHERE id = $1 AND status = 'pending'
	`
	// cancelled_at is the cancellation stamp only; failed orders leave it null
	var cancelledAt interface{}
	if status == models.OrderStatusCancelled {
		cancelledAt = time.Now()
	}
	result, err := db.conn.Exec(query, id, status, cancelledAt)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("order not pending: %s", id)
	}
	return nil
}

const selectOrders = `
	SELECT id, portfolio_id, position_id, asset_id, side, quantity, price,
	       status, executed_price, fee_amount, created_at, executed_at,
	       cancelled_at, external_order_id
	FROM orders`

func (db *DB) scanOrders(rows *sql.Rows, err error) ([]*models.Order, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		var o models.Order
		var positionID, price, executedPrice, externalID sql.NullString
		var executedAt, cancelledAt sql.NullTime

		err := rows.Scan(
			&o.ID, &o.PortfolioID, &positionID, &o.AssetID, &o.Side, &o.Quantity, &price,
			&o.Status, &executedPrice, &o.FeeAmount, &o.CreatedAt, &executedAt,
			&cancelledAt, &externalID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}

		if positionID.Valid {
			o.PositionID = positionID.String
		}
		if price.Valid {
			o.Price, _ = decimal.NewFromString(price.String)
		}
		if executedPrice.Valid {
			o.ExecutedPrice, _ = decimal.NewFromString(executedPrice.String)
		}
		if externalID.Valid {
			o.ExternalID = externalID.String
		}
		if executedAt.Valid {
			o.ExecutedAt = &executedAt.Time
		}
		if cancelledAt.Valid {
			o.CancelledAt = &cancelledAt.Time
		}
		orders = append(orders, &o)
	}
	return orders, nil
}

func decimalOrNil(d decimal.Decimal) interface{} {
	if d.IsZero() {
		return nil
	}
	return d
}
