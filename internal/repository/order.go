package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	"ledger-api/internal/model"
)

type OrderRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewOrderRepository(db *sql.DB, logger *logrus.Logger) *OrderRepository {
	return &OrderRepository{db: db, logger: logger}
}

func (r *OrderRepository) Save(ctx context.Context, order *model.Order) (string, error) {
	query := `
		INSERT INTO ccca.orders (
			order_id, account_id, market_id, side, quantity, price,
			fill_quantity, fill_price, status, timestamp
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING order_id
	`

	var orderID string
	err := r.db.QueryRowContext(
		ctx,
		query,
		order.OrderID,
		order.AccountID,
		order.MarketID,
		string(order.Side),
		order.Quantity,
		order.Price,
		order.FillQuantity,
		order.FillPrice,
		order.Status,
		order.Timestamp,
	).Scan(&orderID)
	if err != nil {
		return "", fmt.Errorf("failed to save order: %w", err)
	}

	return orderID, nil
}

// GetOrders lists the account's orders oldest first; an empty status matches all.
func (r *OrderRepository) GetOrders(ctx context.Context, accountID, status string) ([]model.Order, error) {
	query := `
		SELECT order_id, account_id, market_id, side, quantity, price,
			fill_quantity, fill_price, status, timestamp
		FROM ccca.orders
		WHERE account_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY timestamp, order_id
	`

	rows, err := r.db.QueryContext(ctx, query, accountID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]model.Order, 0)
	for rows.Next() {
		var (
			order model.Order
			side  string
		)
		err := rows.Scan(
			&order.OrderID,
			&order.AccountID,
			&order.MarketID,
			&side,
			&order.Quantity,
			&order.Price,
			&order.FillQuantity,
			&order.FillPrice,
			&order.Status,
			&order.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		order.Side = model.OrderSide(side)
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return orders, nil
}

func (r *OrderRepository) Update(ctx context.Context, orderID string, update model.OrderUpdate) error {
	query := `
		UPDATE ccca.orders
		SET fill_quantity = $1, fill_price = $2, status = $3
		WHERE order_id = $4
	`

	result, err := r.db.ExecContext(ctx, query, update.FillQuantity, update.FillPrice, update.Status, orderID)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.ErrOrderNotFound
	}

	r.logger.WithFields(logrus.Fields{
		"order_id": orderID,
		"status":   update.Status,
	}).Debug("Order updated")
	return nil
}
