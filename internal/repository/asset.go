package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"ledger-api/internal/model"
)

const positionKeyConstraint = "account_asset_pkey"

type AssetRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewAssetRepository(db *sql.DB, logger *logrus.Logger) *AssetRepository {
	return &AssetRepository{db: db, logger: logger}
}

func (r *AssetRepository) Save(ctx context.Context, position *model.Position) error {
	query := `
		INSERT INTO ccca.account_asset (account_id, asset_id, quantity)
		VALUES ($1, $2, $3)
	`

	_, err := r.db.ExecContext(ctx, query, position.AccountID, position.AssetID, position.Quantity)
	if err != nil {
		if isUniqueViolation(err, positionKeyConstraint) {
			r.logger.WithFields(positionFields(position.AccountID, position.AssetID)).
				Debug("Unique violation mapped to existing position")
			return model.ErrPositionExists
		}
		return fmt.Errorf("failed to save position: %w", err)
	}

	return nil
}

func (r *AssetRepository) GetByID(ctx context.Context, accountID, assetID string) (*model.Position, error) {
	query := `
		SELECT account_id, asset_id, quantity
		FROM ccca.account_asset
		WHERE account_id = $1 AND asset_id = $2
	`

	var position model.Position
	err := r.db.QueryRowContext(ctx, query, accountID, assetID).Scan(
		&position.AccountID,
		&position.AssetID,
		&position.Quantity,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get position: %w", err)
	}

	return &position, nil
}

func (r *AssetRepository) GetByAccountID(ctx context.Context, accountID string) ([]model.Position, error) {
	query := `
		SELECT account_id, asset_id, quantity
		FROM ccca.account_asset
		WHERE account_id = $1
		ORDER BY asset_id
	`

	return r.queryPositions(ctx, query, accountID)
}

// UpdateQuantity applies delta in a single conditional statement, so the row
// never goes below zero even without the service-level lock.
func (r *AssetRepository) UpdateQuantity(ctx context.Context, accountID, assetID string, delta decimal.Decimal) error {
	query := `
		UPDATE ccca.account_asset
		SET quantity = quantity + $1
		WHERE account_id = $2 AND asset_id = $3 AND quantity + $1 >= 0
	`

	result, err := r.db.ExecContext(ctx, query, delta, accountID, assetID)
	if err != nil {
		if isCheckViolation(err) {
			r.logger.WithFields(positionFields(accountID, assetID)).Debug("Check violation mapped to insufficient quantity")
			return model.ErrInsufficientQuantity
		}
		return fmt.Errorf("failed to update quantity: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	// nothing matched: either the position is missing or the guard refused the delta
	var exists bool
	err = r.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM ccca.account_asset WHERE account_id = $1 AND asset_id = $2
		)
	`, accountID, assetID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check position existence: %w", err)
	}
	r.logger.WithFields(positionFields(accountID, assetID)).
		WithField("exists", exists).
		Debug("Quantity guard refused update")
	if exists {
		return model.ErrInsufficientQuantity
	}
	return model.ErrAccountOrAssetNotFound
}

func (r *AssetRepository) FindNegativePositions(ctx context.Context) ([]model.Position, error) {
	query := `
		SELECT account_id, asset_id, quantity
		FROM ccca.account_asset
		WHERE quantity < 0
		ORDER BY account_id, asset_id
	`

	return r.queryPositions(ctx, query)
}

func (r *AssetRepository) queryPositions(ctx context.Context, query string, args ...any) ([]model.Position, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	positions := make([]model.Position, 0)
	for rows.Next() {
		var position model.Position
		if err := rows.Scan(&position.AccountID, &position.AssetID, &position.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, position)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return positions, nil
}

func positionFields(accountID, assetID string) logrus.Fields {
	return logrus.Fields{
		"account_id": accountID,
		"asset_id":   assetID,
	}
}
