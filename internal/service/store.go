package service

import (
	"context"

	"github.com/shopspring/decimal"

	"ledger-api/internal/model"
)

// AccountStore persists accounts. Lookups return (nil, nil) when nothing matches.
type AccountStore interface {
	Save(ctx context.Context, account *model.Account) error
	GetByID(ctx context.Context, accountID string) (*model.Account, error)
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
}

// AssetStore persists asset positions keyed by (accountID, assetID).
type AssetStore interface {
	// Save inserts a new position; model.ErrPositionExists if the key is taken.
	Save(ctx context.Context, position *model.Position) error
	GetByID(ctx context.Context, accountID, assetID string) (*model.Position, error)
	GetByAccountID(ctx context.Context, accountID string) ([]model.Position, error)
	// UpdateQuantity applies a signed delta atomically. It never lets the quantity
	// drop below zero (model.ErrInsufficientQuantity) and fails with
	// model.ErrAccountOrAssetNotFound when the position does not exist.
	UpdateQuantity(ctx context.Context, accountID, assetID string, delta decimal.Decimal) error
}

// OrderStore persists order intents.
type OrderStore interface {
	Save(ctx context.Context, order *model.Order) (string, error)
	// GetOrders filters by status unless status is empty.
	GetOrders(ctx context.Context, accountID, status string) ([]model.Order, error)
	Update(ctx context.Context, orderID string, update model.OrderUpdate) error
}

// NegativePositionFinder is implemented by asset stores that can be audited.
type NegativePositionFinder interface {
	FindNegativePositions(ctx context.Context) ([]model.Position, error)
}
