package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"ledger-api/internal/model"
)

type positionKey struct {
	accountID string
	assetID   string
}

// AssetStore keeps positions in process memory. Safe for concurrent use.
type AssetStore struct {
	mu        sync.RWMutex
	positions map[positionKey]decimal.Decimal
}

func NewAssetStore() *AssetStore {
	return &AssetStore{positions: make(map[positionKey]decimal.Decimal)}
}

func (s *AssetStore) Save(_ context.Context, position *model.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := positionKey{position.AccountID, position.AssetID}
	if _, exists := s.positions[key]; exists {
		return model.ErrPositionExists
	}
	s.positions[key] = position.Quantity
	return nil
}

func (s *AssetStore) GetByID(_ context.Context, accountID, assetID string) (*model.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	quantity, ok := s.positions[positionKey{accountID, assetID}]
	if !ok {
		return nil, nil
	}
	return &model.Position{AccountID: accountID, AssetID: assetID, Quantity: quantity}, nil
}

// GetByAccountID returns the account's positions ordered by asset id.
func (s *AssetStore) GetByAccountID(_ context.Context, accountID string) ([]model.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	positions := make([]model.Position, 0)
	for key, quantity := range s.positions {
		if key.accountID == accountID {
			positions = append(positions, model.Position{AccountID: key.accountID, AssetID: key.assetID, Quantity: quantity})
		}
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i].AssetID < positions[j].AssetID })
	return positions, nil
}

func (s *AssetStore) UpdateQuantity(_ context.Context, accountID, assetID string, delta decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := positionKey{accountID, assetID}
	quantity, ok := s.positions[key]
	if !ok {
		return model.ErrAccountOrAssetNotFound
	}
	next := quantity.Add(delta)
	if next.IsNegative() {
		return model.ErrInsufficientQuantity
	}
	s.positions[key] = next
	return nil
}

// FindNegativePositions always comes back empty unless the map was corrupted,
// since UpdateQuantity refuses negative results.
func (s *AssetStore) FindNegativePositions(_ context.Context) ([]model.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var negative []model.Position
	for key, quantity := range s.positions {
		if quantity.IsNegative() {
			negative = append(negative, model.Position{AccountID: key.accountID, AssetID: key.assetID, Quantity: quantity})
		}
	}
	return negative, nil
}
