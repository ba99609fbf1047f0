package memory

import (
	"context"
	"sort"
	"sync"

	"ledger-api/internal/model"
)

// OrderStore keeps orders in process memory. Safe for concurrent use.
type OrderStore struct {
	mu     sync.RWMutex
	orders map[string]model.Order
}

func NewOrderStore() *OrderStore {
	return &OrderStore{orders: make(map[string]model.Order)}
}

func (s *OrderStore) Save(_ context.Context, order *model.Order) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders[order.OrderID] = *order
	return order.OrderID, nil
}

// GetOrders returns the account's orders oldest first; an empty status matches all.
func (s *OrderStore) GetOrders(_ context.Context, accountID, status string) ([]model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]model.Order, 0)
	for _, order := range s.orders {
		if order.AccountID != accountID {
			continue
		}
		if status != "" && order.Status != status {
			continue
		}
		orders = append(orders, order)
	}
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].Timestamp.Equal(orders[j].Timestamp) {
			return orders[i].OrderID < orders[j].OrderID
		}
		return orders[i].Timestamp.Before(orders[j].Timestamp)
	})
	return orders, nil
}

func (s *OrderStore) Update(_ context.Context, orderID string, update model.OrderUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		return model.ErrOrderNotFound
	}
	order.FillQuantity = update.FillQuantity
	order.FillPrice = update.FillPrice
	order.Status = update.Status
	s.orders[orderID] = order
	return nil
}
