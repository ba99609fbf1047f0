package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"ledger-api/internal/metrics"
	"ledger-api/internal/model"
	"ledger-api/internal/validation"
)

// OrderValidator runs after the account is resolved and before the order is stored.
// Returning an error rejects the order.
type OrderValidator interface {
	ValidateOrder(ctx context.Context, account model.AccountView, order *model.Order) error
}

// AcceptAllOrders is the default validator. There is no matching engine behind intake yet.
type AcceptAllOrders struct{}

func (AcceptAllOrders) ValidateOrder(context.Context, model.AccountView, *model.Order) error {
	return nil
}

// OrderService is the order intake boundary: it records orders and lists them back.
type OrderService struct {
	accounts   *AccountService
	orderStore OrderStore
	validator  OrderValidator
	metrics    *metrics.Metrics
	logger     *logrus.Logger
}

func NewOrderService(
	accounts *AccountService,
	orderStore OrderStore,
	validator OrderValidator,
	m *metrics.Metrics,
	logger *logrus.Logger,
) *OrderService {
	if validator == nil {
		validator = AcceptAllOrders{}
	}
	return &OrderService{
		accounts:   accounts,
		orderStore: orderStore,
		validator:  validator,
		metrics:    m,
		logger:     logger,
	}
}

// ExecuteOrder stamps a fresh id on the order and persists it as given.
func (s *OrderService) ExecuteOrder(ctx context.Context, order model.Order) (out *model.OrderOutput, err error) {
	defer func() { s.metrics.RecordOperation("execute_order", err) }()

	account, err := s.accounts.GetAccountByID(ctx, order.AccountID)
	if err != nil {
		return nil, err
	}

	order.AccountID = account.AccountID
	order.OrderID = uuid.NewString()
	if order.Timestamp.IsZero() {
		order.Timestamp = time.Now().UTC()
	}

	if err := s.validator.ValidateOrder(ctx, *account, &order); err != nil {
		s.logger.WithError(err).WithField("account_id", order.AccountID).Warn("Order rejected")
		return nil, err
	}

	orderID, err := s.orderStore.Save(ctx, &order)
	if err != nil {
		s.logger.WithError(err).WithField("account_id", order.AccountID).Error("Failed to save order")
		return nil, fmt.Errorf("save order: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":   orderID,
		"account_id": order.AccountID,
		"market_id":  order.MarketID,
		"side":       order.Side,
	}).Info("Order recorded")

	return &model.OrderOutput{OrderID: orderID}, nil
}

// GetOrders lists the account's orders, filtered by status when status is not empty.
func (s *OrderService) GetOrders(ctx context.Context, accountID, status string) ([]model.Order, error) {
	if !validation.IsValidUUID(accountID) {
		return nil, model.ErrInvalidAccountID
	}
	accountID = validation.CanonicalID(accountID)

	orders, err := s.orderStore.GetOrders(ctx, accountID, status)
	if err != nil {
		s.logger.WithError(err).WithField("account_id", accountID).Error("Failed to list orders")
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}
