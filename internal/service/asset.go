package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"ledger-api/internal/metrics"
	"ledger-api/internal/model"
	"ledger-api/internal/validation"
)

const (
	depositSuccessful  = "Deposit successful"
	withdrawSuccessful = "Withdraw successful"
)

// AssetService is the asset ledger. Deposit and withdraw on one position key
// are serialized; different keys proceed in parallel.
type AssetService struct {
	assetStore AssetStore
	assets     validation.AssetSet
	locks      *keyLocks
	metrics    *metrics.Metrics
	logger     *logrus.Logger
}

type AssetServiceOptions struct {
	// AllowedAssets defaults to validation.DefaultAssets when empty.
	AllowedAssets validation.AssetSet
	LockStripes   int
	Metrics       *metrics.Metrics
}

func NewAssetService(assetStore AssetStore, opts AssetServiceOptions, logger *logrus.Logger) *AssetService {
	assets := opts.AllowedAssets
	if assets.Len() == 0 {
		assets = validation.DefaultAssets
	}
	return &AssetService{
		assetStore: assetStore,
		assets:     assets,
		locks:      newKeyLocks(opts.LockStripes),
		metrics:    opts.Metrics,
		logger:     logger,
	}
}

// Deposit creates the position on first deposit and increments it afterwards.
func (s *AssetService) Deposit(ctx context.Context, req model.AssetRequest) (result *model.AssetResult, err error) {
	defer func() { s.metrics.RecordOperation("deposit", err) }()

	req, err = s.validate(req)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(req.AccountID, req.AssetID)
	defer unlock()

	position, err := s.assetStore.GetByID(ctx, req.AccountID, req.AssetID)
	if err != nil {
		s.logStorageError(err, req, "Failed to load position")
		return nil, fmt.Errorf("get position: %w", err)
	}

	if position == nil {
		err = s.assetStore.Save(ctx, &model.Position{
			AccountID: req.AccountID,
			AssetID:   req.AssetID,
			Quantity:  req.Quantity,
		})
		// another writer outside this process created the row first
		if errors.Is(err, model.ErrPositionExists) {
			err = s.assetStore.UpdateQuantity(ctx, req.AccountID, req.AssetID, req.Quantity)
		}
	} else {
		err = s.assetStore.UpdateQuantity(ctx, req.AccountID, req.AssetID, req.Quantity)
	}
	if err != nil {
		if ruleErr, ok := model.AsRuleError(err); ok {
			return nil, s.reject(ruleErr, req)
		}
		s.logStorageError(err, req, "Failed to deposit")
		return nil, fmt.Errorf("deposit: %w", err)
	}

	s.logger.WithFields(requestFields(req)).Info("Deposit completed")
	return &model.AssetResult{Message: depositSuccessful}, nil
}

// Withdraw fails without side effects when the position is missing or too small.
func (s *AssetService) Withdraw(ctx context.Context, req model.AssetRequest) (result *model.AssetResult, err error) {
	defer func() { s.metrics.RecordOperation("withdraw", err) }()

	req, err = s.validate(req)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(req.AccountID, req.AssetID)
	defer unlock()

	position, err := s.assetStore.GetByID(ctx, req.AccountID, req.AssetID)
	if err != nil {
		s.logStorageError(err, req, "Failed to load position")
		return nil, fmt.Errorf("get position: %w", err)
	}
	if position == nil {
		return nil, s.reject(model.ErrAccountOrAssetNotFound, req)
	}
	if position.Quantity.LessThan(req.Quantity) {
		return nil, s.reject(model.ErrInsufficientQuantity, req)
	}

	if err := s.assetStore.UpdateQuantity(ctx, req.AccountID, req.AssetID, req.Quantity.Neg()); err != nil {
		if ruleErr, ok := model.AsRuleError(err); ok {
			return nil, s.reject(ruleErr, req)
		}
		s.logStorageError(err, req, "Failed to withdraw")
		return nil, fmt.Errorf("withdraw: %w", err)
	}

	s.logger.WithFields(requestFields(req)).Info("Withdraw completed")
	return &model.AssetResult{Message: withdrawSuccessful}, nil
}

// GetAssetsByAccountID lists every position of the account, zero quantities included.
func (s *AssetService) GetAssetsByAccountID(ctx context.Context, accountID string) ([]model.Position, error) {
	accountID = validation.CanonicalID(accountID)
	positions, err := s.assetStore.GetByAccountID(ctx, accountID)
	if err != nil {
		s.logger.WithError(err).WithField("account_id", accountID).Error("Failed to list positions")
		return nil, fmt.Errorf("list positions: %w", err)
	}
	if positions == nil {
		positions = []model.Position{}
	}
	return positions, nil
}

// validate checks accountId, then quantity, then assetId, and returns the
// request with its account id in canonical form so locks and stores agree on the key.
func (s *AssetService) validate(req model.AssetRequest) (model.AssetRequest, error) {
	switch {
	case !validation.IsValidUUID(req.AccountID):
		return req, s.reject(model.ErrInvalidLedgerAccount, req)
	case !validation.IsValidQuantity(req.Quantity):
		return req, s.reject(model.ErrInvalidQuantity, req)
	case !s.assets.Contains(req.AssetID):
		return req, s.reject(model.ErrInvalidAssetID, req)
	}
	req.AccountID = validation.CanonicalID(req.AccountID)
	return req, nil
}

func (s *AssetService) reject(rule *model.RuleError, req model.AssetRequest) error {
	s.logger.WithFields(requestFields(req)).WithField("rule", rule.Kind.String()).Warn(rule.Message)
	return rule
}

func (s *AssetService) logStorageError(err error, req model.AssetRequest, msg string) {
	s.logger.WithError(err).WithFields(requestFields(req)).Error(msg)
}

func requestFields(req model.AssetRequest) logrus.Fields {
	return logrus.Fields{
		"account_id": req.AccountID,
		"asset_id":   req.AssetID,
		"quantity":   req.Quantity.String(),
	}
}
