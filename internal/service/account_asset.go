package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"ledger-api/internal/model"
)

// AccountAssetService joins the account directory with the asset ledger.
// Errors from either side are returned unchanged.
type AccountAssetService struct {
	accounts *AccountService
	assets   *AssetService
	logger   *logrus.Logger
}

func NewAccountAssetService(accounts *AccountService, assets *AssetService, logger *logrus.Logger) *AccountAssetService {
	return &AccountAssetService{
		accounts: accounts,
		assets:   assets,
		logger:   logger,
	}
}

func (s *AccountAssetService) GetAccountWithAssets(ctx context.Context, accountID string) (*model.AccountWithAssets, error) {
	account, err := s.accounts.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	positions, err := s.assets.GetAssetsByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return &model.AccountWithAssets{AccountView: *account, Assets: positions}, nil
}

// CreateAccountWithInitialAssets signs up and then deposits each asset in order.
// It is not transactional: a failed deposit leaves the account and any earlier deposits in place.
func (s *AccountAssetService) CreateAccountWithInitialAssets(
	ctx context.Context,
	input model.SignupInput,
	initialAssets []model.InitialAsset,
) (*model.SignupOutput, error) {
	out, err := s.accounts.Signup(ctx, input)
	if err != nil {
		return nil, err
	}

	for i, asset := range initialAssets {
		_, err := s.assets.Deposit(ctx, model.AssetRequest{
			AccountID: out.AccountID,
			AssetID:   asset.AssetID,
			Quantity:  asset.Quantity,
		})
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"account_id": out.AccountID,
				"deposited":  i,
				"requested":  len(initialAssets),
			}).Warn("Account created with a partial initial asset set")
			return nil, err
		}
	}

	return out, nil
}

// Deposit re-checks that the account exists before touching the ledger.
func (s *AccountAssetService) Deposit(ctx context.Context, req model.AssetRequest) (*model.AssetResult, error) {
	if _, err := s.accounts.GetAccountByID(ctx, req.AccountID); err != nil {
		return nil, err
	}
	return s.assets.Deposit(ctx, req)
}

// Withdraw re-checks that the account exists before touching the ledger.
func (s *AccountAssetService) Withdraw(ctx context.Context, req model.AssetRequest) (*model.AssetResult, error) {
	if _, err := s.accounts.GetAccountByID(ctx, req.AccountID); err != nil {
		return nil, err
	}
	return s.assets.Withdraw(ctx, req)
}
