package model

import "github.com/shopspring/decimal"

// Position is the quantity of one asset held by one account.
// The pair (AccountID, AssetID) is unique.
type Position struct {
	AccountID string          `json:"-" db:"account_id"`
	AssetID   string          `json:"assetId" db:"asset_id"`
	Quantity  decimal.Decimal `json:"quantity" db:"quantity"`
}

// AssetRequest is the input of a deposit or a withdrawal.
type AssetRequest struct {
	AccountID string          `json:"accountId"`
	AssetID   string          `json:"assetId"`
	Quantity  decimal.Decimal `json:"quantity"`
}

type AssetResult struct {
	Message string `json:"message"`
}

// InitialAsset is deposited right after signup by CreateAccountWithInitialAssets.
type InitialAsset struct {
	AssetID  string          `json:"assetId"`
	Quantity decimal.Decimal `json:"quantity"`
}

// AccountWithAssets merges the account view with its positions.
type AccountWithAssets struct {
	AccountView
	Assets []Position `json:"assets"`
}
