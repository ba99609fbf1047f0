package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// Order is an order intent recorded against an account. No matching happens yet:
// Status is supplied by the caller and persisted as-is.
type Order struct {
	OrderID      string          `json:"orderId" db:"order_id"`
	AccountID    string          `json:"accountId" db:"account_id"`
	MarketID     string          `json:"marketId" db:"market_id"`
	Side         OrderSide       `json:"side" db:"side"`
	Quantity     decimal.Decimal `json:"quantity" db:"quantity"`
	Price        decimal.Decimal `json:"price" db:"price"`
	FillQuantity decimal.Decimal `json:"fillQuantity" db:"fill_quantity"`
	FillPrice    decimal.Decimal `json:"fillPrice" db:"fill_price"`
	Status       string          `json:"status" db:"status"`
	Timestamp    time.Time       `json:"timestamp" db:"timestamp"`
}

// OrderUpdate holds the fill fields a matching engine would write back.
type OrderUpdate struct {
	FillQuantity decimal.Decimal
	FillPrice    decimal.Decimal
	Status       string
}

type OrderOutput struct {
	OrderID string `json:"orderId"`
}
