package adapter

import (
	"context"
	"time"
)

// Order is the gateway-side payment intent returned by order creation.
type Order struct {
	ID        string    `json:"id"`
	Amount    int64     `json:"amount"` // minor units (paise)
	Currency  string    `json:"currency"`
	Receipt   string    `json:"receipt"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderGateway is the hex port for the external payment processor.
type OrderGateway interface {
	Name() string
	// CreateOrder registers a payment intent for the given minor-unit amount
	// and returns the gateway order. Errors carry the gateway's human-readable
	// description when one is available.
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*Order, error)
}
