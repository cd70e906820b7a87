package model

import "time"

type TransactionStatus string

const (
	TransactionStatusInTransit TransactionStatus = "in_transit" // order created, payment not confirmed
	TransactionStatusCaptured  TransactionStatus = "captured"   // terminal success
	TransactionStatusFailed    TransactionStatus = "failed"     // abandoned / reconciled away
)

// Transaction records one payment attempt against the gateway.
// OrderID is the gateway order id and uniquely identifies a row.
// Status only ever moves forward: in_transit -> captured is done exactly once,
// and once captured the payment id and signature are immutable.
type Transaction struct {
	OrderID   string            `json:"order_id"`
	PaymentID *string           `json:"payment_id"`
	Receipt   string            `json:"receipt"`
	Email     string            `json:"email"`
	Amount    float64           `json:"amount"` // major units (rupees), not paise
	Currency  string            `json:"currency"`
	Status    TransactionStatus `json:"status"`
	Method    *string           `json:"method"`
	Signature *string           `json:"-"` // audit copy of the verified signature
	UserID    *int64            `json:"user_id"`
	TrackID   *int64            `json:"track_id"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// MonthlyAmount is one month of captured revenue, Month formatted "2006-01".
type MonthlyAmount struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

// MonthlyCount is one month of row counts, Month formatted "2006-01".
type MonthlyCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}
