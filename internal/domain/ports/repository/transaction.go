package repository

import (
	"context"
	"time"

	"audio-track-subscription/internal/domain/model"
)

// TransactionFilter narrows admin transaction listings.
type TransactionFilter struct {
	Status model.TransactionStatus // empty = any
	Email  string                  // empty = any
	Offset int
	Limit  int
}

type TransactionRepository interface {
	Insert(ctx context.Context, tx Tx, t *model.Transaction) error
	// FindByOrderID locks the row (SELECT ... FOR UPDATE) when tx is a real
	// database transaction handle.
	FindByOrderID(ctx context.Context, tx Tx, orderID string) (*model.Transaction, error)
	// MarkCaptured performs the single in_transit -> captured transition.
	MarkCaptured(ctx context.Context, tx Tx, orderID, paymentID, signature string, at time.Time) error
	// UpsertCaptured inserts a captured row, or updates status/method/email/amount
	// on the existing row keyed by order id. Used by the webhook ingress, which
	// may legitimately observe an order the redirect path never recorded.
	UpsertCaptured(ctx context.Context, tx Tx, t *model.Transaction) error
	List(ctx context.Context, tx Tx, f TransactionFilter) ([]*model.Transaction, error)
	Count(ctx context.Context, tx Tx, f TransactionFilter) (int, error)
	SumCaptured(ctx context.Context, tx Tx) (float64, error)
	MonthlyCapturedAmounts(ctx context.Context, tx Tx, months int) ([]model.MonthlyAmount, error)
	// MarkStaleFailed flips in_transit rows created before cutoff to failed and
	// returns how many were touched. Captured rows are never eligible.
	MarkStaleFailed(ctx context.Context, tx Tx, cutoff time.Time) (int64, error)
}
