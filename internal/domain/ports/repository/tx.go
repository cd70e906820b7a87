package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle. The concrete type is infra-defined
// (pgx.Tx for Postgres); repositories accept nil for the non-transactional path
// and upgrade row reads to SELECT ... FOR UPDATE when a real tx is present.
type Tx interface{}

// TransactionManager executes fn inside a database transaction. fn returning
// an error rolls back every write made through the handle; otherwise the
// transaction commits. Row locks taken inside fn are held until commit, which
// is what serializes racing settlement attempts for the same order.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
