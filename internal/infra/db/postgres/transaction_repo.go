package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"audio-track-subscription/internal/domain"
	"audio-track-subscription/internal/domain/model"
	"audio-track-subscription/internal/domain/ports/repository"
)

var _ repository.TransactionRepository = (*transactionRepo)(nil)

const transactionCols = `order_id, payment_id, receipt, email, amount, currency, status, method, signature, user_id, track_id, created_at, updated_at`

type transactionRepo struct{ pool *pgxpool.Pool }

func NewTransactionRepo(pool *pgxpool.Pool) *transactionRepo {
	return &transactionRepo{pool: pool}
}

func (r *transactionRepo) Insert(ctx context.Context, tx repository.Tx, t *model.Transaction) error {
	const q = `
INSERT INTO transactions (` + transactionCols + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13);`

	_, err := execSQL(ctx, r.pool, tx, q,
		t.OrderID, t.PaymentID, t.Receipt, t.Email, t.Amount, t.Currency,
		t.Status, t.Method, t.Signature, t.UserID, t.TrackID, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *transactionRepo) FindByOrderID(ctx context.Context, tx repository.Tx, orderID string) (*model.Transaction, error) {
	q := `SELECT ` + transactionCols + ` FROM transactions WHERE order_id=$1`
	if inTx(tx) {
		q += " FOR UPDATE"
	}
	row, err := pickRow(ctx, r.pool, tx, q, orderID)
	if err != nil {
		return nil, err
	}
	return scanTransaction(row)
}

func (r *transactionRepo) MarkCaptured(ctx context.Context, tx repository.Tx, orderID, paymentID, signature string, at time.Time) error {
	const q = `
UPDATE transactions
   SET status=$2, payment_id=$3, signature=$4, updated_at=$5
 WHERE order_id=$1;`

	cmd, err := execSQL(ctx, r.pool, tx, q, orderID, model.TransactionStatusCaptured, paymentID, signature, at)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

func (r *transactionRepo) UpsertCaptured(ctx context.Context, tx repository.Tx, t *model.Transaction) error {
	const q = `
INSERT INTO transactions (` + transactionCols + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
ON CONFLICT (order_id) DO UPDATE SET
  status=EXCLUDED.status, payment_id=EXCLUDED.payment_id, method=EXCLUDED.method,
  email=EXCLUDED.email, amount=EXCLUDED.amount, currency=EXCLUDED.currency,
  updated_at=EXCLUDED.updated_at;`

	_, err := execSQL(ctx, r.pool, tx, q,
		t.OrderID, t.PaymentID, t.Receipt, t.Email, t.Amount, t.Currency,
		t.Status, t.Method, t.Signature, t.UserID, t.TrackID, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *transactionRepo) List(ctx context.Context, tx repository.Tx, f repository.TransactionFilter) ([]*model.Transaction, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT ` + transactionCols + ` FROM transactions
 WHERE ($1 = '' OR status = $1)
   AND ($2 = '' OR email = $2)
 ORDER BY created_at DESC
 LIMIT $3 OFFSET $4;`

	rows, err := queryRows(ctx, r.pool, tx, q, string(f.Status), f.Email, limit, f.Offset)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return nil, err
		}
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *transactionRepo) Count(ctx context.Context, tx repository.Tx, f repository.TransactionFilter) (int, error) {
	const q = `
SELECT COUNT(*) FROM transactions
 WHERE ($1 = '' OR status = $1)
   AND ($2 = '' OR email = $2);`
	row, err := pickRow(ctx, r.pool, tx, q, string(f.Status), f.Email)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func (r *transactionRepo) SumCaptured(ctx context.Context, tx repository.Tx) (float64, error) {
	const q = `SELECT COALESCE(SUM(amount),0) FROM transactions WHERE status='captured';`
	row, err := pickRow(ctx, r.pool, tx, q)
	if err != nil {
		return 0, err
	}
	var sum float64
	if err := row.Scan(&sum); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return sum, nil
}

func (r *transactionRepo) MonthlyCapturedAmounts(ctx context.Context, tx repository.Tx, months int) ([]model.MonthlyAmount, error) {
	const q = `
SELECT TO_CHAR(created_at, 'YYYY-MM') AS ym, COALESCE(SUM(amount),0)
  FROM transactions
 WHERE status='captured'
   AND created_at >= DATE_TRUNC('month', NOW()) - ($1 || ' months')::interval
 GROUP BY ym
 ORDER BY ym;`

	rows, err := queryRows(ctx, r.pool, tx, q, months-1)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []model.MonthlyAmount
	for rows.Next() {
		var m model.MonthlyAmount
		if err := rows.Scan(&m.Month, &m.Amount); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *transactionRepo) MarkStaleFailed(ctx context.Context, tx repository.Tx, cutoff time.Time) (int64, error) {
	const q = `
UPDATE transactions SET status='failed', updated_at=NOW()
 WHERE status='in_transit' AND created_at < $1;`

	cmd, err := execSQL(ctx, r.pool, tx, q, cutoff)
	if err != nil {
		return 0, domain.ErrOperationFailed
	}
	return cmd.RowsAffected(), nil
}

func scanTransaction(row pgx.Row) (*model.Transaction, error) {
	t := &model.Transaction{}
	err := row.Scan(&t.OrderID, &t.PaymentID, &t.Receipt, &t.Email, &t.Amount, &t.Currency,
		&t.Status, &t.Method, &t.Signature, &t.UserID, &t.TrackID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return t, nil
}
