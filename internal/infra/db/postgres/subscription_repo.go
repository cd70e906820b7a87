package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"audio-track-subscription/internal/domain"
	"audio-track-subscription/internal/domain/model"
	"audio-track-subscription/internal/domain/ports/repository"
)

var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

const subscriptionCols = `id, user_id, track_id, track, status, start_date, end_date, created_at, updated_at`

type subscriptionRepo struct{ pool *pgxpool.Pool }

func NewSubscriptionRepo(pool *pgxpool.Pool) *subscriptionRepo {
	return &subscriptionRepo{pool: pool}
}

func (r *subscriptionRepo) Grant(ctx context.Context, tx repository.Tx, userID, trackID int64, start, end time.Time) error {
	// The extension is monotone: a re-grant never shortens access. A NULL end
	// date means unbounded and must survive the upsert; GREATEST alone would
	// skip the NULL and write the finite date over it.
	const q = `
INSERT INTO subscriptions (user_id, track_id, status, start_date, end_date, created_at, updated_at)
VALUES ($1, $2, 'active', $3, $4, NOW(), NOW())
ON CONFLICT (user_id, track_id) WHERE track_id IS NOT NULL DO UPDATE SET
  status='active',
  end_date=CASE
    WHEN subscriptions.end_date IS NULL THEN NULL
    ELSE GREATEST(subscriptions.end_date, EXCLUDED.end_date)
  END,
  updated_at=NOW();`

	_, err := execSQL(ctx, r.pool, tx, q, userID, trackID, start, end)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *subscriptionRepo) FindLatestByUserAndTrack(ctx context.Context, tx repository.Tx, userID, trackID int64) (*model.Subscription, error) {
	q := `
SELECT ` + subscriptionCols + ` FROM subscriptions
 WHERE user_id=$1 AND track_id=$2
 ORDER BY created_at DESC
 LIMIT 1`
	if inTx(tx) {
		q += " FOR UPDATE"
	}
	row, err := pickRow(ctx, r.pool, tx, q, userID, trackID)
	if err != nil {
		return nil, err
	}
	return scanSubscription(row)
}

func (r *subscriptionRepo) FindLatestByUserAndTrackTitle(ctx context.Context, tx repository.Tx, userID int64, title string) (*model.Subscription, error) {
	const q = `
SELECT ` + subscriptionCols + ` FROM subscriptions
 WHERE user_id=$1 AND track=$2
 ORDER BY created_at DESC
 LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, userID, title)
	if err != nil {
		return nil, err
	}
	return scanSubscription(row)
}

func (r *subscriptionRepo) HasActiveOnDate(ctx context.Context, tx repository.Tx, userID int64, day time.Time) (bool, error) {
	const q = `
SELECT EXISTS (
  SELECT 1 FROM subscriptions
   WHERE user_id=$1
     AND status='active'
     AND (start_date IS NULL OR start_date <= $2)
     AND (end_date IS NULL OR end_date >= $2)
);`
	row, err := pickRow(ctx, r.pool, tx, q, userID, model.DateOnly(day))
	if err != nil {
		return false, err
	}
	var ok bool
	if err := row.Scan(&ok); err != nil {
		return false, domain.ErrReadDatabaseRow
	}
	return ok, nil
}

func (r *subscriptionRepo) ActiveTrackIDs(ctx context.Context, tx repository.Tx, userID int64, day time.Time) ([]int64, error) {
	const q = `
SELECT DISTINCT track_id FROM subscriptions
 WHERE user_id=$1
   AND track_id IS NOT NULL
   AND status='active'
   AND (end_date IS NULL OR end_date > $2);`

	rows, err := queryRows(ctx, r.pool, tx, q, userID, model.DateOnly(day))
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *subscriptionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	if s.ID == 0 {
		const q = `
INSERT INTO subscriptions (user_id, track_id, track, status, start_date, end_date, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,NOW(),NOW())
RETURNING id;`
		row, err := pickRow(ctx, r.pool, tx, q, s.UserID, s.TrackID, s.TrackTitle, s.Status, s.StartDate, s.EndDate)
		if err != nil {
			return err
		}
		if err := row.Scan(&s.ID); err != nil {
			return domain.ErrOperationFailed
		}
		return nil
	}
	const q = `
UPDATE subscriptions
   SET user_id=$2, track_id=$3, track=$4, status=$5, start_date=$6, end_date=$7, updated_at=NOW()
 WHERE id=$1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, s.ID, s.UserID, s.TrackID, s.TrackTitle, s.Status, s.StartDate, s.EndDate)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *subscriptionRepo) Delete(ctx context.Context, tx repository.Tx, id int64) error {
	cmd, err := execSQL(ctx, r.pool, tx, `DELETE FROM subscriptions WHERE id=$1;`, id)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *subscriptionRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.Subscription, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT ` + subscriptionCols + ` FROM subscriptions
 ORDER BY created_at DESC
 LIMIT $1 OFFSET $2;`

	rows, err := queryRows(ctx, r.pool, tx, q, limit, offset)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *subscriptionRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM subscriptions;`)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func (r *subscriptionRepo) CountDistinctActiveUsers(ctx context.Context, tx repository.Tx) (int, error) {
	row, err := pickRow(ctx, r.pool, tx,
		`SELECT COUNT(DISTINCT user_id) FROM subscriptions WHERE status='active';`)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func (r *subscriptionRepo) MonthlyCounts(ctx context.Context, tx repository.Tx, months int) ([]model.MonthlyCount, error) {
	const q = `
SELECT TO_CHAR(created_at, 'YYYY-MM') AS ym, COUNT(*)
  FROM subscriptions
 WHERE created_at >= DATE_TRUNC('month', NOW()) - ($1 || ' months')::interval
 GROUP BY ym
 ORDER BY ym;`

	rows, err := queryRows(ctx, r.pool, tx, q, months-1)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []model.MonthlyCount
	for rows.Next() {
		var m model.MonthlyCount
		if err := rows.Scan(&m.Month, &m.Count); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *subscriptionRepo) ExpireOverdue(ctx context.Context, tx repository.Tx, now time.Time) (int64, error) {
	const q = `
UPDATE subscriptions SET status='expired', updated_at=NOW()
 WHERE status='active' AND end_date IS NOT NULL AND end_date < $1;`

	cmd, err := execSQL(ctx, r.pool, tx, q, model.DateOnly(now))
	if err != nil {
		return 0, domain.ErrOperationFailed
	}
	return cmd.RowsAffected(), nil
}

func scanSubscription(row pgx.Row) (*model.Subscription, error) {
	s := &model.Subscription{}
	var title *string
	err := row.Scan(&s.ID, &s.UserID, &s.TrackID, &title, &s.Status, &s.StartDate, &s.EndDate, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	if title != nil {
		s.TrackTitle = *title
	}
	return s, nil
}
