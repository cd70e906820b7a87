package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"audio-track-subscription/internal/domain"
	"audio-track-subscription/internal/domain/model"
	"audio-track-subscription/internal/domain/ports/repository"
)

var (
	_ repository.CategoryRepository = (*categoryRepo)(nil)
	_ repository.TrackRepository    = (*trackRepo)(nil)
)

type categoryRepo struct{ pool *pgxpool.Pool }

func NewCategoryRepo(pool *pgxpool.Pool) *categoryRepo {
	return &categoryRepo{pool: pool}
}

func (r *categoryRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Category, error) {
	const q = `SELECT id, name, slug, COALESCE(thumbnail_path,''), created_at FROM categories WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	c := &model.Category{}
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.ThumbnailPath, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return c, nil
}

func (r *categoryRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Category, error) {
	const q = `SELECT id, name, slug, COALESCE(thumbnail_path,''), created_at FROM categories ORDER BY name ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Category
	for rows.Next() {
		c := &model.Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.ThumbnailPath, &c.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, c)
	}
	return out, nil
}

const trackCols = `id, category_id, title, COALESCE(description,''), COALESCE(thumbnail_path,''), COALESCE(mp3_path,''), price_paise, status, created_at`

type trackRepo struct{ pool *pgxpool.Pool }

func NewTrackRepo(pool *pgxpool.Pool) *trackRepo {
	return &trackRepo{pool: pool}
}

func (r *trackRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Track, error) {
	const q = `SELECT ` + trackCols + ` FROM tracks WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanTrack(row)
}

func (r *trackRepo) ListByCategory(ctx context.Context, tx repository.Tx, categoryID int64) ([]*model.Track, error) {
	const q = `SELECT ` + trackCols + ` FROM tracks WHERE category_id=$1 ORDER BY created_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, categoryID)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()
	return collectTracks(rows)
}

func (r *trackRepo) ListByIDs(ctx context.Context, tx repository.Tx, ids []int64) ([]*model.Track, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const q = `SELECT ` + trackCols + ` FROM tracks WHERE id = ANY($1) ORDER BY created_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, ids)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()
	return collectTracks(rows)
}

func collectTracks(rows pgx.Rows) ([]*model.Track, error) {
	var out []*model.Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func scanTrack(row pgx.Row) (*model.Track, error) {
	t := &model.Track{}
	err := row.Scan(&t.ID, &t.CategoryID, &t.Title, &t.Description, &t.ThumbnailPath, &t.MP3Path, &t.PricePaise, &t.Status, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return t, nil
}
