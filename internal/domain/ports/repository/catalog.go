package repository

import (
	"context"

	"audio-track-subscription/internal/domain/model"
)

type CategoryRepository interface {
	FindByID(ctx context.Context, tx Tx, id int64) (*model.Category, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.Category, error)
}

type TrackRepository interface {
	FindByID(ctx context.Context, tx Tx, id int64) (*model.Track, error)
	ListByCategory(ctx context.Context, tx Tx, categoryID int64) ([]*model.Track, error)
	ListByIDs(ctx context.Context, tx Tx, ids []int64) ([]*model.Track, error)
}
