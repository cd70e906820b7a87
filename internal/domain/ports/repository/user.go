package repository

import (
	"context"

	"audio-track-subscription/internal/domain/model"
)

type UserRepository interface {
	Create(ctx context.Context, tx Tx, u *model.User) (int64, error)
	FindByID(ctx context.Context, tx Tx, id int64) (*model.User, error)
	FindByEmail(ctx context.Context, tx Tx, email string) (*model.User, error)
	List(ctx context.Context, tx Tx, offset, limit int) ([]*model.User, error)
	Count(ctx context.Context, tx Tx) (int, error)
}
