package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"audio-track-subscription/internal/domain"
	"audio-track-subscription/internal/domain/model"
	"audio-track-subscription/internal/domain/ports/repository"
)

var _ AdminUseCase = (*adminUC)(nil)

// AdminUseCase backs the management panel: raw listings and manual edits
// that bypass the payment flow.
type AdminUseCase interface {
	ListSubscriptions(ctx context.Context, offset, limit int) ([]*model.Subscription, int, error)
	SaveSubscription(ctx context.Context, s *model.Subscription) error
	DeleteSubscription(ctx context.Context, id int64) error
	ListTransactions(ctx context.Context, f repository.TransactionFilter) ([]*model.Transaction, int, error)
}

type adminUC struct {
	subs repository.SubscriptionRepository
	txs  repository.TransactionRepository
	log  *zerolog.Logger
}

func NewAdminUseCase(
	subs repository.SubscriptionRepository,
	txs repository.TransactionRepository,
	logger *zerolog.Logger,
) *adminUC {
	l := logger.With().Str("component", "AdminUC").Logger()
	return &adminUC{subs: subs, txs: txs, log: &l}
}

func (a *adminUC) ListSubscriptions(ctx context.Context, offset, limit int) ([]*model.Subscription, int, error) {
	list, err := a.subs.List(ctx, nil, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := a.subs.Count(ctx, nil)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (a *adminUC) SaveSubscription(ctx context.Context, s *model.Subscription) error {
	if s == nil || s.UserID <= 0 {
		return domain.ErrInvalidArgument
	}
	switch s.Status {
	case model.SubscriptionStatusActive, model.SubscriptionStatusExpired, model.SubscriptionStatusCancelled:
	case "":
		s.Status = model.SubscriptionStatusActive
	default:
		return domain.ErrInvalidArgument
	}
	if s.StartDate != nil && s.EndDate != nil && s.EndDate.Before(*s.StartDate) {
		return domain.ErrInvalidArgument
	}
	if err := a.subs.Save(ctx, nil, s); err != nil {
		return err
	}
	a.log.Info().Int64("subscription_id", s.ID).Int64("user_id", s.UserID).Msg("subscription saved")
	return nil
}

func (a *adminUC) DeleteSubscription(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.ErrInvalidArgument
	}
	if err := a.subs.Delete(ctx, nil, id); err != nil {
		return err
	}
	a.log.Info().Int64("subscription_id", id).Time("at", time.Now()).Msg("subscription deleted")
	return nil
}

func (a *adminUC) ListTransactions(ctx context.Context, f repository.TransactionFilter) ([]*model.Transaction, int, error) {
	list, err := a.txs.List(ctx, nil, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := a.txs.Count(ctx, nil, f)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
