package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"audio-track-subscription/internal/domain/model"
	"audio-track-subscription/internal/domain/ports/repository"
)

var _ StatsUseCase = (*statsUC)(nil)

// Totals is the dashboard headline block.
type Totals struct {
	Users             int     `json:"users"`
	ActiveSubscribers int     `json:"active_subscribers"`
	Sales             float64 `json:"sales"`
}

// MonthlyStats pairs the per-month subscription counts with captured revenue.
type MonthlyStats struct {
	Subscriptions []model.MonthlyCount  `json:"subscriptions"`
	Sales         []model.MonthlyAmount `json:"sales"`
}

type StatsUseCase interface {
	Totals(ctx context.Context) (*Totals, error)
	Monthly(ctx context.Context, months int) (*MonthlyStats, error)
}

type statsUC struct {
	users repository.UserRepository
	subs  repository.SubscriptionRepository
	txs   repository.TransactionRepository
	log   *zerolog.Logger
}

func NewStatsUseCase(
	users repository.UserRepository,
	subs repository.SubscriptionRepository,
	txs repository.TransactionRepository,
	logger *zerolog.Logger,
) *statsUC {
	l := logger.With().Str("component", "StatsUC").Logger()
	return &statsUC{users: users, subs: subs, txs: txs, log: &l}
}

func (s *statsUC) Totals(ctx context.Context) (*Totals, error) {
	users, err := s.users.Count(ctx, nil)
	if err != nil {
		return nil, err
	}
	active, err := s.subs.CountDistinctActiveUsers(ctx, nil)
	if err != nil {
		return nil, err
	}
	sales, err := s.txs.SumCaptured(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Totals{Users: users, ActiveSubscribers: active, Sales: sales}, nil
}

func (s *statsUC) Monthly(ctx context.Context, months int) (*MonthlyStats, error) {
	if months <= 0 {
		months = 12
	}
	subs, err := s.subs.MonthlyCounts(ctx, nil, months)
	if err != nil {
		return nil, err
	}
	sales, err := s.txs.MonthlyCapturedAmounts(ctx, nil, months)
	if err != nil {
		return nil, err
	}
	return &MonthlyStats{Subscriptions: subs, Sales: sales}, nil
}
