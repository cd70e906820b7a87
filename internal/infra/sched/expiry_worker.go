package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"audio-track-subscription/internal/domain/ports/repository"
	"audio-track-subscription/internal/infra/metrics"
)

// ExpiryWorker periodically flips overdue active subscription rows to expired.
// The stored status is a convenience for listings; the status resolver derives
// the authoritative answer from the dates regardless.
type ExpiryWorker struct {
	interval time.Duration
	subs     repository.SubscriptionRepository
	log      *zerolog.Logger
}

func NewExpiryWorker(interval time.Duration, subs repository.SubscriptionRepository, logger *zerolog.Logger) *ExpiryWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	wLog := logger.With().Str("component", "ExpiryWorker").Logger()
	return &ExpiryWorker{interval: interval, subs: subs, log: &wLog}
}

func (w *ExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting expiry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping expiry worker")
			return ctx.Err()
		case <-ticker.C:
			n, err := w.subs.ExpireOverdue(ctx, nil, time.Now())
			if err != nil {
				w.log.Error().Err(err).Msg("expiry worker error")
				continue
			}
			if n > 0 {
				metrics.AddSubscriptionsExpired(n)
				w.log.Info().Int64("count", n).Msg("overdue subscriptions expired")
			}
		}
	}
}
