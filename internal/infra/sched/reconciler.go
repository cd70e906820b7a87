package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"audio-track-subscription/internal/domain/ports/repository"
	"audio-track-subscription/internal/infra/metrics"
)

// TransactionReconciler sweeps orders stuck in transit. An order that never
// produced a redirect capture or a webhook within staleAfter is considered
// abandoned and marked failed so it stops polluting in-transit listings.
// Captured rows are never touched.
type TransactionReconciler struct {
	txs        repository.TransactionRepository
	interval   time.Duration
	staleAfter time.Duration
	log        *zerolog.Logger
}

func NewTransactionReconciler(txs repository.TransactionRepository, interval, staleAfter time.Duration, logger *zerolog.Logger) *TransactionReconciler {
	if interval <= 0 {
		interval = time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 30 * time.Minute
	}
	wLog := logger.With().Str("component", "TransactionReconciler").Logger()
	return &TransactionReconciler{txs: txs, interval: interval, staleAfter: staleAfter, log: &wLog}
}

func (w *TransactionReconciler) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting transaction reconciler")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping transaction reconciler")
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *TransactionReconciler) tick(ctx context.Context) {
	cutoff := time.Now().Add(-w.staleAfter)
	n, err := w.txs.MarkStaleFailed(ctx, nil, cutoff)
	if err != nil {
		w.log.Error().Err(err).Msg("reconciler sweep error")
		return
	}
	if n > 0 {
		metrics.AddTransactionsReconciled(n)
		w.log.Info().Int64("count", n).Msg("stale in-transit orders marked failed")
	}
}
