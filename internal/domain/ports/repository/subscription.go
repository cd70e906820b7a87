package repository

import (
	"context"
	"time"

	"audio-track-subscription/internal/domain/model"
)

type SubscriptionRepository interface {
	// Grant creates or refreshes the (user, track) access row: a new row gets
	// status=active with the given window; an existing row is reactivated and
	// its end date extended to GREATEST(current, end), never shortened.
	Grant(ctx context.Context, tx Tx, userID, trackID int64, start, end time.Time) error
	// FindLatestByUserAndTrack returns the most recently created row linked by
	// track id, or ErrNotFound.
	FindLatestByUserAndTrack(ctx context.Context, tx Tx, userID, trackID int64) (*model.Subscription, error)
	// FindLatestByUserAndTrackTitle matches the legacy free-text track column.
	//
	// Deprecated: compatibility shim for pre-track_id schemas; title matches are
	// ambiguous when two tracks share a title.
	FindLatestByUserAndTrackTitle(ctx context.Context, tx Tx, userID int64, title string) (*model.Subscription, error)
	// HasActiveOnDate reports whether the user holds any active, date-valid
	// subscription on the given day.
	HasActiveOnDate(ctx context.Context, tx Tx, userID int64, day time.Time) (bool, error)
	// ActiveTrackIDs lists distinct track ids under active subscriptions whose
	// end date is strictly after the given day (or unbounded).
	ActiveTrackIDs(ctx context.Context, tx Tx, userID int64, day time.Time) ([]int64, error)

	// Admin surface.
	Save(ctx context.Context, tx Tx, s *model.Subscription) error
	Delete(ctx context.Context, tx Tx, id int64) error
	List(ctx context.Context, tx Tx, offset, limit int) ([]*model.Subscription, error)
	Count(ctx context.Context, tx Tx) (int, error)
	CountDistinctActiveUsers(ctx context.Context, tx Tx) (int, error)
	MonthlyCounts(ctx context.Context, tx Tx, months int) ([]model.MonthlyCount, error)

	// ExpireOverdue flips stored active rows whose end date passed to expired,
	// returning the number touched. The stored status remains a hint; the
	// resolver stays authoritative.
	ExpireOverdue(ctx context.Context, tx Tx, now time.Time) (int64, error)
}
