package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"audio-track-subscription/internal/domain"
	"audio-track-subscription/internal/domain/model"
	"audio-track-subscription/internal/domain/ports/repository"
)

// Compile-time check
var _ StatusUseCase = (*statusUC)(nil)

// StatusResult is the derived subscription state for one (user, track) pair.
type StatusResult struct {
	Status       model.DerivedStatus `json:"status"`
	UserID       int64               `json:"user_id"`
	TrackID      int64               `json:"track_id"`
	TrackTitle   string              `json:"track_title"`
	Subscription *model.Subscription `json:"subscription,omitempty"`
}

type StatusUseCase interface {
	Resolve(ctx context.Context, userID, trackID int64) (*StatusResult, error)
}

type statusUC struct {
	subs   repository.SubscriptionRepository
	tracks repository.TrackRepository
	// legacyTitle selects the pre-track_id schema where grants are matched on
	// the track title. Fixed at startup, never probed per request.
	legacyTitle bool
	log         *zerolog.Logger
}

func NewStatusUseCase(subs repository.SubscriptionRepository, tracks repository.TrackRepository, legacyTitle bool, logger *zerolog.Logger) *statusUC {
	l := logger.With().Str("component", "StatusUC").Logger()
	return &statusUC{subs: subs, tracks: tracks, legacyTitle: legacyTitle, log: &l}
}

func (u *statusUC) Resolve(ctx context.Context, userID, trackID int64) (*StatusResult, error) {
	if userID <= 0 || trackID <= 0 {
		return nil, domain.ErrInvalidArgument
	}

	track, err := u.tracks.FindByID(ctx, nil, trackID)
	if err != nil {
		return nil, err
	}

	var sub *model.Subscription
	if u.legacyTitle {
		sub, err = u.subs.FindLatestByUserAndTrackTitle(ctx, nil, userID, track.Title)
	} else {
		sub, err = u.subs.FindLatestByUserAndTrack(ctx, nil, userID, trackID)
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	res := &StatusResult{
		UserID:     userID,
		TrackID:    trackID,
		TrackTitle: track.Title,
	}
	if sub == nil {
		res.Status = model.DerivedStatusNotSubscribed
		return res, nil
	}

	// One instant per resolution; every date comparison below sees the same
	// "today".
	res.Status = sub.Derive(time.Now())
	res.Subscription = sub
	return res, nil
}
