package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"audio-track-subscription/internal/domain"
	"audio-track-subscription/internal/domain/model"
	"audio-track-subscription/internal/domain/ports/repository"
)

// Compile-time check
var _ CatalogUseCase = (*catalogUC)(nil)

// TrackAccess is the access decision for one track request.
type TrackAccess struct {
	Track *model.Track
	// Free is set for zero-price tracks, which never require a subscription.
	Free bool
	// NeedSubscription is set when the caller may not stream the track; the
	// returned Track then has its media path cleared.
	NeedSubscription bool
}

type CatalogUseCase interface {
	ListCategories(ctx context.Context) ([]*model.Category, error)
	// CategoryTracks returns the category and its tracks, newest first.
	CategoryTracks(ctx context.Context, categoryID int64) (*model.Category, []*model.Track, error)
	// GetTrack applies the access rule: free tracks stream for anyone; paid
	// tracks stream only for callers holding an active date-valid
	// subscription. userID is nil for anonymous callers.
	GetTrack(ctx context.Context, trackID int64, userID *int64) (*TrackAccess, error)
	// ActiveTracks lists the tracks the user currently holds access to.
	ActiveTracks(ctx context.Context, userID int64) ([]*model.Track, error)
}

type catalogUC struct {
	categories repository.CategoryRepository
	tracks     repository.TrackRepository
	subs       repository.SubscriptionRepository
	log        *zerolog.Logger
}

func NewCatalogUseCase(categories repository.CategoryRepository, tracks repository.TrackRepository, subs repository.SubscriptionRepository, logger *zerolog.Logger) *catalogUC {
	l := logger.With().Str("component", "CatalogUC").Logger()
	return &catalogUC{categories: categories, tracks: tracks, subs: subs, log: &l}
}

func (u *catalogUC) ListCategories(ctx context.Context) ([]*model.Category, error) {
	return u.categories.ListAll(ctx, nil)
}

func (u *catalogUC) CategoryTracks(ctx context.Context, categoryID int64) (*model.Category, []*model.Track, error) {
	if categoryID <= 0 {
		return nil, nil, domain.ErrInvalidArgument
	}
	cat, err := u.categories.FindByID(ctx, nil, categoryID)
	if err != nil {
		return nil, nil, err
	}
	tracks, err := u.tracks.ListByCategory(ctx, nil, categoryID)
	if err != nil {
		return nil, nil, err
	}
	return cat, tracks, nil
}

func (u *catalogUC) GetTrack(ctx context.Context, trackID int64, userID *int64) (*TrackAccess, error) {
	if trackID <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	track, err := u.tracks.FindByID(ctx, nil, trackID)
	if err != nil {
		return nil, err
	}

	if track.IsFree() {
		return &TrackAccess{Track: track, Free: true}, nil
	}

	if userID != nil {
		ok, err := u.subs.HasActiveOnDate(ctx, nil, *userID, time.Now())
		if err != nil {
			return nil, err
		}
		if ok {
			return &TrackAccess{Track: track}, nil
		}
	}

	// Locked: hand back the summary without the media path.
	locked := *track
	locked.MP3Path = ""
	return &TrackAccess{Track: &locked, NeedSubscription: true}, nil
}

func (u *catalogUC) ActiveTracks(ctx context.Context, userID int64) ([]*model.Track, error) {
	if userID <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	ids, err := u.subs.ActiveTrackIDs(ctx, nil, userID, time.Now())
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return u.tracks.ListByIDs(ctx, nil, ids)
}
