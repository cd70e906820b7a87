package model

import "time"

type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

// DerivedStatus is the effective status computed against "now". It is a
// projection of the stored row and is never persisted.
type DerivedStatus string

const (
	DerivedStatusActive        DerivedStatus = "active"
	DerivedStatusExpired       DerivedStatus = "expired"
	DerivedStatusCancelled     DerivedStatus = "cancelled"
	DerivedStatusNotYetStarted DerivedStatus = "not_yet_started"
	DerivedStatusNotSubscribed DerivedStatus = "not_subscribed"
)

// Subscription is one (user, track) access grant. TrackID is nil on rows
// written by the legacy schema, which keyed grants on the free-text TrackTitle.
// Nil dates mean unbounded. The stored Status is a hint only; effective access
// is always derived at read time (see Derive).
type Subscription struct {
	ID         int64              `json:"id"`
	UserID     int64              `json:"user_id"`
	TrackID    *int64             `json:"track_id"`
	TrackTitle string             `json:"track_title,omitempty"`
	Status     SubscriptionStatus `json:"status"`
	StartDate  *time.Time         `json:"start_date"`
	EndDate    *time.Time         `json:"end_date"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// DateOnly truncates t to its calendar date in t's location.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Derive computes the effective status as of now. All comparisons are
// calendar-date only; the end date is inclusive.
//
// Precedence: stored cancelled wins over any date logic; then an end date in
// the past means expired; otherwise a future start date means not_yet_started,
// else active.
func (s *Subscription) Derive(now time.Time) DerivedStatus {
	if s == nil {
		return DerivedStatusNotSubscribed
	}
	if s.Status == SubscriptionStatusCancelled {
		return DerivedStatusCancelled
	}
	today := DateOnly(now)
	if s.EndDate == nil || !DateOnly(*s.EndDate).Before(today) {
		if s.StartDate == nil || !DateOnly(*s.StartDate).After(today) {
			return DerivedStatusActive
		}
		return DerivedStatusNotYetStarted
	}
	return DerivedStatusExpired
}

// CoversDate reports whether the subscription grants access on the given day.
func (s *Subscription) CoversDate(now time.Time) bool {
	return s.Derive(now) == DerivedStatusActive
}
