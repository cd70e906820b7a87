package model

import "time"

type Category struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	ThumbnailPath string    `json:"thumbnail_path,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type TrackStatus string

const (
	TrackStatusPublished TrackStatus = "published"
	TrackStatusDraft     TrackStatus = "draft"
)

// Track is a single audio item. Price is stored in paise (minor units);
// zero price means the track is free.
type Track struct {
	ID            int64       `json:"id"`
	CategoryID    int64       `json:"category_id"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	ThumbnailPath string      `json:"thumbnail_path,omitempty"`
	MP3Path       string      `json:"mp3_path,omitempty"`
	PricePaise    int64       `json:"price_paise"`
	Status        TrackStatus `json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
}

func (t *Track) IsFree() bool { return t.PricePaise == 0 }

// PriceMajor converts the stored paise price to rupees.
func (t *Track) PriceMajor() float64 { return float64(t.PricePaise) / 100 }
