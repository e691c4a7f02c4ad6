package models

import (
	"net/url"
	"time"
)

// Webinar is a scheduled group session for students or parents.
type Webinar struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Speaker     string    `json:"speaker"`
	Audience    string    `json:"audience"`
	StartsAt    time.Time `json:"starts_at"`
	DurationMin int       `json:"duration_min"`
	Capacity    int       `json:"capacity"`
	Registered  int       `json:"registered"`
	JoinURL     string    `json:"join_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// WebinarFilter lists webinars.
type WebinarFilter struct {
	Page
	Audience string `json:"audience"`
	Upcoming *bool  `json:"upcoming"`
}

func (f WebinarFilter) Values() url.Values {
	v := url.Values{}
	f.Page.apply(v)
	setString(v, "audience", f.Audience)
	setBool(v, "upcoming", f.Upcoming)
	return v
}

// CreateWebinarRequest schedules a webinar.
type CreateWebinarRequest struct {
	Title       string    `json:"title" validate:"required"`
	Speaker     string    `json:"speaker" validate:"required"`
	Audience    string    `json:"audience" validate:"required,oneof=students parents staff"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	DurationMin int       `json:"duration_min" validate:"required,gt=0"`
	Capacity    int       `json:"capacity" validate:"gte=0"`
	JoinURL     string    `json:"join_url,omitempty" validate:"omitempty,url"`
}

// UpdateWebinarRequest edits a webinar.
type UpdateWebinarRequest struct {
	Title       string     `json:"title,omitempty"`
	Speaker     string     `json:"speaker,omitempty"`
	StartsAt    *time.Time `json:"starts_at,omitempty"`
	DurationMin int        `json:"duration_min,omitempty" validate:"gte=0"`
	Capacity    int        `json:"capacity,omitempty" validate:"gte=0"`
	JoinURL     string     `json:"join_url,omitempty" validate:"omitempty,url"`
}
