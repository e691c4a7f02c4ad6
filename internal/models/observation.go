package models

import (
	"net/url"
	"time"
)

// Observation is a teacher's behavioural note about a student.
type Observation struct {
	ID         string    `json:"id"`
	StudentID  string    `json:"student_id"`
	ObserverID string    `json:"observer_id,omitempty"`
	Category   string    `json:"category"`
	Severity   string    `json:"severity"`
	Note       string    `json:"note"`
	ObservedAt time.Time `json:"observed_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// ObservationFilter lists observations.
type ObservationFilter struct {
	Page
	StudentID string     `json:"student_id"`
	Category  string     `json:"category"`
	Severity  string     `json:"severity"`
	From      *time.Time `json:"from"`
	To        *time.Time `json:"to"`
}

func (f ObservationFilter) Values() url.Values {
	v := url.Values{}
	f.Page.apply(v)
	setString(v, "student_id", f.StudentID)
	setString(v, "category", f.Category)
	setString(v, "severity", f.Severity)
	setDate(v, "from", f.From)
	setDate(v, "to", f.To)
	return v
}

// CreateObservationRequest records an observation.
type CreateObservationRequest struct {
	StudentID  string     `json:"student_id" validate:"required"`
	Category   string     `json:"category" validate:"required"`
	Severity   string     `json:"severity" validate:"required,oneof=low medium high"`
	Note       string     `json:"note" validate:"required"`
	ObservedAt *time.Time `json:"observed_at,omitempty"`
}

// UpdateObservationRequest edits an observation.
type UpdateObservationRequest struct {
	Category string `json:"category,omitempty"`
	Severity string `json:"severity,omitempty" validate:"omitempty,oneof=low medium high"`
	Note     string `json:"note,omitempty"`
}
