package models

import (
	"net/url"
	"time"
)

// Risk alert statuses.
const (
	AlertStatusOpen         = "open"
	AlertStatusAcknowledged = "acknowledged"
	AlertStatusResolved     = "resolved"
)

// RiskAlert flags a student whose signals crossed a threshold.
type RiskAlert struct {
	ID             string     `json:"id"`
	StudentID      string     `json:"student_id"`
	StudentName    string     `json:"student_name,omitempty"`
	Level          string     `json:"level"`
	Source         string     `json:"source"`
	Reason         string     `json:"reason"`
	Status         string     `json:"status"`
	Resolution     string     `json:"resolution,omitempty"`
	AcknowledgedBy string     `json:"acknowledged_by,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
}

// AlertFilter lists risk alerts.
type AlertFilter struct {
	Page
	StudentID string `json:"student_id"`
	Level     string `json:"level"`
	Status    string `json:"status"`
}

func (f AlertFilter) Values() url.Values {
	v := url.Values{}
	f.Page.apply(v)
	setString(v, "student_id", f.StudentID)
	setString(v, "level", f.Level)
	setString(v, "status", f.Status)
	return v
}

// CreateAlertRequest raises an alert manually.
type CreateAlertRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	Level     string `json:"level" validate:"required,oneof=low medium high critical"`
	Reason    string `json:"reason" validate:"required"`
	Source    string `json:"source,omitempty"`
}

// UpdateAlertRequest edits an alert.
type UpdateAlertRequest struct {
	Level  string `json:"level,omitempty" validate:"omitempty,oneof=low medium high critical"`
	Reason string `json:"reason,omitempty"`
}

// ResolveAlertRequest closes an alert.
type ResolveAlertRequest struct {
	Resolution string `json:"resolution" validate:"required"`
}
