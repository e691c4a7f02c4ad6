package models

import (
	"net/url"
	"time"
)

// Case statuses.
const (
	CaseStatusOpen       = "open"
	CaseStatusInProgress = "in_progress"
	CaseStatusClosed     = "closed"
)

// Case is a counselling case opened for a student.
type Case struct {
	ID          string     `json:"id"`
	StudentID   string     `json:"student_id"`
	StudentName string     `json:"student_name,omitempty"`
	CounselorID string     `json:"counselor_id,omitempty"`
	Title       string     `json:"title"`
	Category    string     `json:"category"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	Description string     `json:"description,omitempty"`
	Resolution  string     `json:"resolution,omitempty"`
	Notes       []CaseNote `json:"notes,omitempty"`
	OpenedAt    time.Time  `json:"opened_at"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CaseNote is a dated entry in a case log.
type CaseNote struct {
	ID        string    `json:"id"`
	CaseID    string    `json:"case_id"`
	AuthorID  string    `json:"author_id,omitempty"`
	Body      string    `json:"body"`
	Private   bool      `json:"private"`
	CreatedAt time.Time `json:"created_at"`
}

// CaseFilter lists cases.
type CaseFilter struct {
	Page
	StudentID   string `json:"student_id"`
	CounselorID string `json:"counselor_id"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
}

func (f CaseFilter) Values() url.Values {
	v := url.Values{}
	f.Page.apply(v)
	setString(v, "student_id", f.StudentID)
	setString(v, "counselor_id", f.CounselorID)
	setString(v, "status", f.Status)
	setString(v, "priority", f.Priority)
	setString(v, "category", f.Category)
	return v
}

// CreateCaseRequest opens a case.
type CreateCaseRequest struct {
	StudentID   string `json:"student_id" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Category    string `json:"category" validate:"required"`
	Priority    string `json:"priority" validate:"required,oneof=low medium high urgent"`
	Description string `json:"description,omitempty"`
	CounselorID string `json:"counselor_id,omitempty"`
}

// UpdateCaseRequest edits an open case.
type UpdateCaseRequest struct {
	Title       string `json:"title,omitempty"`
	Category    string `json:"category,omitempty"`
	Priority    string `json:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent"`
	Status      string `json:"status,omitempty" validate:"omitempty,oneof=open in_progress"`
	Description string `json:"description,omitempty"`
	CounselorID string `json:"counselor_id,omitempty"`
}

// CloseCaseRequest closes a case with an outcome.
type CloseCaseRequest struct {
	Resolution string `json:"resolution" validate:"required"`
}

// CaseNoteRequest appends a note to a case.
type CaseNoteRequest struct {
	Body    string `json:"body" validate:"required"`
	Private bool   `json:"private"`
}
