package models

import (
	"net/url"
	"time"
)

// Goal is a measurable target attached to a case.
type Goal struct {
	ID          string    `json:"id"`
	CaseID      string    `json:"case_id"`
	StudentID   string    `json:"student_id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Progress    int       `json:"progress"`
	Status      string    `json:"status"`
	DueDate     string    `json:"due_date,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GoalFilter lists goals.
type GoalFilter struct {
	Page
	CaseID    string `json:"case_id"`
	StudentID string `json:"student_id"`
	Status    string `json:"status"`
}

func (f GoalFilter) Values() url.Values {
	v := url.Values{}
	f.Page.apply(v)
	setString(v, "case_id", f.CaseID)
	setString(v, "student_id", f.StudentID)
	setString(v, "status", f.Status)
	return v
}

// CreateGoalRequest adds a goal to a case.
type CreateGoalRequest struct {
	CaseID      string `json:"case_id" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description,omitempty"`
	DueDate     string `json:"due_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateGoalRequest edits a goal.
type UpdateGoalRequest struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty" validate:"omitempty,oneof=not_started in_progress achieved dropped"`
	DueDate     string `json:"due_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// GoalProgressRequest records progress as a percentage.
type GoalProgressRequest struct {
	Progress int    `json:"progress" validate:"min=0,max=100"`
	Note     string `json:"note,omitempty"`
}
