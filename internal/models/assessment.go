package models

import (
	"net/url"
	"time"
)

// Assessment is a screening instrument (questionnaire) students can be
// assigned.
type Assessment struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Type          string    `json:"type"`
	Description   string    `json:"description,omitempty"`
	QuestionCount int       `json:"question_count"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AssessmentAssignment links an assessment to a student.
type AssessmentAssignment struct {
	ID           string     `json:"id"`
	AssessmentID string     `json:"assessment_id"`
	StudentID    string     `json:"student_id"`
	Status       string     `json:"status"`
	Score        *float64   `json:"score,omitempty"`
	DueDate      string     `json:"due_date,omitempty"`
	AssignedAt   time.Time  `json:"assigned_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// AssessmentFilter lists assessments.
type AssessmentFilter struct {
	Page
	Type   string `json:"type"`
	Active *bool  `json:"active"`
}

func (f AssessmentFilter) Values() url.Values {
	v := url.Values{}
	f.Page.apply(v)
	setString(v, "type", f.Type)
	setBool(v, "active", f.Active)
	return v
}

// AssignmentFilter lists assignments.
type AssignmentFilter struct {
	Page
	AssessmentID string `json:"assessment_id"`
	StudentID    string `json:"student_id"`
	Status       string `json:"status"`
}

func (f AssignmentFilter) Values() url.Values {
	v := url.Values{}
	f.Page.apply(v)
	setString(v, "assessment_id", f.AssessmentID)
	setString(v, "student_id", f.StudentID)
	setString(v, "status", f.Status)
	return v
}

// CreateAssessmentRequest registers an instrument.
type CreateAssessmentRequest struct {
	Title         string `json:"title" validate:"required"`
	Type          string `json:"type" validate:"required"`
	Description   string `json:"description,omitempty"`
	QuestionCount int    `json:"question_count" validate:"gte=0"`
}

// UpdateAssessmentRequest edits an instrument.
type UpdateAssessmentRequest struct {
	Title         string `json:"title,omitempty"`
	Description   string `json:"description,omitempty"`
	QuestionCount int    `json:"question_count,omitempty" validate:"gte=0"`
	Active        *bool  `json:"active,omitempty"`
}

// AssignAssessmentRequest assigns an assessment to students.
type AssignAssessmentRequest struct {
	StudentIDs []string `json:"student_ids" validate:"required,min=1,dive,required"`
	DueDate    string   `json:"due_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}
