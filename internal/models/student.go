package models

import (
	"net/url"
	"time"
)

// Student represents a learner followed by the wellness team.
type Student struct {
	ID            string    `json:"id"`
	SchoolID      string    `json:"school_id,omitempty"`
	StudentNumber string    `json:"student_number"`
	Name          string    `json:"name"`
	Grade         string    `json:"grade"`
	ClassName     string    `json:"class_name"`
	Gender        string    `json:"gender"`
	DateOfBirth   string    `json:"date_of_birth,omitempty"`
	GuardianName  string    `json:"guardian_name,omitempty"`
	GuardianPhone string    `json:"guardian_phone,omitempty"`
	RiskLevel     string    `json:"risk_level"`
	CounselorID   string    `json:"counselor_id,omitempty"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Page
	Grade       string `json:"grade"`
	ClassName   string `json:"class_name"`
	RiskLevel   string `json:"risk_level"`
	CounselorID string `json:"counselor_id"`
	Active      *bool  `json:"active"`
}

func (f StudentFilter) Values() url.Values {
	v := url.Values{}
	f.Page.apply(v)
	setString(v, "grade", f.Grade)
	setString(v, "class_name", f.ClassName)
	setString(v, "risk_level", f.RiskLevel)
	setString(v, "counselor_id", f.CounselorID)
	setBool(v, "active", f.Active)
	return v
}

// CreateStudentRequest holds payload for registering students.
type CreateStudentRequest struct {
	StudentNumber string `json:"student_number" validate:"required"`
	Name          string `json:"name" validate:"required"`
	Grade         string `json:"grade" validate:"required"`
	ClassName     string `json:"class_name"`
	Gender        string `json:"gender" validate:"omitempty,oneof=male female"`
	DateOfBirth   string `json:"date_of_birth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	GuardianName  string `json:"guardian_name,omitempty"`
	GuardianPhone string `json:"guardian_phone,omitempty"`
	CounselorID   string `json:"counselor_id,omitempty"`
}

// UpdateStudentRequest holds payload for updating students.
type UpdateStudentRequest struct {
	Name          string `json:"name,omitempty"`
	Grade         string `json:"grade,omitempty"`
	ClassName     string `json:"class_name,omitempty"`
	Gender        string `json:"gender,omitempty" validate:"omitempty,oneof=male female"`
	DateOfBirth   string `json:"date_of_birth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	GuardianName  string `json:"guardian_name,omitempty"`
	GuardianPhone string `json:"guardian_phone,omitempty"`
	RiskLevel     string `json:"risk_level,omitempty" validate:"omitempty,oneof=low medium high critical"`
	CounselorID   string `json:"counselor_id,omitempty"`
	Active        *bool  `json:"active,omitempty"`
}
