package models

import (
	"net/url"
	"time"
)

// AnalyticsFilter scopes analytics to a period.
type AnalyticsFilter struct {
	From  *time.Time `json:"from"`
	To    *time.Time `json:"to"`
	Grade string     `json:"grade"`
}

func (f AnalyticsFilter) Values() url.Values {
	v := url.Values{}
	setDate(v, "from", f.From)
	setDate(v, "to", f.To)
	setString(v, "grade", f.Grade)
	return v
}

// DashboardSummary aggregates the headline counters.
type DashboardSummary struct {
	TotalStudents     int            `json:"total_students"`
	OpenCases         int            `json:"open_cases"`
	ActiveAlerts      int            `json:"active_alerts"`
	UpcomingBookings  int            `json:"upcoming_bookings"`
	PendingAssessment int            `json:"pending_assessments"`
	RiskDistribution  map[string]int `json:"risk_distribution,omitempty"`
	GeneratedAt       time.Time      `json:"generated_at"`
}

// TrendPoint is one bucket of a time series.
type TrendPoint struct {
	Period string  `json:"period"`
	Label  string  `json:"label,omitempty"`
	Value  float64 `json:"value"`
}

// CompletionRate summarises assignment completion for one assessment.
type CompletionRate struct {
	AssessmentID string  `json:"assessment_id"`
	Title        string  `json:"title"`
	Assigned     int     `json:"assigned"`
	Completed    int     `json:"completed"`
	Rate         float64 `json:"rate"`
}
