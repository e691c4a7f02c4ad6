package service

import (
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Set groups every service bound to one API client.
type Set struct {
	Auth         *AuthService
	Students     *StudentService
	Cases        *CaseService
	Goals        *GoalService
	Assessments  *AssessmentService
	Observations *ObservationService
	Alerts       *AlertService
	Bookings     *BookingService
	Webinars     *WebinarService
	Users        *UserService
	School       *SchoolService
	Analytics    *AnalyticsService
}

// NewSet builds all services sharing one validator and logger.
func NewSet(client apiClient, validate *validator.Validate, logger *zap.Logger) *Set {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Set{
		Auth:         NewAuthService(client, validate, logger),
		Students:     NewStudentService(client, validate, logger),
		Cases:        NewCaseService(client, validate, logger),
		Goals:        NewGoalService(client, validate, logger),
		Assessments:  NewAssessmentService(client, validate, logger),
		Observations: NewObservationService(client, validate, logger),
		Alerts:       NewAlertService(client, validate, logger),
		Bookings:     NewBookingService(client, validate, logger),
		Webinars:     NewWebinarService(client, validate, logger),
		Users:        NewUserService(client, validate, logger),
		School:       NewSchoolService(client, validate, logger),
		Analytics:    NewAnalyticsService(client, logger),
	}
}
