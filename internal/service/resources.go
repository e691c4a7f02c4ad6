package service

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/wellness-client/internal/api"
	"github.com/noah-isme/wellness-client/internal/models"
)

// Backend collection paths.
const (
	PathStudents     = "/students"
	PathCases        = "/cases"
	PathGoals        = "/goals"
	PathAssessments  = "/assessments"
	PathAssignments  = "/assessment-assignments"
	PathObservations = "/observations"
	PathAlerts       = "/alerts"
	PathBookings     = "/bookings"
	PathWebinars     = "/webinars"
	PathUsers        = "/users"
)

// StudentService manages student records.
type StudentService struct {
	*Resource[models.Student, models.StudentFilter, models.CreateStudentRequest, models.UpdateStudentRequest]
}

// NewStudentService constructs the student service.
func NewStudentService(client apiClient, validate *validator.Validate, logger *zap.Logger) *StudentService {
	return &StudentService{NewResource[models.Student, models.StudentFilter, models.CreateStudentRequest, models.UpdateStudentRequest](client, PathStudents, "student", validate, logger)}
}

// CaseService manages counselling cases.
type CaseService struct {
	*Resource[models.Case, models.CaseFilter, models.CreateCaseRequest, models.UpdateCaseRequest]
}

// NewCaseService constructs the case service.
func NewCaseService(client apiClient, validate *validator.Validate, logger *zap.Logger) *CaseService {
	return &CaseService{NewResource[models.Case, models.CaseFilter, models.CreateCaseRequest, models.UpdateCaseRequest](client, PathCases, "case", validate, logger)}
}

// Close marks a case closed with its resolution.
func (s *CaseService) Close(ctx context.Context, id string, req models.CloseCaseRequest) (*models.Case, error) {
	var out models.Case
	if err := s.action(ctx, http.MethodPost, id, "close", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddNote appends a note to the case log.
func (s *CaseService) AddNote(ctx context.Context, id string, req models.CaseNoteRequest) (*models.CaseNote, error) {
	var out models.CaseNote
	if err := s.action(ctx, http.MethodPost, id, "notes", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GoalService manages case goals.
type GoalService struct {
	*Resource[models.Goal, models.GoalFilter, models.CreateGoalRequest, models.UpdateGoalRequest]
}

// NewGoalService constructs the goal service.
func NewGoalService(client apiClient, validate *validator.Validate, logger *zap.Logger) *GoalService {
	return &GoalService{NewResource[models.Goal, models.GoalFilter, models.CreateGoalRequest, models.UpdateGoalRequest](client, PathGoals, "goal", validate, logger)}
}

// ListByCase returns the goals attached to a case.
func (s *GoalService) ListByCase(ctx context.Context, caseID string) ([]models.Goal, error) {
	if err := s.requireID(caseID); err != nil {
		return nil, err
	}
	var goals []models.Goal
	if err := s.client.Do(ctx, api.Request{Method: http.MethodGet, Path: PathCases + "/" + escape(caseID) + "/goals"}, &goals); err != nil {
		return nil, err
	}
	if goals == nil {
		goals = []models.Goal{}
	}
	return goals, nil
}

// UpdateProgress records progress on a goal.
func (s *GoalService) UpdateProgress(ctx context.Context, id string, req models.GoalProgressRequest) (*models.Goal, error) {
	var out models.Goal
	if err := s.action(ctx, http.MethodPatch, id, "progress", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AssessmentService manages screening instruments and their assignments.
type AssessmentService struct {
	*Resource[models.Assessment, models.AssessmentFilter, models.CreateAssessmentRequest, models.UpdateAssessmentRequest]
}

// NewAssessmentService constructs the assessment service.
func NewAssessmentService(client apiClient, validate *validator.Validate, logger *zap.Logger) *AssessmentService {
	return &AssessmentService{NewResource[models.Assessment, models.AssessmentFilter, models.CreateAssessmentRequest, models.UpdateAssessmentRequest](client, PathAssessments, "assessment", validate, logger)}
}

// Assign assigns an assessment to students.
func (s *AssessmentService) Assign(ctx context.Context, id string, req models.AssignAssessmentRequest) ([]models.AssessmentAssignment, error) {
	var out []models.AssessmentAssignment
	if err := s.action(ctx, http.MethodPost, id, "assign", req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAssignments lists assignments across assessments.
func (s *AssessmentService) ListAssignments(ctx context.Context, filter models.AssignmentFilter) ([]models.AssessmentAssignment, error) {
	var out []models.AssessmentAssignment
	if err := s.client.Do(ctx, api.Request{Method: http.MethodGet, Path: PathAssignments, Query: filter.Values()}, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.AssessmentAssignment{}
	}
	return out, nil
}

// ObservationService manages teacher observations.
type ObservationService struct {
	*Resource[models.Observation, models.ObservationFilter, models.CreateObservationRequest, models.UpdateObservationRequest]
}

// NewObservationService constructs the observation service.
func NewObservationService(client apiClient, validate *validator.Validate, logger *zap.Logger) *ObservationService {
	return &ObservationService{NewResource[models.Observation, models.ObservationFilter, models.CreateObservationRequest, models.UpdateObservationRequest](client, PathObservations, "observation", validate, logger)}
}

// AlertService manages risk alerts.
type AlertService struct {
	*Resource[models.RiskAlert, models.AlertFilter, models.CreateAlertRequest, models.UpdateAlertRequest]
}

// NewAlertService constructs the risk alert service.
func NewAlertService(client apiClient, validate *validator.Validate, logger *zap.Logger) *AlertService {
	return &AlertService{NewResource[models.RiskAlert, models.AlertFilter, models.CreateAlertRequest, models.UpdateAlertRequest](client, PathAlerts, "alert", validate, logger)}
}

// Acknowledge marks an alert as seen.
func (s *AlertService) Acknowledge(ctx context.Context, id string) (*models.RiskAlert, error) {
	var out models.RiskAlert
	if err := s.action(ctx, http.MethodPost, id, "acknowledge", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Resolve closes an alert.
func (s *AlertService) Resolve(ctx context.Context, id string, req models.ResolveAlertRequest) (*models.RiskAlert, error) {
	var out models.RiskAlert
	if err := s.action(ctx, http.MethodPost, id, "resolve", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BookingService manages counselling appointments.
type BookingService struct {
	*Resource[models.Booking, models.BookingFilter, models.CreateBookingRequest, models.UpdateBookingRequest]
}

// NewBookingService constructs the booking service.
func NewBookingService(client apiClient, validate *validator.Validate, logger *zap.Logger) *BookingService {
	return &BookingService{NewResource[models.Booking, models.BookingFilter, models.CreateBookingRequest, models.UpdateBookingRequest](client, PathBookings, "booking", validate, logger)}
}

// Cancel cancels an appointment.
func (s *BookingService) Cancel(ctx context.Context, id string, req models.CancelBookingRequest) (*models.Booking, error) {
	var out models.Booking
	if err := s.action(ctx, http.MethodPost, id, "cancel", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// WebinarService manages webinars.
type WebinarService struct {
	*Resource[models.Webinar, models.WebinarFilter, models.CreateWebinarRequest, models.UpdateWebinarRequest]
}

// NewWebinarService constructs the webinar service.
func NewWebinarService(client apiClient, validate *validator.Validate, logger *zap.Logger) *WebinarService {
	return &WebinarService{NewResource[models.Webinar, models.WebinarFilter, models.CreateWebinarRequest, models.UpdateWebinarRequest](client, PathWebinars, "webinar", validate, logger)}
}

// Register signs the current user up for a webinar.
func (s *WebinarService) Register(ctx context.Context, id string) (*models.Webinar, error) {
	var out models.Webinar
	if err := s.action(ctx, http.MethodPost, id, "register", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
