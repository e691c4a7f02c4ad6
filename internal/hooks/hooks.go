package hooks

import (
	"context"
	"io"
	"strings"

	"github.com/noah-isme/wellness-client/internal/models"
	"github.com/noah-isme/wellness-client/internal/query"
	"github.com/noah-isme/wellness-client/internal/service"
	appErrors "github.com/noah-isme/wellness-client/pkg/errors"
)

// Hooks exposes every resource through the query cache.
type Hooks struct {
	client *query.Client
	auth   *service.AuthService

	Students     *ResourceHooks[models.Student, models.StudentFilter, models.CreateStudentRequest, models.UpdateStudentRequest]
	Cases        *CaseHooks
	Goals        *GoalHooks
	Assessments  *AssessmentHooks
	Observations *ResourceHooks[models.Observation, models.ObservationFilter, models.CreateObservationRequest, models.UpdateObservationRequest]
	Alerts       *AlertHooks
	Bookings     *BookingHooks
	Webinars     *WebinarHooks
	Users        *UserHooks
	School       *SchoolHooks
	Analytics    *AnalyticsHooks
}

// New binds services to client.
func New(client *query.Client, s *service.Set) *Hooks {
	return &Hooks{
		client:       client,
		auth:         s.Auth,
		Students:     NewResourceHooks(client, s.Students.Resource, GroupStudents, "Student", GroupAnalytics),
		Cases:        &CaseHooks{NewResourceHooks(client, s.Cases.Resource, GroupCases, "Case", GroupAnalytics, GroupStudents), s.Cases},
		Goals:        &GoalHooks{NewResourceHooks(client, s.Goals.Resource, GroupGoals, "Goal", GroupCases), s.Goals},
		Assessments:  &AssessmentHooks{NewResourceHooks(client, s.Assessments.Resource, GroupAssessments, "Assessment", GroupAssignments), s.Assessments},
		Observations: NewResourceHooks(client, s.Observations.Resource, GroupObservations, "Observation", GroupStudents),
		Alerts:       &AlertHooks{NewResourceHooks(client, s.Alerts.Resource, GroupAlerts, "Alert", GroupAnalytics), s.Alerts},
		Bookings:     &BookingHooks{NewResourceHooks(client, s.Bookings.Resource, GroupBookings, "Booking", GroupAnalytics), s.Bookings},
		Webinars:     &WebinarHooks{NewResourceHooks(client, s.Webinars.Resource, GroupWebinars, "Webinar"), s.Webinars},
		Users:        &UserHooks{NewResourceHooks(client, s.Users.Resource, GroupUsers, "User"), s.Users},
		School:       &SchoolHooks{client: client, svc: s.School},
		Analytics:    &AnalyticsHooks{client: client, svc: s.Analytics},
	}
}

// Client returns the underlying query cache.
func (h *Hooks) Client() *query.Client { return h.client }

// Login signs in and drops anything cached for a previous user.
func (h *Hooks) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	return mutate(ctx, h.client, GroupUsers, "Signed in", h.auth.Login, models.LoginRequest{Email: email, Password: password}, Groups...)
}

// Logout signs out and invalidates every cached query.
func (h *Hooks) Logout(ctx context.Context) error {
	err := h.auth.Logout(ctx)
	keys := make([]query.Key, 0, len(Groups))
	for _, g := range Groups {
		keys = append(keys, query.NewKey(g))
	}
	h.client.Invalidate(ctx, keys...)
	if err != nil {
		h.client.Notifier().Error(appErrors.Message(err))
		return err
	}
	h.client.Notifier().Success("Signed out")
	return nil
}

// CaseHooks adds case workflow writes.
type CaseHooks struct {
	*ResourceHooks[models.Case, models.CaseFilter, models.CreateCaseRequest, models.UpdateCaseRequest]
	svc *service.CaseService
}

// Close closes a case.
func (h *CaseHooks) Close(ctx context.Context, id string, req models.CloseCaseRequest) (*models.Case, error) {
	return mutate(ctx, h.client, GroupCases, "Case closed", func(ctx context.Context, in models.CloseCaseRequest) (*models.Case, error) {
		return h.svc.Close(ctx, id, in)
	}, req, GroupAnalytics, GroupStudents)
}

// AddNote appends a note to a case.
func (h *CaseHooks) AddNote(ctx context.Context, id string, req models.CaseNoteRequest) (*models.CaseNote, error) {
	return mutate(ctx, h.client, GroupCases, "Note added", func(ctx context.Context, in models.CaseNoteRequest) (*models.CaseNote, error) {
		return h.svc.AddNote(ctx, id, in)
	}, req)
}

// GoalHooks adds the per-case goal list and progress updates.
type GoalHooks struct {
	*ResourceHooks[models.Goal, models.GoalFilter, models.CreateGoalRequest, models.UpdateGoalRequest]
	svc *service.GoalService
}

// ByCaseQuery lists a case's goals. Disabled without a case id.
func (h *GoalHooks) ByCaseQuery(caseID string) query.Query[[]models.Goal] {
	return query.Query[[]models.Goal]{
		Key:      query.NewKey(GroupGoals, "by-case", caseID),
		Fn:       func(ctx context.Context) ([]models.Goal, error) { return h.svc.ListByCase(ctx, caseID) },
		Disabled: strings.TrimSpace(caseID) == "",
	}
}

// ByCase reads a case's goals through the cache.
func (h *GoalHooks) ByCase(ctx context.Context, caseID string) query.State[[]models.Goal] {
	return query.Get(ctx, h.client, h.ByCaseQuery(caseID))
}

// UpdateProgress records goal progress.
func (h *GoalHooks) UpdateProgress(ctx context.Context, id string, req models.GoalProgressRequest) (*models.Goal, error) {
	return mutate(ctx, h.client, GroupGoals, "Progress saved", func(ctx context.Context, in models.GoalProgressRequest) (*models.Goal, error) {
		return h.svc.UpdateProgress(ctx, id, in)
	}, req, GroupCases)
}

// AssessmentHooks adds assignment reads and writes.
type AssessmentHooks struct {
	*ResourceHooks[models.Assessment, models.AssessmentFilter, models.CreateAssessmentRequest, models.UpdateAssessmentRequest]
	svc *service.AssessmentService
}

// Assignments reads assignments through the cache.
func (h *AssessmentHooks) Assignments(ctx context.Context, filter models.AssignmentFilter) query.State[[]models.AssessmentAssignment] {
	return query.Get(ctx, h.client, query.Query[[]models.AssessmentAssignment]{
		Key: query.ParamsKey(query.NewKey(GroupAssignments, "list"), filter.Values()),
		Fn: func(ctx context.Context) ([]models.AssessmentAssignment, error) {
			return h.svc.ListAssignments(ctx, filter)
		},
	})
}

// Assign assigns an assessment to students.
func (h *AssessmentHooks) Assign(ctx context.Context, id string, req models.AssignAssessmentRequest) ([]models.AssessmentAssignment, error) {
	return mutate(ctx, h.client, GroupAssessments, "Assessment assigned", func(ctx context.Context, in models.AssignAssessmentRequest) ([]models.AssessmentAssignment, error) {
		return h.svc.Assign(ctx, id, in)
	}, req, GroupAssignments, GroupAnalytics)
}

// AlertHooks adds alert triage writes.
type AlertHooks struct {
	*ResourceHooks[models.RiskAlert, models.AlertFilter, models.CreateAlertRequest, models.UpdateAlertRequest]
	svc *service.AlertService
}

// Acknowledge marks an alert seen.
func (h *AlertHooks) Acknowledge(ctx context.Context, id string) (*models.RiskAlert, error) {
	return mutate(ctx, h.client, GroupAlerts, "Alert acknowledged", h.svc.Acknowledge, id, GroupAnalytics)
}

// Resolve resolves an alert.
func (h *AlertHooks) Resolve(ctx context.Context, id string, req models.ResolveAlertRequest) (*models.RiskAlert, error) {
	return mutate(ctx, h.client, GroupAlerts, "Alert resolved", func(ctx context.Context, in models.ResolveAlertRequest) (*models.RiskAlert, error) {
		return h.svc.Resolve(ctx, id, in)
	}, req, GroupAnalytics)
}

// BookingHooks adds cancellation.
type BookingHooks struct {
	*ResourceHooks[models.Booking, models.BookingFilter, models.CreateBookingRequest, models.UpdateBookingRequest]
	svc *service.BookingService
}

// Cancel cancels a booking.
func (h *BookingHooks) Cancel(ctx context.Context, id string, req models.CancelBookingRequest) (*models.Booking, error) {
	return mutate(ctx, h.client, GroupBookings, "Booking cancelled", func(ctx context.Context, in models.CancelBookingRequest) (*models.Booking, error) {
		return h.svc.Cancel(ctx, id, in)
	}, req, GroupAnalytics)
}

// WebinarHooks adds registration.
type WebinarHooks struct {
	*ResourceHooks[models.Webinar, models.WebinarFilter, models.CreateWebinarRequest, models.UpdateWebinarRequest]
	svc *service.WebinarService
}

// Register signs the current user up.
func (h *WebinarHooks) Register(ctx context.Context, id string) (*models.Webinar, error) {
	return mutate(ctx, h.client, GroupWebinars, "Registered for webinar", h.svc.Register, id)
}

// UserHooks adds the signed-in profile.
type UserHooks struct {
	*ResourceHooks[models.User, models.UserFilter, models.CreateUserRequest, models.UpdateUserRequest]
	svc *service.UserService
}

// MeQuery reads the signed-in user.
func (h *UserHooks) MeQuery() query.Query[*models.User] {
	return query.Query[*models.User]{Key: query.NewKey(GroupUsers, "me"), Fn: h.svc.Me}
}

// Me reads the signed-in user through the cache.
func (h *UserHooks) Me(ctx context.Context) query.State[*models.User] {
	return query.Get(ctx, h.client, h.MeQuery())
}

// UpdateProfile edits the signed-in user.
func (h *UserHooks) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (*models.User, error) {
	return mutate(ctx, h.client, GroupUsers, "Profile updated", h.svc.UpdateProfile, req)
}

// UploadAvatar uploads a profile picture and returns its URL.
func (h *UserHooks) UploadAvatar(ctx context.Context, filename string, file io.Reader) (string, error) {
	return mutate(ctx, h.client, GroupUsers, "Avatar uploaded", func(ctx context.Context, in io.Reader) (string, error) {
		return h.svc.UploadAvatar(ctx, filename, in)
	}, file)
}

// SchoolHooks caches the current school.
type SchoolHooks struct {
	client *query.Client
	svc    *service.SchoolService
}

// Current reads the school through the cache.
func (h *SchoolHooks) Current(ctx context.Context) query.State[*models.School] {
	return query.Get(ctx, h.client, query.Query[*models.School]{Key: query.NewKey(GroupSchool), Fn: h.svc.Current})
}

// Update edits school settings.
func (h *SchoolHooks) Update(ctx context.Context, req models.UpdateSchoolRequest) (*models.School, error) {
	return mutate(ctx, h.client, GroupSchool, "School updated", h.svc.Update, req)
}

// UploadLogo uploads the school logo and returns its URL.
func (h *SchoolHooks) UploadLogo(ctx context.Context, filename string, file io.Reader) (string, error) {
	return mutate(ctx, h.client, GroupSchool, "Logo uploaded", func(ctx context.Context, in io.Reader) (string, error) {
		return h.svc.UploadLogo(ctx, filename, in)
	}, file)
}

// AnalyticsHooks caches read-only analytics views.
type AnalyticsHooks struct {
	client *query.Client
	svc    *service.AnalyticsService
}

func analyticsKey(view string, filter models.AnalyticsFilter) query.Key {
	return query.ParamsKey(query.NewKey(GroupAnalytics, view), filter.Values())
}

// Dashboard reads the headline counters.
func (h *AnalyticsHooks) Dashboard(ctx context.Context, filter models.AnalyticsFilter) query.State[*models.DashboardSummary] {
	return query.Get(ctx, h.client, query.Query[*models.DashboardSummary]{
		Key: analyticsKey("dashboard", filter),
		Fn:  func(ctx context.Context) (*models.DashboardSummary, error) { return h.svc.Dashboard(ctx, filter) },
	})
}

// RiskTrend reads the alert trend series.
func (h *AnalyticsHooks) RiskTrend(ctx context.Context, filter models.AnalyticsFilter) query.State[[]models.TrendPoint] {
	return query.Get(ctx, h.client, query.Query[[]models.TrendPoint]{
		Key: analyticsKey("risk-trend", filter),
		Fn:  func(ctx context.Context) ([]models.TrendPoint, error) { return h.svc.RiskTrend(ctx, filter) },
	})
}

// AssessmentCompletion reads completion rates per assessment.
func (h *AnalyticsHooks) AssessmentCompletion(ctx context.Context, filter models.AnalyticsFilter) query.State[[]models.CompletionRate] {
	return query.Get(ctx, h.client, query.Query[[]models.CompletionRate]{
		Key: analyticsKey("assessment-completion", filter),
		Fn:  func(ctx context.Context) ([]models.CompletionRate, error) { return h.svc.AssessmentCompletion(ctx, filter) },
	})
}
