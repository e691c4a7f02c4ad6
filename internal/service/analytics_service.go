package service

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/noah-isme/wellness-client/internal/api"
	"github.com/noah-isme/wellness-client/internal/models"
)

const pathAnalytics = "/analytics"

// AnalyticsService reads the aggregate views used by dashboards.
type AnalyticsService struct {
	client apiClient
	logger *zap.Logger
}

// NewAnalyticsService constructs the analytics service.
func NewAnalyticsService(client apiClient, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{client: client, logger: logger}
}

// Dashboard returns headline counters.
func (s *AnalyticsService) Dashboard(ctx context.Context, filter models.AnalyticsFilter) (*models.DashboardSummary, error) {
	var out models.DashboardSummary
	if err := s.get(ctx, "dashboard", filter, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RiskTrend returns alert counts per period.
func (s *AnalyticsService) RiskTrend(ctx context.Context, filter models.AnalyticsFilter) ([]models.TrendPoint, error) {
	var out []models.TrendPoint
	if err := s.get(ctx, "risk-trend", filter, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AssessmentCompletion returns completion rates per assessment.
func (s *AnalyticsService) AssessmentCompletion(ctx context.Context, filter models.AnalyticsFilter) ([]models.CompletionRate, error) {
	var out []models.CompletionRate
	if err := s.get(ctx, "assessment-completion", filter, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *AnalyticsService) get(ctx context.Context, view string, filter models.AnalyticsFilter, out interface{}) error {
	return s.client.Do(ctx, api.Request{Method: http.MethodGet, Path: pathAnalytics + "/" + view, Query: filter.Values()}, out)
}
