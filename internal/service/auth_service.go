package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/wellness-client/internal/api"
	"github.com/noah-isme/wellness-client/internal/models"
	appErrors "github.com/noah-isme/wellness-client/pkg/errors"
)

const (
	pathLogin  = "/auth/login"
	pathLogout = "/auth/logout"
)

// AuthService signs the user in and out. It is the only writer of the
// credential slot besides the 401 handler in the HTTP client.
type AuthService struct {
	client    apiClient
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(client apiClient, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{client: client, validator: validate, logger: logger}
}

// Login exchanges credentials for a token and stores it.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := validatePayload(s.validator, "login", req); err != nil {
		return nil, err
	}
	var out models.LoginResponse
	if err := s.client.Do(ctx, api.Request{Method: http.MethodPost, Path: pathLogin, Body: req}, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, appErrors.Clone(appErrors.ErrInvalidEnvelope, "login response did not include a token")
	}
	if err := s.client.Credentials().SetToken(ctx, out.Token); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store credential")
	}
	s.logger.Sugar().Infow("signed in", "user_id", out.User.ID, "role", out.User.Role)
	return &out, nil
}

// Logout revokes the session on the backend and clears the local
// credential. The local slot is cleared even when the backend call fails.
func (s *AuthService) Logout(ctx context.Context) error {
	remoteErr := s.client.Do(ctx, api.Request{Method: http.MethodPost, Path: pathLogout}, nil)
	if err := s.client.Credentials().Clear(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear credential")
	}
	if remoteErr != nil && !errors.Is(remoteErr, appErrors.ErrUnauthorized) {
		return remoteErr
	}
	return nil
}
