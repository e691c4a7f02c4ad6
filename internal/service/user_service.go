package service

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/wellness-client/internal/api"
	"github.com/noah-isme/wellness-client/internal/models"
)

const (
	pathProfile = PathUsers + "/me"
	uploadField = "file"
)

// UserService manages staff accounts and the signed-in profile.
type UserService struct {
	*Resource[models.User, models.UserFilter, models.CreateUserRequest, models.UpdateUserRequest]
}

// NewUserService constructs the user service.
func NewUserService(client apiClient, validate *validator.Validate, logger *zap.Logger) *UserService {
	return &UserService{NewResource[models.User, models.UserFilter, models.CreateUserRequest, models.UpdateUserRequest](client, PathUsers, "user", validate, logger)}
}

// Me returns the signed-in user.
func (s *UserService) Me(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := s.client.Do(ctx, api.Request{Method: http.MethodGet, Path: pathProfile}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile edits the signed-in user.
func (s *UserService) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (*models.User, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	var out models.User
	if err := s.client.Do(ctx, api.Request{Method: http.MethodPut, Path: pathProfile, Body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadAvatar uploads a profile picture and returns its absolute URL.
func (s *UserService) UploadAvatar(ctx context.Context, filename string, file io.Reader) (string, error) {
	return s.client.Upload(ctx, pathProfile+"/avatar", uploadField, filename, file)
}

// SchoolService reads and edits the current school.
type SchoolService struct {
	client    apiClient
	validator *validator.Validate
	logger    *zap.Logger
}

const pathSchool = "/school"

// NewSchoolService constructs the school service.
func NewSchoolService(client apiClient, validate *validator.Validate, logger *zap.Logger) *SchoolService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchoolService{client: client, validator: validate, logger: logger}
}

// Current returns the signed-in user's school.
func (s *SchoolService) Current(ctx context.Context) (*models.School, error) {
	var out models.School
	if err := s.client.Do(ctx, api.Request{Method: http.MethodGet, Path: pathSchool}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update edits the school settings.
func (s *SchoolService) Update(ctx context.Context, req models.UpdateSchoolRequest) (*models.School, error) {
	if err := validatePayload(s.validator, "school", req); err != nil {
		return nil, err
	}
	var out models.School
	if err := s.client.Do(ctx, api.Request{Method: http.MethodPut, Path: pathSchool, Body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadLogo uploads the school logo and returns its absolute URL.
func (s *SchoolService) UploadLogo(ctx context.Context, filename string, file io.Reader) (string, error) {
	return s.client.Upload(ctx, pathSchool+"/logo", uploadField, filename, file)
}

func escape(id string) string { return url.PathEscape(id) }
