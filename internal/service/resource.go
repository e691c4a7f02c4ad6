package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/wellness-client/internal/api"
	"github.com/noah-isme/wellness-client/internal/models"
	"github.com/noah-isme/wellness-client/pkg/credential"
	appErrors "github.com/noah-isme/wellness-client/pkg/errors"
)

type apiClient interface {
	Do(ctx context.Context, req api.Request, out interface{}) error
	Upload(ctx context.Context, path, field, filename string, file io.Reader) (string, error)
	Credentials() credential.Store
}

// Resource exposes the five CRUD calls of one backend collection. Each
// call is a single HTTP request; payloads are validated first and server
// errors propagate unchanged.
type Resource[T any, F models.Filter, C any, U any] struct {
	client    apiClient
	path      string
	name      string
	validator *validator.Validate
	logger    *zap.Logger
}

// NewResource binds a collection at path. name is used in error messages.
func NewResource[T any, F models.Filter, C any, U any](client apiClient, path, name string, validate *validator.Validate, logger *zap.Logger) *Resource[T, F, C, U] {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resource[T, F, C, U]{
		client:    client,
		path:      "/" + strings.Trim(path, "/"),
		name:      name,
		validator: validate,
		logger:    logger,
	}
}

// Path returns the collection path, e.g. "/students".
func (r *Resource[T, F, C, U]) Path() string { return r.path }

// GetAll lists the collection.
func (r *Resource[T, F, C, U]) GetAll(ctx context.Context, filter F) ([]T, error) {
	var items []T
	if err := r.client.Do(ctx, api.Request{Method: http.MethodGet, Path: r.path, Query: filter.Values()}, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// GetByID loads one record.
func (r *Resource[T, F, C, U]) GetByID(ctx context.Context, id string) (*T, error) {
	if err := r.requireID(id); err != nil {
		return nil, err
	}
	var item T
	if err := r.client.Do(ctx, api.Request{Method: http.MethodGet, Path: r.itemPath(id)}, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Create posts a new record.
func (r *Resource[T, F, C, U]) Create(ctx context.Context, req C) (*T, error) {
	if err := r.validate(req); err != nil {
		return nil, err
	}
	var item T
	if err := r.client.Do(ctx, api.Request{Method: http.MethodPost, Path: r.path, Body: req}, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Update replaces the editable fields of a record.
func (r *Resource[T, F, C, U]) Update(ctx context.Context, id string, req U) (*T, error) {
	if err := r.requireID(id); err != nil {
		return nil, err
	}
	if err := r.validate(req); err != nil {
		return nil, err
	}
	var item T
	if err := r.client.Do(ctx, api.Request{Method: http.MethodPut, Path: r.itemPath(id), Body: req}, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Delete removes a record.
func (r *Resource[T, F, C, U]) Delete(ctx context.Context, id string) error {
	if err := r.requireID(id); err != nil {
		return err
	}
	if err := r.client.Do(ctx, api.Request{Method: http.MethodDelete, Path: r.itemPath(id)}, nil); err != nil {
		return err
	}
	r.logger.Debug("resource deleted", zap.String("resource", r.name), zap.String("id", id))
	return nil
}

// action calls a sub-route of one record, e.g. POST /cases/{id}/close.
func (r *Resource[T, F, C, U]) action(ctx context.Context, method, id, action string, body, out interface{}) error {
	if err := r.requireID(id); err != nil {
		return err
	}
	if body != nil {
		if err := r.validate(body); err != nil {
			return err
		}
	}
	return r.client.Do(ctx, api.Request{Method: method, Path: r.itemPath(id) + "/" + action, Body: body}, out)
}

func (r *Resource[T, F, C, U]) itemPath(id string) string {
	return r.path + "/" + url.PathEscape(id)
}

func (r *Resource[T, F, C, U]) requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return appErrors.Clone(appErrors.ErrValidation, r.name+" id is required")
	}
	return nil
}

func (r *Resource[T, F, C, U]) validate(req interface{}) error {
	return validatePayload(r.validator, r.name, req)
}

func validatePayload(v *validator.Validate, name string, req interface{}) error {
	if err := v.Struct(req); err != nil {
		// payloads that are not structs carry no rules
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid "+name+" payload")
	}
	return nil
}
