// Package hooks binds the resource services to the query cache: reads go
// through cached queries keyed by resource and filter, writes run as
// mutations that invalidate what they touch.
package hooks

import (
	"context"
	"strings"

	"github.com/noah-isme/wellness-client/internal/models"
	"github.com/noah-isme/wellness-client/internal/query"
	"github.com/noah-isme/wellness-client/internal/service"
)

// Cache groups. Each resource owns the keys under its group.
const (
	GroupStudents     = "students"
	GroupCases        = "cases"
	GroupGoals        = "goals"
	GroupAssessments  = "assessments"
	GroupAssignments  = "assessment-assignments"
	GroupObservations = "observations"
	GroupAlerts       = "alerts"
	GroupBookings     = "bookings"
	GroupWebinars     = "webinars"
	GroupUsers        = "users"
	GroupSchool       = "school"
	GroupAnalytics    = "analytics"
)

// Groups lists every cache group.
var Groups = []string{
	GroupStudents, GroupCases, GroupGoals, GroupAssessments, GroupAssignments,
	GroupObservations, GroupAlerts, GroupBookings, GroupWebinars, GroupUsers,
	GroupSchool, GroupAnalytics,
}

// ResourceHooks are the cached reads and invalidating writes of one CRUD
// collection.
type ResourceHooks[T any, F models.Filter, C any, U any] struct {
	client *query.Client
	res    *service.Resource[T, F, C, U]
	group  string
	label  string
	// related groups whose views embed this resource
	related []query.Key
}

// NewResourceHooks binds res under group. label names the entity in toasts,
// e.g. "Student".
func NewResourceHooks[T any, F models.Filter, C any, U any](client *query.Client, res *service.Resource[T, F, C, U], group, label string, related ...string) *ResourceHooks[T, F, C, U] {
	keys := make([]query.Key, 0, len(related))
	for _, r := range related {
		keys = append(keys, query.NewKey(r))
	}
	return &ResourceHooks[T, F, C, U]{client: client, res: res, group: group, label: label, related: keys}
}

// ListKey is the cache key of a filtered list.
func (h *ResourceHooks[T, F, C, U]) ListKey(filter F) query.Key {
	return query.ParamsKey(query.NewKey(h.group, "list"), filter.Values())
}

// DetailKey is the cache key of one record.
func (h *ResourceHooks[T, F, C, U]) DetailKey(id string) query.Key {
	return query.NewKey(h.group, "detail", id)
}

// ListQuery describes the cached list read.
func (h *ResourceHooks[T, F, C, U]) ListQuery(filter F) query.Query[[]T] {
	return query.Query[[]T]{
		Key: h.ListKey(filter),
		Fn:  func(ctx context.Context) ([]T, error) { return h.res.GetAll(ctx, filter) },
	}
}

// DetailQuery describes the cached record read. It is disabled while id
// is empty.
func (h *ResourceHooks[T, F, C, U]) DetailQuery(id string) query.Query[*T] {
	return query.Query[*T]{
		Key:      h.DetailKey(id),
		Fn:       func(ctx context.Context) (*T, error) { return h.res.GetByID(ctx, id) },
		Disabled: strings.TrimSpace(id) == "",
	}
}

// List reads the filtered list through the cache.
func (h *ResourceHooks[T, F, C, U]) List(ctx context.Context, filter F) query.State[[]T] {
	return query.Get(ctx, h.client, h.ListQuery(filter))
}

// Get reads one record through the cache.
func (h *ResourceHooks[T, F, C, U]) Get(ctx context.Context, id string) query.State[*T] {
	return query.Get(ctx, h.client, h.DetailQuery(id))
}

// WatchList observes a filtered list.
func (h *ResourceHooks[T, F, C, U]) WatchList(filter F) *query.Observer[[]T] {
	return query.Watch(h.client, h.ListQuery(filter))
}

// WatchDetail observes one record.
func (h *ResourceHooks[T, F, C, U]) WatchDetail(id string) *query.Observer[*T] {
	return query.Watch(h.client, h.DetailQuery(id))
}

// Create adds a record.
func (h *ResourceHooks[T, F, C, U]) Create(ctx context.Context, req C) (*T, error) {
	return query.Mutate(ctx, h.client, query.Mutation[C, *T]{
		Resource:    h.group,
		Fn:          h.res.Create,
		Invalidates: h.related,
		Success:     h.label + " created",
	}, req)
}

// Update edits a record.
func (h *ResourceHooks[T, F, C, U]) Update(ctx context.Context, id string, req U) (*T, error) {
	return query.Mutate(ctx, h.client, query.Mutation[U, *T]{
		Resource:    h.group,
		Fn:          func(ctx context.Context, in U) (*T, error) { return h.res.Update(ctx, id, in) },
		Invalidates: h.related,
		Success:     h.label + " updated",
	}, req)
}

// Delete removes a record.
func (h *ResourceHooks[T, F, C, U]) Delete(ctx context.Context, id string) error {
	_, err := query.Mutate(ctx, h.client, query.Mutation[string, struct{}]{
		Resource:    h.group,
		Fn:          func(ctx context.Context, in string) (struct{}, error) { return struct{}{}, h.res.Delete(ctx, in) },
		Invalidates: h.related,
		Success:     h.label + " deleted",
	}, id)
	return err
}

// mutate runs fn as a mutation of this resource that also invalidates
// extra groups.
func mutate[In, Out any](ctx context.Context, client *query.Client, group, success string, fn func(context.Context, In) (Out, error), in In, extra ...string) (Out, error) {
	keys := make([]query.Key, 0, len(extra))
	for _, g := range extra {
		keys = append(keys, query.NewKey(g))
	}
	return query.Mutate(ctx, client, query.Mutation[In, Out]{
		Resource:    group,
		Fn:          fn,
		Invalidates: keys,
		Success:     success,
	}, in)
}
