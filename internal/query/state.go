package query

import (
	"context"
	"time"
)

// Status is the lifecycle position of a query.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// State is what a consumer sees of a query. Data keeps the last
// successful value while a refetch is loading or after it failed.
type State[T any] struct {
	Status     Status
	Data       T
	Err        error
	UpdatedAt  time.Time
	IsFetching bool
}

// Result returns the data and error. An idle state returns the zero value
// and no error.
func (s State[T]) Result() (T, error) {
	return s.Data, s.Err
}

// Query describes one cached read. Disabled queries never touch the
// network and report StatusIdle.
type Query[T any] struct {
	Key      Key
	Fn       func(ctx context.Context) (T, error)
	Disabled bool
}

func (q Query[T]) enabled() bool {
	return !q.Disabled && len(q.Key) > 0 && q.Fn != nil
}

func (q Query[T]) fetcher() fetchFunc {
	return func(ctx context.Context) (any, error) {
		return q.Fn(ctx)
	}
}

// Get returns the cached state of q, fetching when there is no fresh
// result. A query that failed stays failed until Refetch or until a
// different key is asked for.
func Get[T any](ctx context.Context, c *Client, q Query[T]) State[T] {
	if !q.enabled() {
		return State[T]{Status: StatusIdle}
	}

	c.mu.Lock()
	e := c.entryLocked(q.Key)
	status, updatedAt, invalid := e.status, e.updatedAt, e.invalid
	c.mu.Unlock()

	if !invalid {
		switch {
		case status == StatusError:
			return peek[T](c, q.Key)
		case status == StatusSuccess && c.fresh(updatedAt):
			return peek[T](c, q.Key)
		case status == StatusIdle && c.store.Enabled():
			if warm(ctx, c, e, q) {
				return peek[T](c, q.Key)
			}
		}
	}
	return fetch(ctx, c, e, q, false)
}

// Refetch fetches q regardless of freshness or a previous failure.
func Refetch[T any](ctx context.Context, c *Client, q Query[T]) State[T] {
	if !q.enabled() {
		return State[T]{Status: StatusIdle}
	}
	c.mu.Lock()
	e := c.entryLocked(q.Key)
	c.mu.Unlock()
	return fetch(ctx, c, e, q, true)
}

// Peek returns the cached state for key without fetching.
func Peek[T any](c *Client, key Key) State[T] {
	return peek[T](c, key)
}

// fetch runs q through the shared flight. Unless force is set, a result
// that settled after the caller looked at the entry is reused.
func fetch[T any](ctx context.Context, c *Client, e *entry, q Query[T], force bool) State[T] {
	value, err := c.run(ctx, e, q.fetcher(), force)
	if err != nil {
		st := peek[T](c, q.Key)
		st.Status = StatusError
		st.Err = err
		return st
	}
	st := peek[T](c, q.Key)
	st.Status = StatusSuccess
	st.Err = nil
	if v, ok := value.(T); ok {
		st.Data = v
	}
	return st
}

func peek[T any](c *Client, key Key) State[T] {
	snap, _ := c.snapshot(key)
	st := State[T]{
		Status:     snap.status,
		Err:        snap.err,
		UpdatedAt:  snap.updatedAt,
		IsFetching: snap.fetching,
	}
	if v, ok := snap.value.(T); ok {
		st.Data = v
	}
	return st
}

func (c *Client) fresh(updatedAt time.Time) bool {
	return !updatedAt.IsZero() && c.now().Sub(updatedAt) < c.staleTime
}

// warm loads a persisted result into an empty entry. It reports whether
// the loaded value is fresh enough to serve.
func warm[T any](ctx context.Context, c *Client, e *entry, q Query[T]) bool {
	c.mu.Lock()
	gen := e.gen
	c.mu.Unlock()

	var value T
	storedAt, ok, err := c.store.Load(ctx, q.Key.Group(), e.id, &value)
	if err != nil || !ok {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if e.gen != gen || e.status != StatusIdle {
		return false
	}
	e.status = StatusSuccess
	e.value = value
	e.updatedAt = storedAt
	e.fetch = q.fetcher()
	return c.fresh(storedAt)
}
