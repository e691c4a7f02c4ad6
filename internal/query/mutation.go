package query

import (
	"context"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/wellness-client/pkg/errors"
)

// Mutation is a write against the backend. On success every cached query
// under Resource and under each of Invalidates is invalidated.
type Mutation[In, Out any] struct {
	Resource    string
	Fn          func(ctx context.Context, in In) (Out, error)
	Invalidates []Key
	// Success is the toast shown after the write. Empty means "Saved".
	Success string
}

// Prefixes lists what a successful run invalidates; the resource itself
// always comes first.
func (m Mutation[In, Out]) Prefixes() []Key {
	prefixes := make([]Key, 0, len(m.Invalidates)+1)
	if m.Resource != "" {
		prefixes = append(prefixes, NewKey(m.Resource))
	}
	for _, p := range m.Invalidates {
		if len(p) > 0 {
			prefixes = append(prefixes, p)
		}
	}
	return prefixes
}

// Mutate runs m. A failure leaves the cache untouched and raises an error
// toast carrying the server message.
func Mutate[In, Out any](ctx context.Context, c *Client, m Mutation[In, Out], in In) (Out, error) {
	out, err := m.Fn(ctx, in)
	if err != nil {
		c.notifier.Error(appErrors.Message(err))
		c.logger.Debug("mutation failed", zap.String("resource", m.Resource), zap.Error(err))
		var zero Out
		return zero, err
	}

	c.Invalidate(ctx, m.Prefixes()...)
	msg := m.Success
	if msg == "" {
		msg = "Saved"
	}
	c.notifier.Success(msg)
	return out, nil
}
