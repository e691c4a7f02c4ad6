package query

import (
	"context"
	"sync"
)

// Observer follows one query the way a mounted view does: subscribers see
// every state transition, invalidation refetches it in the background and
// Close stops delivery of results that arrive afterwards.
type Observer[T any] struct {
	c *Client

	mu     sync.Mutex
	q      Query[T]
	state  State[T]
	subs   []func(State[T])
	detach func()
	closed bool
}

// Watch starts observing q. It does not fetch; call Load.
func Watch[T any](c *Client, q Query[T]) *Observer[T] {
	o := &Observer[T]{c: c}
	o.bind(q)
	return o
}

func (o *Observer[T]) bind(q Query[T]) {
	o.mu.Lock()
	if o.detach != nil {
		o.detach()
		o.detach = nil
	}
	o.q = q
	if !q.enabled() {
		o.state = State[T]{Status: StatusIdle}
		o.mu.Unlock()
		o.publish(State[T]{Status: StatusIdle})
		return
	}
	o.mu.Unlock()

	key := q.Key
	detach := o.c.attach(key, q.fetcher(), func() {
		o.publishFor(key, peek[T](o.c, key))
	})

	o.mu.Lock()
	if o.closed || !sameKey(o.q.Key, key) {
		o.mu.Unlock()
		detach()
		return
	}
	o.detach = detach
	o.state = peek[T](o.c, key)
	o.mu.Unlock()
}

// Subscribe registers fn and immediately calls it with the current state.
func (o *Observer[T]) Subscribe(fn func(State[T])) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.subs = append(o.subs, fn)
	st := o.state
	o.mu.Unlock()
	fn(st)
}

// State returns the last state delivered to subscribers.
func (o *Observer[T]) State() State[T] {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Load reads the query through the cache.
func (o *Observer[T]) Load(ctx context.Context) State[T] {
	q, ok := o.current()
	if !ok {
		return State[T]{Status: StatusIdle}
	}
	return Get(ctx, o.c, q)
}

// Refetch forces a network read, also after a failure.
func (o *Observer[T]) Refetch(ctx context.Context) State[T] {
	q, ok := o.current()
	if !ok {
		return State[T]{Status: StatusIdle}
	}
	return Refetch(ctx, o.c, q)
}

// SetQuery switches to a new query, e.g. after a filter change, and loads
// it.
func (o *Observer[T]) SetQuery(ctx context.Context, q Query[T]) State[T] {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return State[T]{Status: StatusIdle}
	}
	o.mu.Unlock()
	o.bind(q)
	return o.Load(ctx)
}

// Close stops observing. Results that arrive later are discarded; the
// request itself is not cancelled.
func (o *Observer[T]) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.closed = true
	o.subs = nil
	if o.detach != nil {
		o.detach()
		o.detach = nil
	}
}

func (o *Observer[T]) current() (Query[T], bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed || !o.q.enabled() {
		return Query[T]{}, false
	}
	return o.q, true
}

// publishFor delivers st only while key is still the observed one.
func (o *Observer[T]) publishFor(key Key, st State[T]) {
	o.mu.Lock()
	if o.closed || !sameKey(o.q.Key, key) {
		o.mu.Unlock()
		return
	}
	o.mu.Unlock()
	o.publish(st)
}

func (o *Observer[T]) publish(st State[T]) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.state = st
	subs := make([]func(State[T]), len(o.subs))
	copy(subs, o.subs)
	o.mu.Unlock()
	for _, fn := range subs {
		fn(st)
	}
}

func sameKey(a, b Key) bool {
	return len(a) == len(b) && a.HasPrefix(b)
}
