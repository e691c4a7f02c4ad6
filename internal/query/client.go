// Package query is the session's query cache. It de-duplicates identical
// in-flight requests, serves fresh results from memory, invalidates by key
// prefix after mutations and refetches what is still being observed.
package query

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/noah-isme/wellness-client/internal/metrics"
	"github.com/noah-isme/wellness-client/internal/notify"
	"github.com/noah-isme/wellness-client/pkg/cache"
	"github.com/noah-isme/wellness-client/pkg/jobs"
)

const refetchJobType = "query.refetch"

type fetchFunc func(ctx context.Context) (any, error)

// Options configures a Client. Zero values are usable.
type Options struct {
	// StaleTime is how long a successful result is served without a
	// network call.
	StaleTime time.Duration
	// GCTime is how long an unobserved entry is retained.
	GCTime         time.Duration
	RefetchWorkers int
	Store          *cache.Store
	Metrics        *metrics.Service
	Notifier       notify.Notifier
	Logger         *zap.Logger
	Now            func() time.Time
}

// Stats are counters for one client.
type Stats struct {
	Fetches       uint64
	SharedFetches uint64
	Invalidations uint64
	Refetches     uint64
	Entries       int
}

type entry struct {
	key       Key
	id        string
	status    Status
	value     any
	err       error
	updatedAt time.Time
	lastUsed  time.Time
	gen       uint64
	invalid   bool
	waiting   int
	fetch     fetchFunc
	listeners map[int]func()
}

// Client holds the cache of one session.
type Client struct {
	mu      sync.Mutex
	entries map[string]*entry
	nextID  int

	flights singleflight.Group
	refetch *jobs.Queue

	staleTime time.Duration
	gcTime    time.Duration
	store     *cache.Store
	metrics   *metrics.Service
	notifier  notify.Notifier
	logger    *zap.Logger
	now       func() time.Time

	fetches       atomic.Uint64
	shared        atomic.Uint64
	invalidations atomic.Uint64
	refetches     atomic.Uint64

	stop      chan struct{}
	closeOnce sync.Once
	sweeper   sync.WaitGroup
}

// NewClient builds a client and starts its refetch workers and, when
// GCTime is set, its sweeper.
func NewClient(opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Nop{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RefetchWorkers <= 0 {
		opts.RefetchWorkers = 1
	}

	c := &Client{
		entries:   make(map[string]*entry),
		staleTime: opts.StaleTime,
		gcTime:    opts.GCTime,
		store:     opts.Store,
		metrics:   opts.Metrics,
		notifier:  opts.Notifier,
		logger:    opts.Logger,
		now:       opts.Now,
		stop:      make(chan struct{}),
	}
	c.refetch = jobs.NewQueue("query-refetch", c.handleRefetch, jobs.QueueConfig{
		Workers: opts.RefetchWorkers,
		Logger:  opts.Logger,
	})
	c.refetch.Start(context.Background())

	if c.gcTime > 0 {
		c.sweeper.Add(1)
		go c.sweep()
	}
	return c
}

// Notifier returns the sink for mutation toasts.
func (c *Client) Notifier() notify.Notifier { return c.notifier }

// Stats returns the client's counters.
func (c *Client) Stats() Stats {
	c.mu.Lock()
	n := len(c.entries)
	c.mu.Unlock()
	return Stats{
		Fetches:       c.fetches.Load(),
		SharedFetches: c.shared.Load(),
		Invalidations: c.invalidations.Load(),
		Refetches:     c.refetches.Load(),
		Entries:       n,
	}
}

// Waiting returns how many callers are blocked on the in-flight request
// for key.
func (c *Client) Waiting(key Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key.String()]; ok {
		return e.waiting
	}
	return 0
}

// Close stops background work. In-flight requests finish on their own.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.stop)
		c.sweeper.Wait()
		c.refetch.Stop()
	})
}

// entryLocked returns the entry for key, creating an idle one.
func (c *Client) entryLocked(key Key) *entry {
	id := key.String()
	e, ok := c.entries[id]
	if !ok {
		e = &entry{key: key, id: id, status: StatusIdle, listeners: make(map[int]func())}
		c.entries[id] = e
	}
	e.lastUsed = c.now()
	return e
}

// run fetches e through the shared flight for its current generation and
// blocks until the result or ctx is done. The flight is detached from ctx
// so a caller giving up does not fail the other waiters.
func (c *Client) run(ctx context.Context, e *entry, fn fetchFunc, force bool) (any, error) {
	c.mu.Lock()
	if !force && !e.invalid {
		// the flight this caller saw loading may have settled already
		switch {
		case e.status == StatusSuccess && c.fresh(e.updatedAt):
			value := e.value
			c.mu.Unlock()
			c.shared.Add(1)
			c.metrics.RecordFetch(true)
			return value, nil
		case e.status == StatusError:
			err := e.err
			c.mu.Unlock()
			return nil, err
		}
	}
	gen := e.gen
	e.waiting++
	e.fetch = fn
	changed := e.status != StatusLoading
	e.status = StatusLoading
	c.mu.Unlock()
	if changed {
		c.emit(e)
	}

	defer func() {
		c.mu.Lock()
		e.waiting--
		c.mu.Unlock()
	}()

	ran := false
	flightCtx := context.WithoutCancel(ctx)
	ch := c.flights.DoChan(e.id+"#"+strconv.FormatUint(gen, 10), func() (any, error) {
		ran = true
		return c.execute(flightCtx, e, gen, fn)
	})

	select {
	case res := <-ch:
		if !ran {
			c.shared.Add(1)
			c.metrics.RecordFetch(true)
		}
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// execute performs the network call and writes the outcome back unless
// the entry was invalidated meanwhile.
func (c *Client) execute(ctx context.Context, e *entry, gen uint64, fn fetchFunc) (any, error) {
	c.fetches.Add(1)
	c.metrics.RecordFetch(false)

	group := e.key.Group()
	var storeGen uint64
	persist := c.store.Enabled()
	if persist {
		g, err := c.store.Generation(ctx, group)
		if err != nil {
			c.logger.Warn("cache generation unavailable", zap.String("key", e.id), zap.Error(err))
			persist = false
		}
		storeGen = g
	}

	value, err := fn(ctx)

	c.mu.Lock()
	current := e.gen == gen
	if current {
		if err != nil {
			e.status = StatusError
			e.err = err
		} else {
			e.status = StatusSuccess
			e.value = value
			e.err = nil
			e.updatedAt = c.now()
		}
		e.invalid = false
	}
	c.mu.Unlock()

	if !current {
		c.logger.Debug("discarded result of invalidated fetch", zap.String("key", e.id))
		return value, err
	}
	c.emit(e)

	if err == nil && persist {
		if saveErr := c.store.Save(ctx, group, e.id, storeGen, value); saveErr != nil {
			c.logger.Debug("cache write skipped", zap.String("key", e.id), zap.Error(saveErr))
		}
	}
	return value, err
}

// emit notifies every listener of e outside the lock.
func (c *Client) emit(e *entry) {
	c.mu.Lock()
	listeners := make([]func(), 0, len(e.listeners))
	for _, fn := range e.listeners {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// attach registers fn to be called whenever the entry for key changes.
func (c *Client) attach(key Key, fetch fetchFunc, fn func()) (detach func()) {
	c.mu.Lock()
	e := c.entryLocked(key)
	id := c.nextID
	c.nextID++
	e.listeners[id] = fn
	if fetch != nil {
		e.fetch = fetch
	}
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(e.listeners, id)
			e.lastUsed = c.now()
			c.mu.Unlock()
		})
	}
}

type snapshot struct {
	status    Status
	value     any
	err       error
	updatedAt time.Time
	fetching  bool
}

func (c *Client) snapshot(key Key) (snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.String()]
	if !ok {
		return snapshot{status: StatusIdle}, false
	}
	return snapshot{
		status:    e.status,
		value:     e.value,
		err:       e.err,
		updatedAt: e.updatedAt,
		fetching:  e.waiting > 0,
	}, true
}

// Invalidate marks every entry under any of prefixes as stale, bumps its
// generation so earlier in-flight fetches cannot write back, orphans the
// persisted copies and queues a refetch for entries still observed. It
// returns the number of entries matched.
func (c *Client) Invalidate(ctx context.Context, prefixes ...Key) int {
	if len(prefixes) == 0 {
		return 0
	}
	var observed []Key
	matched := 0

	c.mu.Lock()
	for _, e := range c.entries {
		for _, p := range prefixes {
			if !e.key.HasPrefix(p) {
				continue
			}
			matched++
			e.gen++
			e.invalid = true
			if len(e.listeners) > 0 && e.fetch != nil {
				observed = append(observed, e.key)
			}
			break
		}
	}
	c.mu.Unlock()

	c.invalidations.Add(uint64(len(prefixes)))
	c.metrics.RecordInvalidation(len(prefixes))

	groups := make(map[string]struct{}, len(prefixes))
	for _, p := range prefixes {
		groups[p.Group()] = struct{}{}
	}
	for group := range groups {
		if group == "" {
			continue
		}
		if err := c.store.Invalidate(ctx, group); err != nil {
			c.logger.Warn("persisted cache invalidation failed", zap.String("group", group), zap.Error(err))
		}
	}

	for _, key := range observed {
		if _, err := c.refetch.EnqueueUnique(jobs.Job{ID: key.String(), Type: refetchJobType, Payload: key}); err != nil {
			c.logger.Debug("refetch not queued", zap.String("key", key.String()), zap.Error(err))
		}
	}
	c.logger.Debug("queries invalidated", zap.Int("prefixes", len(prefixes)), zap.Int("entries", matched), zap.Int("refetching", len(observed)))
	return matched
}

func (c *Client) handleRefetch(ctx context.Context, job jobs.Job) error {
	key, ok := job.Payload.(Key)
	if !ok {
		return nil
	}
	c.mu.Lock()
	e, exists := c.entries[key.String()]
	var fn fetchFunc
	if exists && len(e.listeners) > 0 {
		fn = e.fetch
	}
	c.mu.Unlock()
	if fn == nil {
		return nil
	}

	c.refetches.Add(1)
	c.metrics.RecordRefetch()
	_, err := c.run(ctx, e, fn, true)
	if err != nil {
		c.logger.Debug("background refetch failed", zap.String("key", key.String()), zap.Error(err))
	}
	return nil
}

// Sweep drops entries that are unobserved, idle and unused for GCTime.
func (c *Client) Sweep() int {
	if c.gcTime <= 0 {
		return 0
	}
	cutoff := c.now().Add(-c.gcTime)
	removed := 0
	c.mu.Lock()
	for id, e := range c.entries {
		if len(e.listeners) == 0 && e.waiting == 0 && e.lastUsed.Before(cutoff) {
			delete(c.entries, id)
			removed++
		}
	}
	c.mu.Unlock()
	return removed
}

func (c *Client) sweep() {
	defer c.sweeper.Done()
	interval := c.gcTime / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			if n := c.Sweep(); n > 0 {
				c.logger.Debug("query cache swept", zap.Int("removed", n))
			}
		}
	}
}
