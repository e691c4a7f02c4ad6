package query

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/wellness-client/internal/metrics"
	"github.com/noah-isme/wellness-client/internal/notify"
	"github.com/noah-isme/wellness-client/pkg/cache"
	appErrors "github.com/noah-isme/wellness-client/pkg/errors"
)

// counter is a fetcher that counts calls and returns a fixed value.
type counter struct {
	calls int32
	value string
	err   error
}

func (f *counter) fn(context.Context) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.value, f.err
}

func (f *counter) count() int { return int(atomic.LoadInt32(&f.calls)) }

// gated is a fetcher that blocks until released.
type gated struct {
	calls   int32
	started chan struct{}
	release chan struct{}
	value   atomic.Value
}

func newGated(value string) *gated {
	g := &gated{started: make(chan struct{}, 16), release: make(chan struct{})}
	g.value.Store(value)
	return g
}

func (g *gated) fn(context.Context) (string, error) {
	atomic.AddInt32(&g.calls, 1)
	g.started <- struct{}{}
	<-g.release
	return g.value.Load().(string), nil
}

func newTestClient(t *testing.T, opts Options) *Client {
	t.Helper()
	if opts.StaleTime == 0 {
		opts.StaleTime = time.Minute
	}
	c := NewClient(opts)
	t.Cleanup(c.Close)
	return c
}

func TestKeys(t *testing.T) {
	a := ParamsKey(NewKey("students", "list"), url.Values{"grade": {"10"}, "search": {"ali"}})
	b := ParamsKey(NewKey("students", "list"), url.Values{"search": {"ali"}, "grade": {"10"}})
	assert.Equal(t, a, b)
	assert.Equal(t, Key{"students", "list"}, ParamsKey(NewKey("students", "list"), nil))

	assert.True(t, a.HasPrefix(NewKey("students")))
	assert.True(t, a.HasPrefix(NewKey("students", "list")))
	assert.False(t, a.HasPrefix(NewKey("student")))
	assert.False(t, NewKey("students").HasPrefix(a))
	assert.Equal(t, "students", a.Group())
	assert.Equal(t, "students/detail/a%2Fb", NewKey("students", "detail", "a/b").String())
}

func TestGetServesFreshResultFromCache(t *testing.T) {
	c := newTestClient(t, Options{})
	f := &counter{value: "alice"}
	q := Query[string]{Key: NewKey("students", "detail", "1"), Fn: f.fn}

	st := Get(context.Background(), c, q)
	require.Equal(t, StatusSuccess, st.Status)
	assert.Equal(t, "alice", st.Data)

	st = Get(context.Background(), c, q)
	assert.Equal(t, "alice", st.Data)
	assert.Equal(t, 1, f.count())
}

func TestGetRefetchesStaleResult(t *testing.T) {
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	c := newTestClient(t, Options{StaleTime: 30 * time.Second, Now: func() time.Time { return now }})
	f := &counter{value: "alice"}
	q := Query[string]{Key: NewKey("students"), Fn: f.fn}

	Get(context.Background(), c, q)
	now = now.Add(10 * time.Second)
	Get(context.Background(), c, q)
	assert.Equal(t, 1, f.count())

	now = now.Add(time.Minute)
	Get(context.Background(), c, q)
	assert.Equal(t, 2, f.count())
}

func TestFailedQueryStaysFailedUntilRefetch(t *testing.T) {
	c := newTestClient(t, Options{})
	f := &counter{err: appErrors.FromStatus(500, "boom")}
	q := Query[string]{Key: NewKey("cases"), Fn: f.fn}

	st := Get(context.Background(), c, q)
	require.Equal(t, StatusError, st.Status)
	assert.Equal(t, "boom", appErrors.Message(st.Err))

	st = Get(context.Background(), c, q)
	assert.Equal(t, StatusError, st.Status)
	assert.Equal(t, 1, f.count(), "no automatic retry")

	f.err = nil
	f.value = "ok"
	st = Refetch(context.Background(), c, q)
	assert.Equal(t, StatusSuccess, st.Status)
	assert.Equal(t, 2, f.count())

	other := &counter{value: "other"}
	st = Get(context.Background(), c, Query[string]{Key: NewKey("cases", "list", "status=open"), Fn: other.fn})
	assert.Equal(t, StatusSuccess, st.Status)
	assert.Equal(t, 1, other.count())
}

func TestDisabledQueryNeverFetches(t *testing.T) {
	c := newTestClient(t, Options{})
	f := &counter{value: "x"}

	st := Get(context.Background(), c, Query[string]{Key: NewKey("students", "detail", ""), Fn: f.fn, Disabled: true})
	assert.Equal(t, StatusIdle, st.Status)
	assert.NoError(t, st.Err)

	st = Refetch(context.Background(), c, Query[string]{Fn: f.fn})
	assert.Equal(t, StatusIdle, st.Status)

	o := Watch(c, Query[string]{Key: NewKey("goals"), Fn: f.fn, Disabled: true})
	defer o.Close()
	assert.Equal(t, StatusIdle, o.Load(context.Background()).Status)
	assert.Equal(t, 0, f.count())
}

func TestConcurrentIdenticalQueriesShareOneRequest(t *testing.T) {
	m := metrics.New()
	c := newTestClient(t, Options{Metrics: m})
	g := newGated("shared")
	q := Query[string]{Key: NewKey("students"), Fn: g.fn}

	results := make([]State[string], 2)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0] = Get(context.Background(), c, q)
	}()
	<-g.started

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1] = Get(context.Background(), c, q)
	}()
	require.Eventually(t, func() bool { return c.Waiting(q.Key) == 2 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(g.release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&g.calls))
	assert.Equal(t, "shared", results[0].Data)
	assert.Equal(t, results[0].Data, results[1].Data)
	assert.Equal(t, uint64(1), c.Stats().Fetches)
	assert.Equal(t, uint64(1), c.Stats().SharedFetches)
	assert.Equal(t, uint64(1), m.Snapshot().DedupedFetches)
}

func TestLateCallerReusesSettledFetch(t *testing.T) {
	c := newTestClient(t, Options{})
	f := &counter{value: "alice"}
	q := Query[string]{Key: NewKey("students", "detail", "1"), Fn: f.fn}
	ctx := context.Background()
	require.Equal(t, StatusSuccess, Get(ctx, c, q).Status)

	// a caller that saw the entry loading only reaches the flight now
	c.mu.Lock()
	e := c.entryLocked(q.Key)
	c.mu.Unlock()
	st := fetch(ctx, c, e, q, false)

	assert.Equal(t, StatusSuccess, st.Status)
	assert.Equal(t, "alice", st.Data)
	assert.Equal(t, 1, f.count())
	assert.Equal(t, uint64(1), c.Stats().SharedFetches)

	f.err = errors.New("boom")
	Refetch(ctx, c, q)
	assert.Equal(t, 2, f.count())

	c.mu.Lock()
	e = c.entryLocked(q.Key)
	c.mu.Unlock()
	st = fetch(ctx, c, e, q, false)
	assert.EqualError(t, st.Err, "boom")
	assert.Equal(t, 2, f.count())
}

func TestWaiterCancellationDoesNotFailOthers(t *testing.T) {
	c := newTestClient(t, Options{})
	g := newGated("v")
	q := Query[string]{Key: NewKey("alerts"), Fn: g.fn}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan State[string], 1)
	go func() { done <- Get(ctx, c, q) }()
	<-g.started

	cancel()
	st := <-done
	assert.ErrorIs(t, st.Err, context.Canceled)

	close(g.release)
	require.Eventually(t, func() bool { return Peek[string](c, q.Key).Status == StatusSuccess }, time.Second, time.Millisecond)
	assert.Equal(t, "v", Peek[string](c, q.Key).Data)
}

func TestInvalidateByPrefix(t *testing.T) {
	c := newTestClient(t, Options{})
	students := &counter{value: "s"}
	cases := &counter{value: "c"}
	list := Query[string]{Key: NewKey("students", "list", "grade=10"), Fn: students.fn}
	detail := Query[string]{Key: NewKey("students", "detail", "1"), Fn: students.fn}
	caseList := Query[string]{Key: NewKey("cases", "list"), Fn: cases.fn}

	Get(context.Background(), c, list)
	Get(context.Background(), c, detail)
	Get(context.Background(), c, caseList)

	assert.Equal(t, 0, c.Invalidate(context.Background(), NewKey("webinars")))
	assert.Equal(t, 2, c.Invalidate(context.Background(), NewKey("students")))

	Get(context.Background(), c, list)
	Get(context.Background(), c, detail)
	Get(context.Background(), c, caseList)
	assert.Equal(t, 4, students.count())
	assert.Equal(t, 1, cases.count())
}

func TestInFlightFetchCannotWriteBackAfterInvalidation(t *testing.T) {
	c := newTestClient(t, Options{})
	g := newGated("old")
	q := Query[string]{Key: NewKey("students"), Fn: g.fn}

	done := make(chan State[string], 1)
	go func() { done <- Get(context.Background(), c, q) }()
	<-g.started

	c.Invalidate(context.Background(), NewKey("students"))
	close(g.release)
	<-done

	assert.Empty(t, Peek[string](c, q.Key).Data)

	g.value.Store("new")
	st := Get(context.Background(), c, q)
	assert.Equal(t, "new", st.Data)
	assert.Equal(t, int32(2), atomic.LoadInt32(&g.calls))
}

func TestMutationSuccessInvalidatesAndNotifies(t *testing.T) {
	rec := notify.NewRecorder(0)
	c := newTestClient(t, Options{Notifier: rec})
	f := &counter{value: "list"}
	q := Query[string]{Key: NewKey("cases", "list"), Fn: f.fn}
	Get(context.Background(), c, q)

	m := Mutation[string, string]{
		Resource:    "goals",
		Fn:          func(_ context.Context, in string) (string, error) { return "created " + in, nil },
		Invalidates: []Key{NewKey("cases")},
		Success:     "Goal created",
	}
	out, err := Mutate(context.Background(), c, m, "g-1")
	require.NoError(t, err)
	assert.Equal(t, "created g-1", out)

	assert.GreaterOrEqual(t, c.Stats().Invalidations, uint64(1))
	toasts := rec.Drain()
	require.Len(t, toasts, 1)
	assert.Equal(t, notify.LevelSuccess, toasts[0].Level)
	assert.Equal(t, "Goal created", toasts[0].Message)

	Get(context.Background(), c, q)
	assert.Equal(t, 2, f.count())
}

func TestMutationFailureLeavesCacheUntouched(t *testing.T) {
	rec := notify.NewRecorder(0)
	c := newTestClient(t, Options{Notifier: rec})
	f := &counter{value: "list"}
	q := Query[string]{Key: NewKey("students"), Fn: f.fn}
	Get(context.Background(), c, q)

	m := Mutation[string, string]{
		Resource: "students",
		Fn: func(context.Context, string) (string, error) {
			return "", appErrors.FromStatus(422, "The student number has already been taken.")
		},
	}
	_, err := Mutate(context.Background(), c, m, "x")
	require.Error(t, err)

	assert.Zero(t, c.Stats().Invalidations)
	toasts := rec.Drain()
	require.Len(t, toasts, 1)
	assert.Equal(t, notify.LevelError, toasts[0].Level)
	assert.Equal(t, "The student number has already been taken.", toasts[0].Message)

	Get(context.Background(), c, q)
	assert.Equal(t, 1, f.count())
}

func TestMutationPrefixesAlwaysIncludeResource(t *testing.T) {
	m := Mutation[int, int]{Resource: "bookings", Invalidates: []Key{nil, NewKey("analytics")}}
	assert.Equal(t, []Key{{"bookings"}, {"analytics"}}, m.Prefixes())
}

func TestObserverReceivesTransitionsAndBackgroundRefetch(t *testing.T) {
	c := newTestClient(t, Options{})
	var version int32
	fn := func(context.Context) (int32, error) { return atomic.AddInt32(&version, 1), nil }

	o := Watch(c, Query[int32]{Key: NewKey("alerts", "list"), Fn: fn})
	defer o.Close()

	var mu sync.Mutex
	var seen []State[int32]
	o.Subscribe(func(st State[int32]) {
		mu.Lock()
		seen = append(seen, st)
		mu.Unlock()
	})

	st := o.Load(context.Background())
	require.Equal(t, StatusSuccess, st.Status)
	assert.Equal(t, int32(1), st.Data)

	c.Invalidate(context.Background(), NewKey("alerts"))
	require.Eventually(t, func() bool { return o.State().Status == StatusSuccess && o.State().Data == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, uint64(1), c.Stats().Refetches)

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(seen), 3)
	assert.Equal(t, StatusIdle, seen[0].Status)
	assert.Equal(t, StatusLoading, seen[1].Status)
	assert.Equal(t, StatusSuccess, seen[2].Status)
}

func TestObserverSetQuerySwitchesKey(t *testing.T) {
	c := newTestClient(t, Options{})
	fn := func(grade string) func(context.Context) (string, error) {
		return func(context.Context) (string, error) { return "grade " + grade, nil }
	}
	key := func(grade string) Key { return ParamsKey(NewKey("students", "list"), url.Values{"grade": {grade}}) }

	o := Watch(c, Query[string]{Key: key("10"), Fn: fn("10")})
	defer o.Close()
	assert.Equal(t, "grade 10", o.Load(context.Background()).Data)

	st := o.SetQuery(context.Background(), Query[string]{Key: key("11"), Fn: fn("11")})
	assert.Equal(t, "grade 11", st.Data)
	assert.Equal(t, "grade 11", o.State().Data)

	st = o.SetQuery(context.Background(), Query[string]{Key: key(""), Fn: fn(""), Disabled: true})
	assert.Equal(t, StatusIdle, st.Status)
	assert.Equal(t, StatusIdle, o.State().Status)
}

func TestClosedObserverDiscardsLateResults(t *testing.T) {
	c := newTestClient(t, Options{})
	g := newGated("late")
	o := Watch(c, Query[string]{Key: NewKey("webinars"), Fn: g.fn})

	var delivered int32
	o.Subscribe(func(st State[string]) {
		if st.Status == StatusSuccess {
			atomic.AddInt32(&delivered, 1)
		}
	})

	done := make(chan struct{})
	go func() {
		o.Load(context.Background())
		close(done)
	}()
	<-g.started
	o.Close()
	close(g.release)
	<-done

	assert.Zero(t, atomic.LoadInt32(&delivered))
	assert.NotEqual(t, StatusSuccess, o.State().Status)

	c.Invalidate(context.Background(), NewKey("webinars"))
	assert.Equal(t, uint64(0), c.Stats().Refetches)
}

func TestSweepDropsUnobservedEntries(t *testing.T) {
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	c := newTestClient(t, Options{GCTime: time.Minute, Now: func() time.Time { return now }})
	f := &counter{value: "v"}

	Get(context.Background(), c, Query[string]{Key: NewKey("students"), Fn: f.fn})
	o := Watch(c, Query[string]{Key: NewKey("cases"), Fn: f.fn})
	defer o.Close()
	o.Load(context.Background())

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, c.Sweep())
	assert.Equal(t, 1, c.Stats().Entries)
}

func TestPersistedResultsWarmOtherClients(t *testing.T) {
	provider, err := cache.NewRistretto(1 << 20)
	require.NoError(t, err)
	store := cache.NewStore(provider, nil, cache.NewLocalGenStore(0, 0), cache.Options{Namespace: "test"})
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	type student struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	f := &counter{}
	fn := func(ctx context.Context) ([]student, error) {
		f.fn(ctx)
		return []student{{ID: "1", Name: "Alice"}}, nil
	}
	q := Query[[]student]{Key: NewKey("students", "list"), Fn: fn}

	first := newTestClient(t, Options{Store: store})
	require.Equal(t, StatusSuccess, Get(context.Background(), first, q).Status)

	second := newTestClient(t, Options{Store: store})
	st := Get(context.Background(), second, q)
	require.Equal(t, StatusSuccess, st.Status)
	assert.Equal(t, "Alice", st.Data[0].Name)
	assert.Equal(t, 1, f.count())

	first.Invalidate(context.Background(), NewKey("students"))
	third := newTestClient(t, Options{Store: store})
	Get(context.Background(), third, q)
	assert.Equal(t, 2, f.count())
}

func TestStateResult(t *testing.T) {
	boom := errors.New("boom")
	v, err := State[int]{Status: StatusError, Data: 3, Err: boom}.Result()
	assert.Equal(t, 3, v)
	assert.ErrorIs(t, err, boom)
}
