package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// GenStore tracks the current generation of each cache group.
type GenStore interface {
	// Snapshot returns the current generation; missing groups are 0.
	Snapshot(ctx context.Context, group string) (uint64, error)
	// Bump increments and returns the new generation.
	Bump(ctx context.Context, group string) (uint64, error)
	Close(ctx context.Context) error
}

type localGen struct {
	gen       uint64
	updatedAt time.Time
}

// LocalGenStore keeps generations in process. A background loop drops
// groups untouched for longer than retention.
type LocalGenStore struct {
	mu     sync.RWMutex
	gens   map[string]localGen
	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// NewLocalGenStore builds a store. A zero interval disables cleanup.
func NewLocalGenStore(cleanupInterval, retention time.Duration) *LocalGenStore {
	s := &LocalGenStore{gens: make(map[string]localGen)}
	if cleanupInterval > 0 && retention > 0 {
		s.stopCh = make(chan struct{})
		ticker := time.NewTicker(cleanupInterval)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					s.Cleanup(retention)
				case <-s.stopCh:
					return
				}
			}
		}()
	}
	return s
}

func (s *LocalGenStore) Snapshot(_ context.Context, group string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gens[group].gen, nil
}

func (s *LocalGenStore) Bump(_ context.Context, group string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.gens[group]
	e.gen++
	e.updatedAt = time.Now()
	s.gens[group] = e
	return e.gen, nil
}

// Cleanup drops groups not bumped within retention.
func (s *LocalGenStore) Cleanup(retention time.Duration) {
	cutoff := time.Now().Add(-retention)
	s.mu.Lock()
	for k, e := range s.gens {
		if e.updatedAt.Before(cutoff) {
			delete(s.gens, k)
		}
	}
	s.mu.Unlock()
}

func (s *LocalGenStore) Close(context.Context) error {
	s.once.Do(func() {
		if s.stopCh != nil {
			close(s.stopCh)
			s.wg.Wait()
		}
	})
	return nil
}

// RedisGenStore shares generations between client processes.
type RedisGenStore struct {
	rdb redis.UniversalClient
	ns  string
}

// NewRedisGenStore stores generations under "gen:<namespace>:<group>".
func NewRedisGenStore(client redis.UniversalClient, namespace string) *RedisGenStore {
	return &RedisGenStore{rdb: client, ns: namespace}
}

func (s *RedisGenStore) key(group string) string { return "gen:" + s.ns + ":" + group }

func (s *RedisGenStore) Snapshot(ctx context.Context, group string) (uint64, error) {
	res, err := s.rdb.Get(ctx, s.key(group)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	gen, err := strconv.ParseUint(res, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("redis gen parse: %w", err)
	}
	return gen, nil
}

func (s *RedisGenStore) Bump(ctx context.Context, group string) (uint64, error) {
	v, err := s.rdb.Incr(ctx, s.key(group)).Result()
	if err != nil {
		return 0, err
	}
	return uint64(v), nil
}

// Close leaves the shared client open.
func (s *RedisGenStore) Close(context.Context) error { return nil }
