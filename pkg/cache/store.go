package cache

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Observer receives cache timing events.
type Observer interface {
	RecordCacheOperation(hit bool, duration time.Duration)
	ObserveCacheWrite(duration time.Duration)
}

// Options configures a Store.
type Options struct {
	Namespace string
	TTL       time.Duration
	Logger    *zap.Logger
	Metrics   Observer
}

// Store persists encoded values keyed by group and key. Entries carry the
// generation of their group at fetch time and are discarded once the group
// has been bumped past it.
type Store struct {
	provider Provider
	codec    Codec
	gens     GenStore
	ns       string
	ttl      time.Duration
	logger   *zap.Logger
	metrics  Observer
}

// NewStore wires the persistence pieces. A nil provider yields a disabled
// store whose operations are no-ops.
func NewStore(provider Provider, codec Codec, gens GenStore, opts Options) *Store {
	if codec == nil {
		codec = jsonCodec{}
	}
	if gens == nil {
		gens = NewLocalGenStore(0, 0)
	}
	if opts.Namespace == "" {
		opts.Namespace = "wellness"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Store{
		provider: provider,
		codec:    codec,
		gens:     gens,
		ns:       opts.Namespace,
		ttl:      opts.TTL,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
	}
}

// Enabled reports whether entries are actually persisted.
func (s *Store) Enabled() bool {
	return s != nil && s.provider != nil
}

func (s *Store) storageKey(key string) string { return "q:" + s.ns + ":" + key }

// Generation returns the current generation of group.
func (s *Store) Generation(ctx context.Context, group string) (uint64, error) {
	if s == nil {
		return 0, nil
	}
	return s.gens.Snapshot(ctx, group)
}

// Load decodes the entry for key into dest. ok is false on a miss, on a
// corrupt entry and on an entry from an older generation.
func (s *Store) Load(ctx context.Context, group, key string, dest any) (storedAt time.Time, ok bool, err error) {
	if !s.Enabled() {
		return time.Time{}, false, nil
	}
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordCacheOperation(ok, time.Since(start))
		}
	}()

	sk := s.storageKey(key)
	raw, hit, err := s.provider.Get(ctx, sk)
	if err != nil {
		s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return time.Time{}, false, err
	}
	if !hit {
		return time.Time{}, false, nil
	}

	gen, storedAt, payload, err := DecodeEntry(raw)
	if err != nil {
		s.drop(ctx, sk, "corrupt")
		return time.Time{}, false, nil
	}
	current, err := s.gens.Snapshot(ctx, group)
	if err != nil {
		return time.Time{}, false, err
	}
	if gen != current {
		s.drop(ctx, sk, "stale generation")
		return time.Time{}, false, nil
	}
	if err := s.codec.Unmarshal(payload, dest); err != nil {
		s.drop(ctx, sk, "undecodable")
		return time.Time{}, false, nil
	}
	return storedAt, true, nil
}

// Save writes value for key unless group has moved past gen since the
// caller took its snapshot.
func (s *Store) Save(ctx context.Context, group, key string, gen uint64, value any) error {
	if !s.Enabled() {
		return nil
	}
	current, err := s.gens.Snapshot(ctx, group)
	if err != nil {
		return err
	}
	if current != gen {
		return nil
	}
	payload, err := s.codec.Marshal(value)
	if err != nil {
		return err
	}
	entry := EncodeEntry(gen, time.Now(), payload)

	start := time.Now()
	_, err = s.provider.Set(ctx, s.storageKey(key), entry, int64(len(entry)), s.ttl)
	if s.metrics != nil {
		s.metrics.ObserveCacheWrite(time.Since(start))
	}
	if err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return err
}

// Invalidate bumps the generation of group, orphaning its stored entries.
func (s *Store) Invalidate(ctx context.Context, group string) error {
	if s == nil {
		return nil
	}
	if _, err := s.gens.Bump(ctx, group); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("group", group), zap.Error(err))
		return err
	}
	return nil
}

// Close releases the provider and generation store.
func (s *Store) Close(ctx context.Context) error {
	if s == nil {
		return nil
	}
	var errs []error
	if s.provider != nil {
		errs = append(errs, s.provider.Close(ctx))
	}
	errs = append(errs, s.gens.Close(ctx))
	return errors.Join(errs...)
}

func (s *Store) drop(ctx context.Context, storageKey, reason string) {
	if err := s.provider.Del(ctx, storageKey); err != nil {
		s.logger.Debug("cache delete failed", zap.String("key", storageKey), zap.Error(err))
	}
	s.logger.Debug("cache entry dropped", zap.String("key", storageKey), zap.String("reason", reason))
}
