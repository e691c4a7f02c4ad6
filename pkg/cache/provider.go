// Package cache persists query results between client runs.
//
// Values are encoded with a Codec, framed together with the generation of
// their group and written to a byte Provider. A GenStore tracks the current
// generation per group; bumping it makes every stored entry of that group
// unreadable.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/dgraph-io/ristretto"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/wellness-client/pkg/config"
)

// Provider is a byte store with TTLs. Get returns exactly the bytes
// previously passed to Set.
type Provider interface {
	// Get returns (value, true, nil) on hit and (nil, false, nil) on miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value. ok is false when the store rejected the write.
	Set(ctx context.Context, key string, value []byte, cost int64, ttl time.Duration) (ok bool, err error)
	Del(ctx context.Context, key string) error
	Close(ctx context.Context) error
}

// RistrettoProvider keeps entries in an admission-controlled in-memory cache.
type RistrettoProvider struct {
	c *ristretto.Cache
}

// NewRistretto builds an in-memory provider bounded by maxCost bytes.
func NewRistretto(maxCost int64) (*RistrettoProvider, error) {
	if maxCost <= 0 {
		return nil, errors.New("ristretto: max cost must be positive")
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxCost / 100 * 10,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &RistrettoProvider{c: c}, nil
}

func (p *RistrettoProvider) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := p.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, _ := v.([]byte)
	if b == nil {
		p.c.Del(key)
		return nil, false, nil
	}
	return b, true, nil
}

func (p *RistrettoProvider) Set(_ context.Context, key string, value []byte, cost int64, ttl time.Duration) (bool, error) {
	ok := p.c.SetWithTTL(key, value, cost, ttl)
	// make the write visible to the next Get
	p.c.Wait()
	return ok, nil
}

func (p *RistrettoProvider) Del(_ context.Context, key string) error {
	p.c.Del(key)
	return nil
}

func (p *RistrettoProvider) Close(context.Context) error {
	p.c.Close()
	return nil
}

// BigcacheProvider keeps entries in sharded byte slabs. TTL is global.
type BigcacheProvider struct {
	c *bigcache.BigCache
}

// NewBigcache builds a provider whose entries live for lifeWindow.
func NewBigcache(lifeWindow time.Duration, maxSizeMB int) (*BigcacheProvider, error) {
	conf := bigcache.DefaultConfig(lifeWindow)
	conf.Verbose = false
	if maxSizeMB > 0 {
		conf.HardMaxCacheSize = maxSizeMB
	}
	c, err := bigcache.New(context.Background(), conf)
	if err != nil {
		return nil, err
	}
	return &BigcacheProvider{c: c}, nil
}

func (p *BigcacheProvider) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, err := p.c.Get(key)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (p *BigcacheProvider) Set(_ context.Context, key string, value []byte, _ int64, _ time.Duration) (bool, error) {
	if err := p.c.Set(key, value); err != nil {
		return false, err
	}
	return true, nil
}

func (p *BigcacheProvider) Del(_ context.Context, key string) error {
	err := p.c.Delete(key)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil
	}
	return err
}

func (p *BigcacheProvider) Close(context.Context) error {
	return p.c.Close()
}

// RedisProvider stores entries in redis. The client is owned by the caller.
type RedisProvider struct {
	rdb redis.UniversalClient
}

// NewRedisProvider wraps an existing client.
func NewRedisProvider(client redis.UniversalClient) (*RedisProvider, error) {
	if client == nil {
		return nil, errors.New("redis provider: nil client")
	}
	return &RedisProvider{rdb: client}, nil
}

func (p *RedisProvider) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := p.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (p *RedisProvider) Set(ctx context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	if ttl < 0 {
		ttl = 0
	}
	if err := p.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return false, err
	}
	return true, nil
}

func (p *RedisProvider) Del(ctx context.Context, key string) error {
	return p.rdb.Del(ctx, key).Err()
}

func (p *RedisProvider) Close(context.Context) error { return nil }

// NewProvider selects the provider named by cfg.Persist. It returns nil for
// PersistNone. rdb is required only for the redis backend.
func NewProvider(cfg config.CacheConfig, rdb redis.UniversalClient) (Provider, error) {
	if cfg.MaxCostMB <= 0 {
		cfg.MaxCostMB = 64
	}
	maxCost := cfg.MaxCostMB << 20
	switch cfg.Persist {
	case "", config.PersistNone:
		return nil, nil
	case config.PersistRistretto:
		return NewRistretto(maxCost)
	case config.PersistBigcache:
		return NewBigcache(cfg.PersistTTL, int(cfg.MaxCostMB))
	case config.PersistRedis:
		return NewRedisProvider(rdb)
	default:
		return nil, fmt.Errorf("unknown cache persistence %q", cfg.Persist)
	}
}
