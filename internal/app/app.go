// Package app assembles one client session from configuration.
package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/wellness-client/internal/api"
	"github.com/noah-isme/wellness-client/internal/hooks"
	"github.com/noah-isme/wellness-client/internal/metrics"
	"github.com/noah-isme/wellness-client/internal/notify"
	"github.com/noah-isme/wellness-client/internal/query"
	"github.com/noah-isme/wellness-client/internal/service"
	"github.com/noah-isme/wellness-client/pkg/cache"
	"github.com/noah-isme/wellness-client/pkg/config"
	"github.com/noah-isme/wellness-client/pkg/credential"
	"github.com/noah-isme/wellness-client/pkg/database"
	"github.com/noah-isme/wellness-client/pkg/logger"
	"github.com/noah-isme/wellness-client/pkg/storage"
)

// App owns every long-lived object of a session.
type App struct {
	Config      *config.Config
	Logger      *zap.Logger
	Metrics     *metrics.Service
	Credentials credential.Store
	API         *api.Client
	Services    *service.Set
	Query       *query.Client
	Hooks       *hooks.Hooks
	Toasts      *notify.Recorder

	store   *cache.Store
	exports *storage.ExportStore
	redis   redis.UniversalClient
	db      *sqlx.DB
}

// Options overrides pieces normally derived from configuration.
type Options struct {
	Logger      *zap.Logger
	Credentials credential.Store
	// Output receives printed toasts. Nil disables printing.
	Output io.Writer
}

// New builds a session. On error everything opened so far is released.
func New(cfg *config.Config, opts Options) (a *App, err error) {
	a = &App{Config: cfg}
	defer func() {
		if err != nil {
			a.Close()
			a = nil
		}
	}()

	a.Logger = opts.Logger
	if a.Logger == nil {
		if a.Logger, err = logger.New(cfg); err != nil {
			return a, fmt.Errorf("init logger: %w", err)
		}
	}

	if cfg.Metrics.Enabled {
		a.Metrics = metrics.New()
	}

	a.Credentials = opts.Credentials
	if a.Credentials == nil {
		if a.Credentials, err = a.openCredentials(); err != nil {
			return a, err
		}
	}

	if a.store, err = a.openCacheStore(); err != nil {
		return a, err
	}

	a.API, err = api.New(cfg.API.BaseURL, api.Options{
		Credentials: a.Credentials,
		Timeout:     cfg.API.Timeout,
		UserAgent:   cfg.API.UserAgent,
		Logger:      a.Logger,
		Metrics:     a.Metrics,
	})
	if err != nil {
		return a, err
	}
	a.Services = service.NewSet(a.API, nil, a.Logger)

	a.Toasts = notify.NewRecorder(cfg.Notify.ToastTTL)
	notifier := notify.Multi(a.Toasts, notify.NewLogNotifier(a.Logger), printer(opts.Output))

	a.Query = query.NewClient(query.Options{
		StaleTime:      cfg.Cache.StaleTime,
		GCTime:         cfg.Cache.GCTime,
		RefetchWorkers: cfg.Cache.RefetchWorkers,
		Store:          a.store,
		Metrics:        a.Metrics,
		Notifier:       notifier,
		Logger:         a.Logger,
	})
	a.Hooks = hooks.New(a.Query, a.Services)

	a.Logger.Sugar().Debugw("session ready",
		"api", a.API.BaseURL(),
		"credentials", cfg.Credentials.Backend,
		"persist", cfg.Cache.Persist,
	)
	return a, nil
}

// Exports returns the export directory, creating it on first use.
func (a *App) Exports() (*storage.ExportStore, error) {
	if a.exports == nil {
		store, err := storage.NewExportStore(a.Config.Export.Dir)
		if err != nil {
			return nil, err
		}
		a.exports = store
	}
	return a.exports, nil
}

func printer(w io.Writer) notify.Notifier {
	if w == nil {
		return nil
	}
	return notify.NewPrinter(w)
}

func (a *App) redisClient() (redis.UniversalClient, error) {
	if a.redis != nil {
		return a.redis, nil
	}
	client, err := cache.NewRedis(context.Background(), a.Config.Redis)
	if err != nil {
		return nil, err
	}
	a.redis = client
	return client, nil
}

func (a *App) openCredentials() (credential.Store, error) {
	cfg := a.Config.Credentials
	switch cfg.Backend {
	case config.CredentialMemory:
		return credential.NewMemoryStore(), nil
	case "", config.CredentialFile:
		return credential.NewFileStore(cfg.File, cfg.Passphrase), nil
	case config.CredentialRedis:
		rdb, err := a.redisClient()
		if err != nil {
			return nil, fmt.Errorf("credential store: %w", err)
		}
		return credential.NewRedisStore(rdb, cfg.Slot), nil
	case config.CredentialSQL:
		db, err := database.NewPostgres(context.Background(), a.Config.Database)
		if err != nil {
			return nil, err
		}
		a.db = db
		return credential.NewSQLStore(db, cfg.Slot), nil
	default:
		return nil, fmt.Errorf("unknown credential backend %q", cfg.Backend)
	}
}

func (a *App) openCacheStore() (*cache.Store, error) {
	cfg := a.Config.Cache

	var (
		rdb redis.UniversalClient
		err error
	)
	if cfg.Persist == config.PersistRedis || cfg.GenStore == "redis" {
		if rdb, err = a.redisClient(); err != nil {
			return nil, fmt.Errorf("cache store: %w", err)
		}
	}

	provider, err := cache.NewProvider(cfg, rdb)
	if err != nil {
		return nil, err
	}
	codec, err := cache.NewCodec(cfg.Codec)
	if err != nil {
		if provider != nil {
			_ = provider.Close(context.Background())
		}
		return nil, err
	}

	var gens cache.GenStore
	if rdb != nil && cfg.GenStore == "redis" {
		gens = cache.NewRedisGenStore(rdb, cfg.Namespace)
	} else {
		gens = cache.NewLocalGenStore(time.Minute, cfg.PersistTTL)
	}

	var observer cache.Observer
	if a.Metrics != nil {
		observer = a.Metrics
	}
	return cache.NewStore(provider, codec, gens, cache.Options{
		Namespace: cfg.Namespace,
		TTL:       cfg.PersistTTL,
		Logger:    a.Logger,
		Metrics:   observer,
	}), nil
}

// Close stops background work and releases connections.
func (a *App) Close() {
	if a.Query != nil {
		a.Query.Close()
	}
	if a.store != nil {
		if err := a.store.Close(context.Background()); err != nil {
			a.log().Warn("close cache store", zap.Error(err))
		}
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
}

func (a *App) log() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}
