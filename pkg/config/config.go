package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Persistence backends for the query cache.
const (
	PersistNone      = "none"
	PersistRistretto = "ristretto"
	PersistBigcache  = "bigcache"
	PersistRedis     = "redis"
)

// Credential storage backends.
const (
	CredentialMemory = "memory"
	CredentialFile   = "file"
	CredentialRedis  = "redis"
	CredentialSQL    = "sql"
)

type Config struct {
	Env string

	API         APIConfig
	Log         LogConfig
	Cache       CacheConfig
	Credentials CredentialConfig
	Redis       RedisConfig
	Database    DatabaseConfig
	Notify      NotifyConfig
	Export      ExportConfig
	Metrics     MetricsConfig
}

// APIConfig points the client at the backend.
type APIConfig struct {
	BaseURL string
	// Timeout of zero leaves requests unbounded.
	Timeout   time.Duration
	UserAgent string
}

type LogConfig struct {
	Level  string
	Format string
}

// CacheConfig tunes the query cache and its optional persistence.
type CacheConfig struct {
	StaleTime      time.Duration
	GCTime         time.Duration
	Persist        string
	Codec          string
	GenStore       string
	Namespace      string
	PersistTTL     time.Duration
	MaxCostMB      int64
	RefetchWorkers int
}

// CredentialConfig selects where the bearer token slot lives.
type CredentialConfig struct {
	Backend    string
	File       string
	Passphrase string
	Slot       string
}

// RedisConfig addresses the shared redis. Addrs, when set, overrides
// Host and Port and may list cluster nodes or sentinels (with MasterName).
type RedisConfig struct {
	Host        string
	Port        int
	Addrs       []string
	MasterName  string
	Password    string
	DB          int
	DialTimeout time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// NotifyConfig controls transient user notifications.
type NotifyConfig struct {
	ToastTTL time.Duration
}

// ExportConfig controls where table exports are written.
type ExportConfig struct {
	Dir string
}

// MetricsConfig controls client metrics. A non-empty File receives the
// Prometheus text dump at the end of every command and turns metrics on.
type MetricsConfig struct {
	Enabled bool
	File    string
}

// Load reads configuration from the environment and an optional .env file.
func Load(envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	v.SetConfigFile(".env")
	if len(envFiles) > 0 && envFiles[0] != "" {
		v.SetConfigFile(envFiles[0])
	}
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")

	cfg.API = APIConfig{
		BaseURL:   strings.TrimRight(v.GetString("API_BASE_URL"), "/"),
		Timeout:   parseDuration(v.GetString("API_TIMEOUT"), 0),
		UserAgent: v.GetString("API_USER_AGENT"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Cache = CacheConfig{
		StaleTime:      parseDuration(v.GetString("CACHE_STALE_TIME"), 30*time.Second),
		GCTime:         parseDuration(v.GetString("CACHE_GC_TIME"), 5*time.Minute),
		Persist:        strings.ToLower(v.GetString("CACHE_PERSIST")),
		Codec:          strings.ToLower(v.GetString("CACHE_CODEC")),
		GenStore:       strings.ToLower(v.GetString("CACHE_GENSTORE")),
		Namespace:      v.GetString("CACHE_NAMESPACE"),
		PersistTTL:     parseDuration(v.GetString("CACHE_PERSIST_TTL"), 10*time.Minute),
		MaxCostMB:      v.GetInt64("CACHE_MAX_COST_MB"),
		RefetchWorkers: v.GetInt("REFETCH_WORKERS"),
	}

	cfg.Credentials = CredentialConfig{
		Backend:    strings.ToLower(v.GetString("CREDENTIAL_BACKEND")),
		File:       v.GetString("CREDENTIAL_FILE"),
		Passphrase: v.GetString("CREDENTIAL_PASSPHRASE"),
		Slot:       v.GetString("CREDENTIAL_SLOT"),
	}

	cfg.Redis = RedisConfig{
		Host:        v.GetString("REDIS_HOST"),
		Port:        v.GetInt("REDIS_PORT"),
		Addrs:       splitList(v.GetString("REDIS_ADDRS")),
		MasterName:  v.GetString("REDIS_MASTER_NAME"),
		Password:    v.GetString("REDIS_PASSWORD"),
		DB:          v.GetInt("REDIS_DB"),
		DialTimeout: parseDuration(v.GetString("REDIS_DIAL_TIMEOUT"), 5*time.Second),
	}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Notify = NotifyConfig{
		ToastTTL: parseDuration(v.GetString("TOAST_TTL"), 4*time.Second),
	}

	cfg.Export = ExportConfig{Dir: v.GetString("EXPORT_DIR")}

	cfg.Metrics = MetricsConfig{
		Enabled: v.GetBool("ENABLE_METRICS"),
		File:    v.GetString("METRICS_FILE"),
	}
	if cfg.Metrics.File != "" {
		cfg.Metrics.Enabled = true
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)

	v.SetDefault("API_BASE_URL", "http://localhost:8000/api")
	v.SetDefault("API_TIMEOUT", "")
	v.SetDefault("API_USER_AGENT", "wellness-client")

	v.SetDefault("LOG_LEVEL", "warn")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("CACHE_STALE_TIME", "30s")
	v.SetDefault("CACHE_GC_TIME", "5m")
	v.SetDefault("CACHE_PERSIST", PersistNone)
	v.SetDefault("CACHE_CODEC", "json")
	v.SetDefault("CACHE_GENSTORE", "local")
	v.SetDefault("CACHE_NAMESPACE", "wellness")
	v.SetDefault("CACHE_PERSIST_TTL", "10m")
	v.SetDefault("CACHE_MAX_COST_MB", 64)
	v.SetDefault("REFETCH_WORKERS", 2)

	v.SetDefault("CREDENTIAL_BACKEND", CredentialFile)
	v.SetDefault("CREDENTIAL_FILE", "")
	v.SetDefault("CREDENTIAL_PASSPHRASE", "")
	v.SetDefault("CREDENTIAL_SLOT", "token")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "wellness_client")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 2)
	v.SetDefault("DB_MAX_IDLE_CONNS", 1)

	v.SetDefault("TOAST_TTL", "4s")
	v.SetDefault("EXPORT_DIR", "./exports")
	v.SetDefault("ENABLE_METRICS", false)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}
