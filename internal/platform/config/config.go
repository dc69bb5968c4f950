package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Client captures what the record client needs to reach the collection.
type Client struct {
	BaseURL string
	Timeout time.Duration
}

// Store captures reference RecordStore server configuration.
type Store struct {
	Addr     string
	BasePath string
	Backend  string // memory, redis, postgres
	LogLevel string
	Redis    RedisConfig
	Postgres PostgresConfig
}

// RedisConfig configures the Redis-backed store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig configures the Postgres-backed store.
type PostgresConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// ClientFromEnv builds a Client config from environment variables. The base
// URL is always explicit configuration, never a package constant.
func ClientFromEnv() Client {
	return Client{
		BaseURL: envString("RECORDS_BASE_URL", "http://localhost:8081/records"),
		Timeout: envDuration("RECORDS_TIMEOUT", 10*time.Second),
	}
}

// StoreFromEnv builds a Store config from environment variables so main stays lean.
func StoreFromEnv() Store {
	return Store{
		Addr:     envString("RECORDSTORE_ADDR", ":8081"),
		BasePath: normalizeBasePath(envString("RECORDSTORE_BASE_PATH", "/records")),
		Backend:  strings.ToLower(envString("RECORDSTORE_BACKEND", BackendMemory)),
		LogLevel: envString("LOG_LEVEL", "info"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: PostgresConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
		},
	}
}

func normalizeBasePath(p string) string {
	p = "/" + strings.Trim(strings.TrimSpace(p), "/")
	return p
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
