package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures everything the server needs from its environment.
type Config struct {
	Addr     string
	LogLevel string

	// PostgresURL enables the Postgres-backed stores when set; the server
	// falls back to in-memory stores otherwise.
	PostgresURL string

	Redis RedisConfig

	// IssuerSecret keys the credential issuer. Required.
	IssuerSecret string

	// CredentialWindow is how far ahead of the request day issued
	// credentials expire.
	CredentialWindow time.Duration

	// AccountCacheTTL bounds staleness of cached account snapshots.
	AccountCacheTTL time.Duration

	// RateLimit allows this many requests per client IP per RateWindow.
	// Zero disables the throttle.
	RateLimit  int
	RateWindow time.Duration
}

// RedisConfig holds connection settings for the account cache. An empty URL
// disables Redis.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Addr:         getenv("VEIL_ADDR", ":8080"),
		LogLevel:     getenv("VEIL_LOG_LEVEL", "info"),
		PostgresURL:  os.Getenv("VEIL_POSTGRES_URL"),
		IssuerSecret: os.Getenv("VEIL_ISSUER_SECRET"),
		Redis: RedisConfig{
			URL:          os.Getenv("VEIL_REDIS_URL"),
			PoolSize:     getenvInt("VEIL_REDIS_POOL_SIZE", 10),
			MinIdleConns: getenvInt("VEIL_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getenvDuration("VEIL_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getenvDuration("VEIL_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getenvDuration("VEIL_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		CredentialWindow: getenvDuration("VEIL_CREDENTIAL_WINDOW", 7*24*time.Hour),
		AccountCacheTTL:  getenvDuration("VEIL_ACCOUNT_CACHE_TTL", 30*time.Second),
		RateLimit:        getenvInt("VEIL_RATE_LIMIT", 100),
		RateWindow:       getenvDuration("VEIL_RATE_WINDOW", time.Minute),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
