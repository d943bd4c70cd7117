package config

import (
	"os"
	"strconv"
	"time"
)

const (
	CatalogRemote = "remote"
	CatalogStatic = "static"

	SessionMemory = "memory"
	SessionRedis  = "redis"
)

type Config struct {
	AppEnv   string
	LogLevel string

	HTTPPort        int
	ShutdownTimeout time.Duration

	CatalogSource  string
	CatalogURL     string
	CatalogTimeout time.Duration

	SessionBackend string
	RedisAddr      string
	SessionTTL     time.Duration
	SessionIdle    time.Duration

	CheckoutConcurrency int

	OTLPEndpoint string
}

func Load() Config {
	return Config{
		AppEnv:   getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		HTTPPort:        getEnvInt("HTTP_PORT", 8080),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		CatalogSource:  getEnv("CATALOG_SOURCE", CatalogRemote),
		CatalogURL:     getEnv("CATALOG_URL", "https://fakestoreapi.com/products"),
		CatalogTimeout: getEnvDuration("CATALOG_TIMEOUT", 0),

		SessionBackend: getEnv("SESSION_BACKEND", SessionMemory),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		SessionTTL:     getEnvDuration("SESSION_TTL", 24*time.Hour),
		SessionIdle:    getEnvDuration("SESSION_IDLE", 30*time.Minute),

		CheckoutConcurrency: getEnvInt("CHECKOUT_CONCURRENCY", 10),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)

	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}

// getEnvDuration accepts Go duration strings ("90s", "24h"). A bare integer
// is read as seconds.
func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	if d, err := time.ParseDuration(v); err == nil {
		return d
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return time.Duration(n) * time.Second
}
