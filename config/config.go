package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"coinsniper/internal/model"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// HTTP
	BindAddr    string
	MetricsAddr string

	// Upstream sources (overridable for tests and simulations)
	BinanceBaseURL   string
	CoinGeckoBaseURL string
	StreamURL        string

	// Optional Redis series cache
	RedisAddr     string
	RedisPassword string
	RedisTTL      time.Duration

	// Pipeline
	Timeframe   model.Timeframe
	RefreshCron string

	LogLevel string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		BindAddr:    getEnv("BIND_ADDR", ":8080"),
		MetricsAddr: getEnv("METRICS_ADDR", ":9090"),

		BinanceBaseURL:   getEnv("BINANCE_BASE_URL", "https://api.binance.com"),
		CoinGeckoBaseURL: getEnv("COINGECKO_BASE_URL", "https://api.coingecko.com"),
		StreamURL:        getEnv("STREAM_URL", "wss://stream.binance.com:9443"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTTL:      getEnvDuration("REDIS_TTL", 5*time.Minute),

		Timeframe:   loadTimeframe("TIMEFRAME", model.Timeframe1d),
		RefreshCron: getEnv("REFRESH_CRON", "*/5 * * * *"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// loadTimeframe reads a timeframe env var, falling back when the value is not
// one of the supported intervals.
func loadTimeframe(key string, fallback model.Timeframe) model.Timeframe {
	v := model.Timeframe(os.Getenv(key))
	if v == "" {
		return fallback
	}
	if !v.Valid() {
		log.Printf("[config] unsupported %s value %q, using %s", key, v, fallback)
		return fallback
	}
	return v
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		if secs, serr := strconv.Atoi(v); serr == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
		log.Printf("[config] invalid %s value %q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
