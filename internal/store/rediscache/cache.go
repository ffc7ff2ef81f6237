// Package rediscache is an optional TTL cache for fetched candle series. It
// shields the upstream APIs from repeated identical history requests; the
// service runs fine without it.
package rediscache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"coinsniper/internal/model"
)

// Config configures the Redis series cache.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Cache stores candle series in Redis keyed by symbol and timeframe. It
// implements fetcher.SeriesCache; every failure degrades to a miss.
type Cache struct {
	client *goredis.Client
	ttl    time.Duration
	log    *slog.Logger
}

// New connects to Redis and pings it. An unreachable server returns an error
// so the caller can continue without caching.
func New(cfg Config, log *slog.Logger) (*Cache, error) {
	if log == nil {
		log = slog.Default()
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	log.Info("redis series cache connected", "addr", cfg.Addr, "ttl", ttl)
	return &Cache{client: client, ttl: ttl, log: log}, nil
}

func key(symbol string, tf model.Timeframe) string {
	return "series:" + string(tf) + ":" + symbol
}

// Get returns the cached series for symbol+timeframe. Any Redis or decode
// failure reads as a miss.
func (c *Cache) Get(ctx context.Context, symbol string, tf model.Timeframe) (model.Series, bool) {
	raw, err := c.client.Get(ctx, key(symbol, tf)).Bytes()
	if err == goredis.Nil {
		return nil, false
	}
	if err != nil {
		c.log.Warn("cache read failed", "symbol", symbol, "err", err)
		return nil, false
	}

	var s model.Series
	if err := json.Unmarshal(raw, &s); err != nil {
		c.log.Warn("cache entry corrupt, dropping", "symbol", symbol, "err", err)
		c.client.Del(ctx, key(symbol, tf))
		return nil, false
	}
	return s, true
}

// Put stores a series with the configured TTL. Best effort; failures are
// logged and swallowed.
func (c *Cache) Put(ctx context.Context, symbol string, tf model.Timeframe, s model.Series) {
	raw, err := json.Marshal(s)
	if err != nil {
		c.log.Warn("cache encode failed", "symbol", symbol, "err", err)
		return
	}
	if err := c.client.Set(ctx, key(symbol, tf), raw, c.ttl).Err(); err != nil {
		c.log.Warn("cache write failed", "symbol", symbol, "err", err)
	}
}

// Ping reports whether Redis is still reachable, for health checks.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (c *Cache) Close() error {
	return c.client.Close()
}
