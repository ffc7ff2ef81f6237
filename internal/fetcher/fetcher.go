// Package fetcher retrieves historical candles and live prices from public
// exchange APIs.
//
// The package boundary converts every failure into an empty/neutral value:
// a symbol whose sources all fail yields an empty series so the analysis can
// still run over the remaining universe.
package fetcher

import (
	"context"
	"log/slog"
	"time"

	"coinsniper/internal/model"
)

// Source fetches historical candles for one symbol from a single upstream.
type Source interface {
	// History returns candles newest-first for the symbol at the given
	// timeframe. The fallback source may return synthetic OHLC
	// (open=high=low=close, volume 0).
	History(ctx context.Context, symbol string, tf model.Timeframe) (model.Series, error)

	// Name identifies the source in logs and metrics.
	Name() string
}

// SeriesCache is an optional read-through cache consulted before the primary
// source. Implementations must be safe for concurrent use.
type SeriesCache interface {
	Get(ctx context.Context, symbol string, tf model.Timeframe) (model.Series, bool)
	Put(ctx context.Context, symbol string, tf model.Timeframe, s model.Series)
}

// Observer receives fetch outcome notifications for metrics. All methods may
// be called concurrently.
type Observer interface {
	FetchDone(source string, outcome string, dur time.Duration)
	FallbackTried()
	CacheHit(hit bool)
}

// Client orchestrates primary-then-fallback history fetching with an
// optional cache.
type Client struct {
	Primary  Source
	Fallback Source
	Cache    SeriesCache // nil disables caching
	Obs      Observer    // nil disables fetch metrics

	log *slog.Logger
}

// New creates a fetch client. fallback and cache may be nil.
func New(primary, fallback Source, cache SeriesCache, obs Observer, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{Primary: primary, Fallback: fallback, Cache: cache, Obs: obs, log: log}
}

// FetchHistory returns the newest-first candle series for a symbol, or an
// empty series when every source fails. It never returns an error — partial
// analysis over the remaining symbols is preferred over a failed cycle.
func (c *Client) FetchHistory(ctx context.Context, symbol string, tf model.Timeframe) model.Series {
	if c.Cache != nil {
		if s, ok := c.Cache.Get(ctx, symbol, tf); ok && len(s) > 0 {
			c.observeCache(true)
			return s
		}
		c.observeCache(false)
	}

	if s := c.fetchFrom(ctx, c.Primary, symbol, tf); len(s) > 0 {
		c.store(ctx, symbol, tf, s)
		return s
	}

	if c.Fallback == nil {
		return model.Series{}
	}
	if c.Obs != nil {
		c.Obs.FallbackTried()
	}
	c.log.Warn("primary source failed, trying fallback",
		"symbol", symbol, "fallback", c.Fallback.Name())
	if s := c.fetchFrom(ctx, c.Fallback, symbol, tf); len(s) > 0 {
		c.store(ctx, symbol, tf, s)
		return s
	}

	c.log.Error("all history sources failed", "symbol", symbol, "timeframe", tf)
	return model.Series{}
}

func (c *Client) fetchFrom(ctx context.Context, src Source, symbol string, tf model.Timeframe) model.Series {
	if src == nil {
		return nil
	}
	start := time.Now()
	s, err := src.History(ctx, symbol, tf)
	if err != nil {
		c.observe(src.Name(), "error", time.Since(start))
		c.log.Warn("history fetch failed",
			"source", src.Name(), "symbol", symbol, "err", err)
		return nil
	}
	c.observe(src.Name(), "ok", time.Since(start))
	return s
}

func (c *Client) store(ctx context.Context, symbol string, tf model.Timeframe, s model.Series) {
	if c.Cache != nil {
		c.Cache.Put(ctx, symbol, tf, s)
	}
}

func (c *Client) observe(source, outcome string, dur time.Duration) {
	if c.Obs != nil {
		c.Obs.FetchDone(source, outcome, dur)
	}
}

func (c *Client) observeCache(hit bool) {
	if c.Obs != nil {
		c.Obs.CacheHit(hit)
	}
}
