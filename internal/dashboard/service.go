// Package dashboard orchestrates the fetch, analyze and publish cycle that
// keeps the result bundle warm for the presentation layer.
package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"coinsniper/internal/analysis"
	"coinsniper/internal/indicator"
	"coinsniper/internal/market"
	"coinsniper/internal/model"
	"coinsniper/internal/strategy"
)

// Fetcher is the history-fetch dependency. Implementations never error; a
// failed symbol comes back as an empty series.
type Fetcher interface {
	FetchHistory(ctx context.Context, symbol string, tf model.Timeframe) model.Series
}

// Hooks receives pipeline events for metrics. All methods may be called
// concurrently; a nil Hooks disables them.
type Hooks interface {
	AnalysisDone(dur time.Duration)
	TickReceived()
	TickDropped()
}

// Config assembles a Service.
type Config struct {
	Fetcher   Fetcher
	Engine    *analysis.Engine
	Timeframe model.Timeframe
	Hooks     Hooks
	Log       *slog.Logger

	// OnBundle is invoked with every freshly computed bundle (refresh,
	// live tick, simulation). Called while no internal lock is held.
	OnBundle func(*model.ResultBundle)
}

// Service owns the series book and the latest result bundle. Refresh,
// simulation and timeframe changes are serialized; live ticks take a
// non-blocking fast path with at most one re-analysis in flight.
type Service struct {
	fetch Fetcher
	eng   *analysis.Engine
	book  *market.Book
	hooks Hooks
	log   *slog.Logger

	onBundle func(*model.ResultBundle)

	mu        sync.Mutex
	tf        model.Timeframe
	bundle    *model.ResultBundle
	simTarget *float64 // non-nil while simulation mode is active

	tickMu   sync.Mutex
	tickBusy bool
}

// New creates the dashboard service. No fetch is performed until Refresh.
func New(cfg Config) *Service {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	tf := cfg.Timeframe
	if !tf.Valid() {
		tf = model.Timeframe1d
	}
	return &Service{
		fetch:    cfg.Fetcher,
		eng:      cfg.Engine,
		book:     market.NewBook(),
		hooks:    cfg.Hooks,
		log:      log,
		onBundle: cfg.OnBundle,
		tf:       tf,
	}
}

// Refresh fetches the whole universe concurrently, replaces the series book
// and re-runs the analysis. The previous bundle is preserved when the
// benchmark series comes back empty.
func (s *Service) Refresh(ctx context.Context) {
	s.mu.Lock()
	tf := s.tf
	s.mu.Unlock()

	data := s.fetchAll(ctx, tf)
	s.book.Replace(data)

	s.mu.Lock()
	s.analyzeLocked()
	bundle := s.bundle
	s.mu.Unlock()

	s.publish(bundle)
}

// fetchAll fans out one history fetch per symbol and joins on completion.
func (s *Service) fetchAll(ctx context.Context, tf model.Timeframe) model.SeriesMap {
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	data := make(model.SeriesMap, len(s.eng.Symbols))

	start := time.Now()
	for _, sym := range s.eng.Symbols {
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			series := s.fetch.FetchHistory(ctx, sym, tf)
			mu.Lock()
			data[sym] = series
			mu.Unlock()
		}(sym)
	}
	wg.Wait()

	s.log.Info("universe fetched",
		"symbols", len(data), "timeframe", tf, "took", time.Since(start))
	return data
}

// analyzeLocked re-runs the engine over the current book snapshot and swaps
// in the new bundle. Caller holds s.mu.
func (s *Service) analyzeLocked() {
	start := time.Now()
	b := s.eng.Analyze(s.book.Snapshot(), s.simTarget)
	if s.hooks != nil {
		s.hooks.AnalysisDone(time.Since(start))
	}
	if b == nil {
		s.log.Warn("analysis returned no bundle, keeping previous")
		return
	}
	s.bundle = b
}

func (s *Service) publish(b *model.ResultBundle) {
	if b != nil && s.onBundle != nil {
		s.onBundle(b)
	}
}

// Bundle returns the latest result bundle, nil before the first successful
// refresh.
func (s *Service) Bundle() *model.ResultBundle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bundle
}

// Timeframe returns the active candle interval.
func (s *Service) Timeframe() model.Timeframe {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tf
}

// SetTimeframe switches the candle interval and refetches the universe.
func (s *Service) SetTimeframe(ctx context.Context, tf model.Timeframe) bool {
	if !tf.Valid() {
		return false
	}
	s.mu.Lock()
	changed := s.tf != tf
	s.tf = tf
	s.mu.Unlock()

	if changed {
		s.Refresh(ctx)
	}
	return true
}

// HandleTick applies a live price to the newest candle and re-analyzes.
// Non-blocking: it drops the tick when a re-analysis is already in flight or
// while simulation mode is active.
func (s *Service) HandleTick(symbol string, price float64) {
	if s.hooks != nil {
		s.hooks.TickReceived()
	}

	s.mu.Lock()
	simActive := s.simTarget != nil
	s.mu.Unlock()
	if simActive {
		s.dropTick()
		return
	}

	s.tickMu.Lock()
	if s.tickBusy {
		s.tickMu.Unlock()
		s.dropTick()
		return
	}
	s.tickBusy = true
	s.tickMu.Unlock()

	go func() {
		defer func() {
			s.tickMu.Lock()
			s.tickBusy = false
			s.tickMu.Unlock()
		}()

		if !s.book.ApplyTick(symbol, price) {
			return
		}

		s.mu.Lock()
		if s.simTarget != nil {
			// Simulation started while the tick was in flight.
			s.mu.Unlock()
			s.dropTick()
			return
		}
		s.analyzeLocked()
		bundle := s.bundle
		s.mu.Unlock()

		s.publish(bundle)
	}()
}

func (s *Service) dropTick() {
	if s.hooks != nil {
		s.hooks.TickDropped()
	}
}

// Simulate re-analyzes the current snapshot against a hypothetical benchmark
// price. Live ticks are dropped until ResetSimulation. Returns false for a
// non-positive target.
func (s *Service) Simulate(target float64) bool {
	if target <= 0 {
		return false
	}

	s.mu.Lock()
	t := target
	s.simTarget = &t
	s.analyzeLocked()
	bundle := s.bundle
	s.mu.Unlock()

	s.log.Info("simulation applied", "target_btc", target)
	s.publish(bundle)
	return true
}

// ResetSimulation leaves simulation mode and re-analyzes against the real
// current benchmark close.
func (s *Service) ResetSimulation() {
	s.mu.Lock()
	s.simTarget = nil
	s.analyzeLocked()
	bundle := s.bundle
	s.mu.Unlock()

	s.log.Info("simulation reset")
	s.publish(bundle)
}

// SimulationActive reports whether a simulated benchmark price is in effect.
func (s *Service) SimulationActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.simTarget != nil
}

// Recommendation builds the strategy list and ATR position sizing for one
// symbol from the latest bundle and its raw history. ok is false when the
// symbol has no row in the current bundle.
func (s *Service) Recommendation(symbol string, capital, riskPercent float64) ([]model.Strategy, model.PositionSize, bool) {
	s.mu.Lock()
	bundle := s.bundle
	s.mu.Unlock()
	if bundle == nil {
		return nil, model.PositionSize{}, false
	}
	row := bundle.Result(symbol)
	if row == nil {
		return nil, model.PositionSize{}, false
	}

	hist := s.book.Snapshot()[symbol]
	atr := indicator.ATR(hist, indicator.DefaultATRPeriod)
	sizing := strategy.Size(row.CurrentPrice, atr, capital, riskPercent, strategy.DefaultATRMultiplier)

	return strategy.Recommend(*row), sizing, true
}
