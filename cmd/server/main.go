package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"coinsniper/config"
	"coinsniper/internal/analysis"
	"coinsniper/internal/dashboard"
	"coinsniper/internal/fetcher"
	"coinsniper/internal/gateway"
	"coinsniper/internal/logger"
	"coinsniper/internal/metrics"
	"coinsniper/internal/model"
	"coinsniper/internal/scheduler"
	"coinsniper/internal/store/rediscache"
)

// streamRedialDelay spaces reconnect attempts after the upstream stream
// drops. The stream itself never reconnects; that policy lives here.
const streamRedialDelay = 5 * time.Second

// pipelineHooks bridges dashboard events onto metrics and health.
type pipelineHooks struct {
	m      *metrics.Metrics
	health *metrics.HealthStatus
}

func (h *pipelineHooks) AnalysisDone(dur time.Duration) {
	h.m.AnalysisRuns.Inc()
	h.m.AnalysisDur.Observe(dur.Seconds())
	h.health.SetLastAnalysisAt(time.Now())
}

func (h *pipelineHooks) TickReceived() {
	h.m.TicksTotal.Inc()
	h.health.SetLastTickTime(time.Now())
}

func (h *pipelineHooks) TickDropped() {
	h.m.DroppedTicks.Inc()
}

func main() {
	cfg := config.Load()
	log := logger.Init("coinsniper", logger.ParseLevel(cfg.LogLevel))
	log.Info("starting", "bind", cfg.BindAddr, "timeframe", cfg.Timeframe)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.NewMetrics()
	health := metrics.NewHealthStatus()
	metricsSrv := metrics.NewServer(cfg.MetricsAddr, health, log)
	metricsSrv.Start()

	// Optional Redis series cache; the pipeline runs fine without it.
	var cache fetcher.SeriesCache
	if cfg.RedisAddr != "" {
		c, err := rediscache.New(rediscache.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			TTL:      cfg.RedisTTL,
		}, log)
		if err != nil {
			log.Warn("redis unavailable, continuing without series cache", "err", err)
		} else {
			defer c.Close()
			cache = c
			health.SetRedisConnected(true)
		}
	}

	primary := fetcher.NewBinance(cfg.BinanceBaseURL)
	fallback := fetcher.NewCoinGecko(cfg.CoinGeckoBaseURL)
	client := fetcher.New(primary, fallback, cache, m, log)

	hub := gateway.NewHub(log)
	hub.OnClientCount = func(n int) { m.WSClients.Set(float64(n)) }

	engine := analysis.NewEngine(model.Symbols, model.Benchmark)
	svc := dashboard.New(dashboard.Config{
		Fetcher:   client,
		Engine:    engine,
		Timeframe: cfg.Timeframe,
		Hooks:     &pipelineHooks{m: m, health: health},
		Log:       log,
		OnBundle:  hub.Publish,
	})

	log.Info("running initial refresh")
	svc.Refresh(ctx)

	sched := scheduler.New(ctx, svc, log)
	if err := sched.Register(cfg.RefreshCron); err != nil {
		log.Error("invalid refresh cron spec", "spec", cfg.RefreshCron, "err", err)
		os.Exit(1)
	}
	sched.Start()

	// Live stream with re-dial here at the composition root.
	var (
		streamMu sync.Mutex
		stream   *fetcher.Stream
	)
	var openStream func()
	openStream = func() {
		if ctx.Err() != nil {
			return
		}
		s := fetcher.ConnectStream(fetcher.StreamConfig{
			URL:      cfg.StreamURL,
			Symbols:  model.Symbols,
			OnUpdate: svc.HandleTick,
			OnStatus: func(st fetcher.StreamStatus) {
				switch st {
				case fetcher.StreamConnected:
					health.SetStreamConnected(true)
				case fetcher.StreamError, fetcher.StreamDisconnected:
					health.SetStreamConnected(false)
					m.StreamReconnects.Inc()
					log.Warn("stream down, scheduling redial", "status", st)
					time.AfterFunc(streamRedialDelay, openStream)
				}
			},
			Log: log,
		})
		streamMu.Lock()
		stream = s
		streamMu.Unlock()
	}
	openStream()

	mux := http.NewServeMux()
	gateway.RegisterRoutes(mux, svc, hub, log)
	srv := &http.Server{Addr: cfg.BindAddr, Handler: mux}

	go func() {
		log.Info("http server listening", "addr", cfg.BindAddr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Error("http server error", "err", err)
			cancel()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Info("shutting down", "signal", sig.String())
	case <-ctx.Done():
	}

	cancel()
	streamMu.Lock()
	if stream != nil {
		stream.Close()
	}
	streamMu.Unlock()
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)
	metricsSrv.Stop(shutdownCtx)
	log.Info("stopped")
}
