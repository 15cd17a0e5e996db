package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mohammed-shakir/aperture-engine/internal/aperture"
	"github.com/mohammed-shakir/aperture-engine/internal/cache/maskcache"
	"github.com/mohammed-shakir/aperture-engine/internal/cache/redisstore"
	"github.com/mohammed-shakir/aperture-engine/internal/core/config"
	"github.com/mohammed-shakir/aperture-engine/internal/core/health"
	"github.com/mohammed-shakir/aperture-engine/internal/core/observability"
	"github.com/mohammed-shakir/aperture-engine/internal/core/router"
	"github.com/mohammed-shakir/aperture-engine/internal/core/server"
	"github.com/mohammed-shakir/aperture-engine/internal/logger"
	"github.com/mohammed-shakir/aperture-engine/internal/metrics"
	"github.com/mohammed-shakir/aperture-engine/internal/settings"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.FromEnv()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		return 2
	}

	zl := logger.Build(logger.Config{
		Level:      cfg.LogLevel,
		Console:    cfg.LogConsole,
		SampleN:    cfg.LogSampleN,
		Instrument: cfg.CacheNamespace,
		Component:  "aperture-server",
	}, os.Stdout)
	appLog := logger.NewSlog(&zl)

	observability.ExposeBuildInfo(Version)
	appLog.Info("starting aperture server",
		"addr", cfg.Addr,
		"version", Version,
		"redis", cfg.RedisAddr,
		"settings", len(cfg.Settings))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, err := metrics.Init(metrics.Config{
		Addr: cfg.MetricsAddr,
		Path: cfg.MetricsPath,
		Build: metrics.BuildInfo{
			Version:   os.Getenv("BUILD_VERSION"),
			Revision:  os.Getenv("BUILD_REVISION"),
			Branch:    os.Getenv("BUILD_BRANCH"),
			BuildDate: os.Getenv("BUILD_DATE"),
		},
	})
	if err != nil {
		appLog.Error("metrics setup failed", "err", err)
		return 1
	}

	var tiers []maskcache.Cache
	if cfg.MaskCacheSize > 0 {
		tiers = append(tiers, maskcache.NewLRU(cfg.MaskCacheSize))
	}
	ready := map[string]health.Pinger{}
	if cfg.RedisAddr != "" {
		dialCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		rc, err := redisstore.New(dialCtx, cfg.RedisAddr)
		cancel()
		if err != nil {
			appLog.Error("redis connect failed", "addr", cfg.RedisAddr, "err", err)
			return 1
		}
		defer func() { _ = rc.Close() }()
		ready["redis"] = rc
		tiers = append(tiers, maskcache.NewRedis(rc,
			maskcache.WithTTL(cfg.MaskCacheTTL),
			maskcache.WithOpTimeout(cfg.CacheOpTimeout),
			maskcache.WithLogger(appLog.With("component", "maskcache"))))
	}

	opts := []aperture.Option{
		aperture.WithLogger(appLog.With("component", "aperture")),
		aperture.WithCacheNamespace(cfg.CacheNamespace),
		aperture.WithMaxPixels(cfg.MaxMaskPixels),
	}
	if len(tiers) > 0 {
		opts = append(opts, aperture.WithMaskCache(maskcache.NewTiered(tiers...)))
	}
	aperture.RegisterFactories(opts...)

	deps := server.Deps{
		Apertures: router.New(appLog, settings.New(cfg.Settings), cfg.NRoundCorners, opts...),
		Metrics:   p.Handler(),
		Ready:     ready,
	}

	if cfg.MetricsEnabled {
		serveMetrics(ctx, appLog, cfg, p)
	}

	if err := server.Run(ctx, cfg, appLog, deps); err != nil {
		appLog.Error("server exited with error", "err", err)
		return 1
	}
	appLog.Info("server stopped")
	return 0
}

// serveMetrics exposes the registry on its own listener until ctx ends.
func serveMetrics(ctx context.Context, log *slog.Logger, cfg config.Config, p *metrics.Provider) {
	mux := http.NewServeMux()
	mux.Handle(cfg.MetricsPath, p.Handler())

	srv := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Info("metrics listening", "addr", cfg.MetricsAddr, "path", cfg.MetricsPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server exited", "err", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("metrics shutdown error", "err", err)
		}
	}()
}
