package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mohammed-shakir/aperture-engine/internal/core/config"
	"github.com/mohammed-shakir/aperture-engine/internal/core/health"
	middleware "github.com/mohammed-shakir/aperture-engine/internal/core/middleware"
	"github.com/mohammed-shakir/aperture-engine/internal/core/router"
)

// Deps are the collaborators wired into the routes. Metrics and Ready may be nil.
type Deps struct {
	Apertures *router.Handler
	Metrics   http.Handler
	Ready     map[string]health.Pinger
}

// Routes builds the chi router.
func Routes(cfg config.Config, logger *slog.Logger, d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS())

	r.Get("/healthz", health.Liveness())
	r.Get("/readyz", health.Readiness(d.Ready, cfg.CacheOpTimeout))
	if d.Metrics != nil {
		r.Method(http.MethodGet, cfg.MetricsPath, d.Metrics)
	}
	r.Route("/v1/apertures", func(r chi.Router) {
		r.Post("/edges", d.Apertures.Edges())
		r.Post("/masks", d.Apertures.Masks())
	})
	return r
}

// sets up http and starts serving
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, d Deps) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           Routes(cfg, logger, d),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listen", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
