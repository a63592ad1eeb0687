// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	api "storefront/internal/adapters/in/http/api"
	"storefront/internal/adapters/in/http/middleware"
	appcfg "storefront/internal/infra/config"
	"storefront/internal/infra/logging"
	"storefront/internal/platform/di"
	shared "storefront/internal/platform/di/shared"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := appcfg.Load()
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Options{Development: cfg.LogDevelopment, File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Named("boot")

	// ─────────────────────────────────────────────────────────────
	// Start listening ASAP with lightweight router (healthz only)
	// ─────────────────────────────────────────────────────────────
	healthRouter := chi.NewRouter()
	healthRouter.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	healthRouter.Get("/healthz", api.Healthz)

	switcher := newAtomicHandler(healthRouter)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      switcher,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ─────────────────────────────────────────────────────────────
	// Lifetime management (infra/container/scheduler)
	// ─────────────────────────────────────────────────────────────
	lc := newLifecycle(ctx, 2*time.Minute)
	shuttingDown := make(chan struct{})
	idleConnsClosed := make(chan struct{})

	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		sig := <-c

		close(shuttingDown)
		log.Info("received signal, shutting down", zap.String("signal", sig.String()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("server shutdown error", zap.Error(err))
		}
		lc.shutdown(shutdownCtx, log)
		close(idleConnsClosed)
	}()

	// Start server NOW (Cloud Run startup requirement)
	serveErr := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("port", cfg.Port), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// ─────────────────────────────────────────────────────────────
	// Heavy DI init in background; then swap handler to the full router
	// ─────────────────────────────────────────────────────────────
	go func() {
		defer lc.initFinished()
		initCtx := lc.initCtx

		inf, err := shared.NewInfra(initCtx, cfg, logger)
		if err != nil {
			log.Warn("shared infra init failed, serving /healthz only", zap.Error(err))
			return
		}
		lc.track("infra", inf.Close)

		cont, err := di.Build(initCtx, inf)
		if err != nil {
			log.Warn("di init failed, serving /healthz only", zap.Error(err))
			return
		}
		lc.track("container", cont.Close)

		select {
		case <-shuttingDown:
			return
		default:
		}

		if err := cont.CatalogUC.Refresh(initCtx); err != nil {
			log.Warn("initial catalog refresh failed", zap.Error(err))
		}

		sched, err := startCatalogRefresh(cfg.CatalogRefreshSpec, cont, logger)
		if err != nil {
			log.Warn("catalog refresh schedule disabled", zap.String("spec", cfg.CatalogRefreshSpec), zap.Error(err))
		} else {
			lc.track("catalog_refresh", func() error {
				<-sched.Stop().Done()
				return nil
			})
		}

		switcher.Store(cont.Router)
		log.Info("handler switched to api router")
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	case <-idleConnsClosed:
	}
	log.Info("server stopped")
	return nil
}

// startCatalogRefresh re-reads the catalog snapshot on the cron schedule.
func startCatalogRefresh(spec string, cont *di.Container, logger *zap.Logger) (*cron.Cron, error) {
	log := logger.Named("catalog_refresh")
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := cont.CatalogUC.Refresh(ctx); err != nil {
			log.Warn("refresh failed, serving previous snapshot",
				zap.Time("snapshotAt", cont.CatalogUC.SnapshotTime()), zap.Error(err))
			return
		}
		log.Debug("refreshed", zap.Int("products", len(cont.CatalogUC.Snapshot())))
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
