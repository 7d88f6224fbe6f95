// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
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

	"github.com/vsa-campus/vsa-site/internal/auth"
	"github.com/vsa-campus/vsa-site/internal/catalog"
	"github.com/vsa-campus/vsa-site/internal/commands"
	"github.com/vsa-campus/vsa-site/internal/config"
	"github.com/vsa-campus/vsa-site/internal/handler"
	"github.com/vsa-campus/vsa-site/internal/logger"
	"github.com/vsa-campus/vsa-site/internal/service"
	"github.com/vsa-campus/vsa-site/internal/storage"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "hash-password" {
		os.Exit(commands.HashPassword(os.Args[2:]))
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx := context.Background()

	// ── 1. Open the catalog store ─────────────────────────────────────────
	store, err := storage.Open(ctx, cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("closing store", zap.Error(err))
		}
	}()
	log.Info("storage ready", zap.String("backend", cfg.Storage.Backend))

	// ── 2. Rehydrate the catalog ─────────────────────────────────────────
	cat := catalog.Open(ctx, store,
		catalog.WithLogger(log.Named("catalog")),
		catalog.WithKey(cfg.CatalogKey),
	)
	if cfg.CatalogSeed {
		if n := cat.Seed(catalog.DefaultEvents(time.Now())); n > 0 {
			log.Info("seeded catalog with default events", zap.Int("events", n))
		}
	}
	cat.Subscribe(func(ch catalog.Change) {
		log.Debug("catalog changed",
			zap.String("kind", string(ch.Kind)),
			zap.String("event_id", ch.Event.ID),
			zap.String("title", ch.Event.Title),
		)
	})

	// ── 3. Wire up layers ────────────────────────────────────────────────
	eventHandler := handler.NewEventHandler(service.NewEventService(cat, log.Named("events")), log)
	intakeHandler := handler.NewIntakeHandler(service.NewIntakeService("VSA", log), log)

	routes := handler.RouterConfig{
		Events:      eventHandler,
		Intake:      intakeHandler,
		SiteURL:     cfg.SiteURL,
		StaticDir:   cfg.StaticDir,
		CORSOrigins: cfg.CORSOrigins,
		Log:         log,
	}

	authn, err := auth.LoadFile(cfg.AdminAuthFile, log.Named("auth"))
	switch {
	case err == nil:
		routes.AdminAuth = authn.Middleware
		log.Info("admin console enabled", zap.String("user", authn.User()))
	case errors.Is(err, auth.ErrNoCredentials):
		log.Warn("admin console disabled, run hash-password to create credentials",
			zap.String("file", cfg.AdminAuthFile))
	default:
		return fmt.Errorf("admin auth: %w", err)
	}

	// ── 4. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.NewRouter(routes),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.Int("events", cat.Len()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case sig := <-quit:
		log.Info("shutting down server", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
