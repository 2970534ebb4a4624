package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/minhasfinancas/internal/auth"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/cache"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/config"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/database"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/entry"
	entryStore "github.com/MrJamesThe3rd/minhasfinancas/internal/entry/store"
	events "github.com/MrJamesThe3rd/minhasfinancas/internal/events/kafka"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/export"
	apiHttp "github.com/MrJamesThe3rd/minhasfinancas/internal/http"
	entryHandler "github.com/MrJamesThe3rd/minhasfinancas/internal/http/entry"
	exportHandler "github.com/MrJamesThe3rd/minhasfinancas/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/minhasfinancas/internal/http/importcsv"
	matchingHandler "github.com/MrJamesThe3rd/minhasfinancas/internal/http/matching"
	userHandler "github.com/MrJamesThe3rd/minhasfinancas/internal/http/user"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/importer"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/minhasfinancas/internal/matching/store"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/user"
	userStore "github.com/MrJamesThe3rd/minhasfinancas/internal/user/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(cfg.Logger())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
	}

	opts := []entry.Option{}

	rdb := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if rdb != nil {
		defer rdb.Close()
		opts = append(opts, entry.WithCache(cache.NewBalanceCache(rdb, cfg.Redis.BalanceTTL)))
	}

	if len(cfg.Kafka.Brokers) > 0 {
		publisher := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer publisher.Close()

		opts = append(opts, entry.WithPublisher(publisher))
		slog.Info("publishing entry events", "topic", cfg.Kafka.Topic)
	}

	var (
		tokens          = auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenLifetime)
		userService     = user.NewService(userStore.New(db), auth.NewBcryptHasher(cfg.Auth.BcryptCost))
		entryService    = entry.NewService(entryStore.New(db), opts...)
		matchingService = matching.NewService(matchingStore.New(db))
		importService   = importer.NewService(entryService, matchingService)
		exportService   = export.NewService(entryService)
	)

	router := apiHttp.New(apiHttp.Handlers{
		Users:    userHandler.NewHandler(userService, entryService, tokens),
		Entries:  entryHandler.NewHandler(entryService, userService),
		Import:   importHandler.NewHandler(importService),
		Export:   exportHandler.NewHandler(exportService),
		Matching: matchingHandler.NewHandler(matchingService),
	}, tokens, cfg.CORS.AllowedOrigins, db)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "app", cfg.App.Name, "port", cfg.App.Port)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listening: %w", err)
		}
	case <-ctx.Done():
		slog.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}

	return nil
}
