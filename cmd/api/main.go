// Package main is the entry point for the Molad API server.
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

	"github.com/zapponejosh/molad-api/internal/api"
	"github.com/zapponejosh/molad-api/internal/calendar"
	"github.com/zapponejosh/molad-api/internal/config"
	"github.com/zapponejosh/molad-api/internal/database"
	"github.com/zapponejosh/molad-api/internal/logger"
	"github.com/zapponejosh/molad-api/internal/refresh"
	"github.com/zapponejosh/molad-api/internal/zmanim"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.Setup(cfg)

	log.Info("starting molad API",
		slog.String("env", cfg.Env),
		slog.Int("port", cfg.Port),
		slog.String("log_level", cfg.LogLevel),
		slog.String("default_location", cfg.DefaultLocationName),
	)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(database.DefaultConfig(cfg.DatabasePath), log)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if _, err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	// The default location is always tracked by the refresher.
	if _, err := db.EnsureLocation(ctx, cfg.DefaultLocation()); err != nil {
		return fmt.Errorf("ensure default location: %w", err)
	}

	solar := zmanim.NewProvider(
		zmanim.WithCandleLighting(time.Duration(cfg.CandleLightingMinutes)*time.Minute),
		zmanim.WithHavdalah(time.Duration(cfg.HavdalahMinutes)*time.Minute),
	)
	resolver := calendar.NewResolver(solar)
	refresher := refresh.New(db, resolver, log)

	// Refresh once at startup, then on schedule. Failures are logged only.
	if _, err := refresher.RefreshAll(ctx); err != nil {
		log.Warn("initial refresh incomplete", slog.Any("error", err))
	}
	if cfg.RefreshSchedule != "" {
		if err := refresher.Start(cfg.RefreshSchedule); err != nil {
			return err
		}
		defer refresher.Stop()
	}

	handlers := api.NewHandlers(db, resolver, refresher, cfg, log)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           api.SetupRoutes(handlers, cfg, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("molad API ready", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
