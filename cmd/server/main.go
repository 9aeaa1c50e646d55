package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/vytor/numguess/internal/api"
	"github.com/vytor/numguess/internal/config"
	"github.com/vytor/numguess/internal/db"
	"github.com/vytor/numguess/internal/logger"
	"github.com/vytor/numguess/internal/repository/sqlite"
	"github.com/vytor/numguess/internal/services"
	"github.com/vytor/numguess/internal/worker"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(cfg.LogColors),
		logger.WithJSON(strings.EqualFold(cfg.LogFormat, "json")),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("NumGuess Server Starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("access_token_ttl=%v", cfg.AccessTokenTTL)
	log.Debug("refresh_token_ttl=%v", cfg.RefreshTokenTTL)
	log.Debug("stats_reconcile_interval=%v", cfg.StatsReconcileInterval)
	log.Debug("request_timeout=%v", cfg.RequestTimeout)

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	store := sqlite.NewStore(database.DB)

	// Initialize services
	authService := services.NewAuthService(store, services.AuthConfig{
		Secret:     []byte(cfg.JWTSecret),
		Issuer:     cfg.JWTIssuer,
		Audience:   cfg.JWTAudience,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
		BcryptCost: cfg.BcryptCost,
	})
	gameService := services.NewGameService(store)
	statsService := services.NewStatsService(store)

	srv := &api.Server{
		AuthService:    authService,
		GameService:    gameService,
		StatsService:   statsService,
		DB:             store,
		RequestTimeout: cfg.RequestTimeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	reconciler := worker.NewScheduler(
		&worker.EnsureStatisticsJob{Stats: statsService},
		cfg.StatsReconcileInterval,
		cfg.StatsReconcileRetry,
	)
	reconciler.Start(ctx)

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping statistics reconciler")
	cancel()
	reconciler.Stop()

	log.Info("===========================================")
	log.Info("NumGuess Server Stopped")
	log.Info("===========================================")
}
