package main

import (
	"context"
	_ "courtslot/docs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"courtslot/internal/availability"
	"courtslot/internal/config"
	"courtslot/internal/db"
	"courtslot/internal/logger"
	"courtslot/internal/server"
)

// @title CourtSlot API
// @version 1.0
// @description API for sports court reservation and credit wallet system.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {

	logger.Init()
	logger.Info("Starting CourtSlot application")
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Info("Connecting to database...")
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, "migrations"); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	var cache *availability.Cache
	if cfg.RedisAddr != "" && cfg.AvailabilityCacheTTL > 0 {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		cache = availability.NewCache(redisClient, time.Duration(cfg.AvailabilityCacheTTL)*time.Second)
		logger.Info("Availability cache enabled", "addr", cfg.RedisAddr, "ttl_seconds", cfg.AvailabilityCacheTTL)
	} else {
		logger.Info("Availability cache disabled")
	}

	srv := server.New(database, cfg, cache)

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(cfg.Port); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}
