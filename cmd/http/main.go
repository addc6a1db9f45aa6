package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"filedepot/internal/audit"
	"filedepot/internal/config"
	"filedepot/internal/secrets"
	"filedepot/internal/server"
	"filedepot/internal/storage"
)

func main() {
	// Initialize structured logging
	jsonHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(jsonHandler))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Secret provider: env-backed, with a Redis TTL cache in front when a
	// Redis host is configured.
	var secretProvider secrets.Provider = secrets.NewEnv("")
	if config.RedisHost != "" {
		addr := fmt.Sprintf("%s:%d", config.RedisHost, config.RedisPort)
		cached, err := secrets.NewRedisCache(ctx, addr, secretProvider,
			time.Duration(config.SecretCacheTTL)*time.Minute, config.SecretCachePref)
		if err != nil {
			slog.Error("Failed to initialize secret cache", "error", err)
			os.Exit(1)
		}
		defer cached.Close()
		secretProvider = cached
	}

	// Storage backend, chosen by configuration
	provider, err := storage.CreateProviderFromConfig(ctx, secretProvider)
	if err != nil {
		slog.Error("Failed to create storage backend", "error", err)
		os.Exit(1)
	}

	// Audit log
	recorder, err := audit.Open(config.AuditDBPath)
	if err != nil {
		slog.Error("Failed to open audit log", "error", err)
		os.Exit(1)
	}
	defer recorder.Close()

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := server.NewServer(port, provider, recorder)

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server failed to start", "error", err)
			cancel()
		}
	}()

	slog.Info("Filedepot HTTP server started", "port", port, "backend", config.StorageBackend)

	// Wait for shutdown signal
	select {
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig)
	case <-ctx.Done():
		slog.Info("Context cancelled")
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped")
}
