package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Marcoby-Dev-Ops/nexus-agent-runtime/internal/config"
	"github.com/Marcoby-Dev-Ops/nexus-agent-runtime/internal/knowledge"
	"github.com/Marcoby-Dev-Ops/nexus-agent-runtime/internal/runtime/registry"
	"github.com/Marcoby-Dev-Ops/nexus-agent-runtime/internal/server"
	"github.com/Marcoby-Dev-Ops/nexus-agent-runtime/internal/storage"
	"github.com/Marcoby-Dev-Ops/nexus-agent-runtime/internal/storage/memory"
	"github.com/Marcoby-Dev-Ops/nexus-agent-runtime/internal/storage/sqlite"
	"github.com/Marcoby-Dev-Ops/nexus-agent-runtime/internal/telemetry"
	"github.com/Marcoby-Dev-Ops/nexus-agent-runtime/internal/tokens"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	shutdownTracer, err := telemetry.Init("nexus-agent-runtime", cfg.Environment, logger)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}()

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}

	// Construct and certify the runtime up front so misconfiguration is
	// caught at startup, not on the first request.
	rt, err := registry.Get(&registry.Options{Config: cfg})
	if err != nil {
		log.Fatalf("Failed to build runtime: %v", err)
	}
	logger.Info("runtime ready",
		slog.String("id", rt.RuntimeInfo().ID),
		slog.String("base_url", rt.RuntimeInfo().BaseURL))

	svc := knowledge.NewService(store, tokens.NewTiktokenEstimator())
	handler := server.NewHandler(cfg, svc, nil)
	srv := server.New(cfg.Server.Port, logger, handler)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received, stopping server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("server shutdown complete")
}

func openStore(cfg *config.Config) (storage.Reader, error) {
	switch cfg.Storage.Type {
	case "sqlite":
		return sqlite.New(cfg.Storage.SQLite.Path)
	case "memory", "":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Storage.Type)
	}
}
