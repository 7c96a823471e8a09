package main

import (
	"context"
	"log"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/kingdom-engine/internal/config"
	"github.com/jwebster45206/kingdom-engine/internal/handlers"
	"github.com/jwebster45206/kingdom-engine/internal/logger"
	"github.com/jwebster45206/kingdom-engine/internal/middleware"
	"github.com/jwebster45206/kingdom-engine/internal/services"
	internalstorage "github.com/jwebster45206/kingdom-engine/internal/storage"
	"github.com/jwebster45206/kingdom-engine/internal/worker"
	"github.com/jwebster45206/kingdom-engine/pkg/court"
	"github.com/jwebster45206/kingdom-engine/pkg/crisis"
	"github.com/jwebster45206/kingdom-engine/pkg/state"
	"github.com/jwebster45206/kingdom-engine/pkg/storage"
	"github.com/jwebster45206/kingdom-engine/pkg/textfilter"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Kingdom Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"llm_provider", cfg.LLMProvider,
		"model_name", cfg.ModelName,
		"storage_backend", cfg.StorageBackend)

	catalog, err := crisis.DefaultCatalog()
	if err != nil {
		log.Error("Failed to load crisis catalog", "error", err)
		os.Exit(1)
	}
	tables, err := court.DefaultTables()
	if err != nil {
		log.Error("Failed to load court tables", "error", err)
		os.Exit(1)
	}

	store, err := openStorage(cfg, log)
	if err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	llmService, err := services.NewLLMService(cfg, log)
	if err != nil {
		log.Error("Invalid LLM provider specified", "error", err)
		os.Exit(1)
	}
	initCtx, initCancel := context.WithTimeout(context.Background(), time.Minute)
	if err := llmService.InitModel(initCtx, cfg.ModelName); err != nil {
		log.Warn("LLM unavailable, events will use the fallback court", "error", err, "provider", llmService.Name())
	}
	initCancel()

	seed := cfg.RandomSeed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	engine := state.NewEngine(catalog, rng, log)
	presenter := worker.NewEventPresenter(llmService, tables, rng, cfg.NarrativeTimeout, log)
	switch cfg.DialogueFilter {
	case config.FilterFull:
		presenter.WithFilter(textfilter.New(true))
	case config.FilterCoarse:
		presenter.WithFilter(textfilter.New(false))
	}
	processor := worker.NewTurnProcessor(engine, presenter, store, log)

	mux := http.NewServeMux()
	mux.Handle("/health", handlers.NewHealthHandler(store, llmService, log))

	kingdomHandler := handlers.NewKingdomHandler(processor, log)
	mux.Handle("/v1/kingdom", kingdomHandler)
	mux.Handle("/v1/kingdom/", kingdomHandler)

	mux.Handle("/v1/crises", handlers.NewCrisesHandler(catalog, log))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      middleware.Logger(log)(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.NarrativeTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Server exited")
}

func openStorage(cfg *config.Config, log *slog.Logger) (storage.Storage, error) {
	if cfg.StorageBackend == config.BackendSQLite {
		sqliteStore, err := internalstorage.OpenSQLite(cfg.SQLitePath, log)
		if err != nil {
			return nil, err
		}
		return sqliteStore, nil
	}

	redisStore, err := internalstorage.NewRedisStorage(cfg.RedisURL, cfg.SnapshotTTL, log)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := redisStore.WaitForConnection(ctx); err != nil {
		_ = redisStore.Close()
		return nil, err
	}
	return redisStore, nil
}
