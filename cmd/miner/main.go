// Package main is the entry point for the per-user subgraph miner.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kjpark/graphminer/internal/api"
	"github.com/kjpark/graphminer/internal/config"
	"github.com/kjpark/graphminer/internal/ingest"
	"github.com/kjpark/graphminer/internal/pipeline"
	"github.com/kjpark/graphminer/internal/store"
	"github.com/kjpark/graphminer/internal/store/clickhouse"
	"github.com/kjpark/graphminer/internal/store/fanout"
	"github.com/kjpark/graphminer/internal/store/sqlite"
	"github.com/kjpark/graphminer/internal/worker"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	configPath := getEnv("GRAPHMINER_CONFIG", "graphminer.yaml")
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("loading config failed", "error", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("miner exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	schemaFile, err := os.Open(cfg.SchemaFile)
	if err != nil {
		return fmt.Errorf("opening schema file: %w", err)
	}
	defer schemaFile.Close()

	shared, err := pipeline.LoadSchema(schemaFile, pipeline.Config{
		StartClass:       cfg.StartClass,
		EndClasses:       cfg.EndClasses,
		OptionClasses:    cfg.OptionClasses,
		MaxDepth:         cfg.MaxDepth,
		WatchingProperty: "UserWatching",
	})
	if err != nil {
		return fmt.Errorf("loading schema: %w", err)
	}
	logger.Info("loaded schema", "paths", len(shared.Paths), "start_class", cfg.StartClass)

	resultStore, err := newStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("constructing result store: %w", err)
	}
	defer func() {
		if err := resultStore.Close(); err != nil {
			logger.Error("closing result store", "error", err)
		}
	}()

	byUser, err := ingest.LoadTriplesDir(cfg.TriplesDir)
	if err != nil {
		return fmt.Errorf("loading triples: %w", err)
	}

	runs := make([]pipeline.UserRun, 0, len(byUser))
	for userID, triples := range byUser {
		runs = append(runs, pipeline.NewUserRun(shared, userID, triples))
	}
	logger.Info("loaded users", "count", len(runs))

	pool := worker.New(shared, resultStore, worker.Config{Concurrency: cfg.Concurrency}, logger)

	apiServer := api.NewServer(cfg.APIAddr, resultStore)
	errChan := make(chan error, 1)
	go func() {
		logger.Info("starting inspection API", "addr", cfg.APIAddr)
		if err := apiServer.Start(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	batchDone := make(chan struct{})
	var summary worker.Summary
	var batchErr error
	go func() {
		summary, batchErr = pool.RunAll(ctx, runs)
		close(batchDone)
	}()

	select {
	case err := <-errChan:
		return err
	case <-batchDone:
		logger.Info("mining batch complete", "mined", summary.Mined, "skipped", summary.Skipped, "failed", summary.Failed)
		if batchErr != nil {
			return fmt.Errorf("mining batch: %w", batchErr)
		}
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutting down API server", "error", err)
	}

	return nil
}

func newStore(cfg config.Config, logger *slog.Logger) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendSQLite, "":
		return sqlite.New(sqlite.DefaultConfig(cfg.SQLitePath))

	case config.BackendClickHouse:
		chCfg := clickhouse.DefaultConfig()
		chCfg.Addr = cfg.ClickHouse.Addr
		chCfg.Database = cfg.ClickHouse.Database
		chCfg.Username = cfg.ClickHouse.Username
		chCfg.Password = cfg.ClickHouse.Password
		return clickhouse.New(context.Background(), chCfg)

	case config.BackendDual:
		primary, err := sqlite.New(sqlite.DefaultConfig(cfg.SQLitePath))
		if err != nil {
			return nil, fmt.Errorf("constructing primary sqlite store: %w", err)
		}
		chCfg := clickhouse.DefaultConfig()
		chCfg.Addr = cfg.ClickHouse.Addr
		chCfg.Database = cfg.ClickHouse.Database
		chCfg.Username = cfg.ClickHouse.Username
		chCfg.Password = cfg.ClickHouse.Password
		secondary, err := clickhouse.New(context.Background(), chCfg)
		if err != nil {
			return nil, fmt.Errorf("constructing secondary clickhouse store: %w", err)
		}
		return fanout.New(fanout.Config{Primary: primary, Secondary: secondary, Logger: logger}), nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
