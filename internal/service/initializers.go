// File: internal/service/initializers.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/xkilldash9x/framesmith/api/schemas"
	"github.com/xkilldash9x/framesmith/internal/config"
	"github.com/xkilldash9x/framesmith/internal/llmclient"
	"github.com/xkilldash9x/framesmith/internal/store"
)

// InitializeTelemetrySink connects to PostgreSQL when a database URL is
// configured and otherwise falls back to logging generation records. The
// returned pool is nil for the log sink; the caller closes it otherwise.
func InitializeTelemetrySink(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (schemas.TelemetrySink, *pgxpool.Pool, error) {
	if cfg.URL == "" {
		logger.Debug("No database configured; generation telemetry goes to the log.")
		return store.NewLogSink(logger), nil, nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to parse PGX pool config: %w", err)
	}
	// A CLI run records at most a handful of rows.
	poolConfig.MaxConns = 2
	poolConfig.MinConns = 0
	poolConfig.MaxConnLifetime = 1 * time.Hour
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to create PGX connection pool: %w", err)
	}

	dbStore, err := store.New(ctx, pool, logger)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	if err := dbStore.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	logger.Debug("Telemetry store initialized.")
	return dbStore, pool, nil
}

// InitializeLLMClient creates a new LLM client based on the configuration.
func InitializeLLMClient(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (schemas.LLMClient, error) {
	llmClient, err := llmclient.NewClient(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize LLM client. Code generation will fail.", zap.Error(err))
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}
	return llmClient, nil
}
