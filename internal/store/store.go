// File: internal/store/store.go
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/framesmith/api/schemas"
)

const createGenerationLogs = `
	CREATE TABLE IF NOT EXISTS generation_logs (
		id UUID PRIMARY KEY,
		prompt_id TEXT NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		completion TEXT NOT NULL,
		variables JSONB NOT NULL DEFAULT '{}'::jsonb,
		prompt_tokens INTEGER NOT NULL DEFAULT 0,
		completion_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);
`

const insertGenerationLog = `
	INSERT INTO generation_logs (id, prompt_id, provider, model, completion, variables, prompt_tokens, completion_tokens, latency_ms, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
`

// DBPool is an interface that abstracts the pgxpool.Pool to allow for mocking in tests.
type DBPool interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store persists generation telemetry to PostgreSQL.
type Store struct {
	pool DBPool
	log  *zap.Logger
}

// New creates a new store instance and verifies the connection.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("database pool is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{
		pool: pool,
		log:  logger.Named("store"),
	}, nil
}

// EnsureSchema creates the generation_logs table if it is missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createGenerationLogs); err != nil {
		return fmt.Errorf("failed to create generation_logs table: %w", err)
	}
	return nil
}

// Record implements schemas.TelemetrySink. A zero ID or timestamp is filled
// in before the insert.
func (s *Store) Record(ctx context.Context, entry schemas.GenerationLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	variables := entry.Variables
	if variables == nil {
		variables = map[string]string{}
	}
	varsJSON, err := json.Marshal(variables)
	if err != nil {
		return fmt.Errorf("failed to marshal generation variables: %w", err)
	}

	tag, err := s.pool.Exec(ctx, insertGenerationLog,
		entry.ID, entry.PromptID, entry.Provider, entry.Model, entry.Completion,
		varsJSON, entry.PromptTokens, entry.CompletionTokens,
		entry.Latency.Milliseconds(), entry.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert generation log: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("unexpected rows affected inserting generation log: %d", tag.RowsAffected())
	}

	s.log.Debug("Recorded generation", zap.Stringer("id", entry.ID), zap.String("prompt_id", entry.PromptID))
	return nil
}
