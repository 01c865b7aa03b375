// File: internal/store/log_sink.go
package store

import (
	"context"

	"go.uber.org/zap"

	"github.com/xkilldash9x/framesmith/api/schemas"
)

// LogSink writes generation records to the log instead of a database. The
// completion and variable values are summarized by length.
type LogSink struct {
	log *zap.Logger
}

// NewLogSink creates a sink that logs through logger.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{log: logger.Named("telemetry")}
}

// Record implements schemas.TelemetrySink.
func (s *LogSink) Record(ctx context.Context, entry schemas.GenerationLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sizes := make(map[string]int, len(entry.Variables))
	for k, v := range entry.Variables {
		sizes[k] = len(v)
	}
	s.log.Info("Generation complete",
		zap.String("prompt_id", entry.PromptID),
		zap.String("provider", entry.Provider),
		zap.String("model", entry.Model),
		zap.Int("completion_bytes", len(entry.Completion)),
		zap.Any("variable_bytes", sizes),
		zap.Int("prompt_tokens", entry.PromptTokens),
		zap.Int("completion_tokens", entry.CompletionTokens),
		zap.Duration("latency", entry.Latency),
	)
	return nil
}
