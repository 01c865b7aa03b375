// File: internal/service/components.go
package service

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/xkilldash9x/framesmith/api/schemas"
	"github.com/xkilldash9x/framesmith/internal/figma"
	"github.com/xkilldash9x/framesmith/internal/observability"
	"github.com/xkilldash9x/framesmith/internal/pipeline"
	"github.com/xkilldash9x/framesmith/internal/prompt"
)

// Components holds the initialized services a generation needs and owns
// their lifecycle.
type Components struct {
	Figma     *figma.Client
	Templates prompt.Source
	LLM       schemas.LLMClient
	Sink      schemas.TelemetrySink
	Pipeline  *pipeline.Pipeline
	DBPool    *pgxpool.Pool
}

// Shutdown releases the components in reverse order of creation. It is safe
// to call on a partially initialized value.
func (c *Components) Shutdown() {
	logger := observability.GetLogger()
	logger.Debug("Beginning components shutdown sequence.")

	if c.LLM != nil {
		if err := c.LLM.Close(); err != nil {
			logger.Warn("Error closing LLM client.", zap.Error(err))
		} else {
			logger.Debug("LLM client closed.")
		}
	}

	if c.DBPool != nil {
		c.DBPool.Close()
		logger.Debug("Database connection pool closed.")
	}

	logger.Debug("All components shut down.")
}
