// File: internal/service/factory.go
package service

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/xkilldash9x/framesmith/internal/config"
	"github.com/xkilldash9x/framesmith/internal/figma"
	"github.com/xkilldash9x/framesmith/internal/llmclient"
	"github.com/xkilldash9x/framesmith/internal/pipeline"
	"github.com/xkilldash9x/framesmith/internal/prompt"
)

// ComponentFactory creates the set of components needed for a generation.
// Commands depend on the interface so tests can substitute the pipeline.
type ComponentFactory interface {
	Create(ctx context.Context, cfg config.Interface, logger *zap.Logger) (*Components, error)
}

// concreteFactory is the production implementation of the ComponentFactory.
type concreteFactory struct{}

// NewComponentFactory creates a new production-ready component factory.
func NewComponentFactory() ComponentFactory {
	return &concreteFactory{}
}

// Create handles the dependency injection and initialization of the
// generation components.
func (f *concreteFactory) Create(ctx context.Context, cfg config.Interface, logger *zap.Logger) (*Components, error) {
	components := &Components{}

	// Ensure cleanup happens if initialization fails midway.
	var initializationErr error
	defer func() {
		if initializationErr != nil {
			logger.Warn("Initialization failed, shutting down partially created components.", zap.Error(initializationErr))
			components.Shutdown()
		}
	}()

	// 1. Design API client
	figmaClient, err := figma.NewClient(cfg.Figma(), logger)
	if err != nil {
		initializationErr = fmt.Errorf("failed to initialize design API client: %w", err)
		return nil, initializationErr
	}
	components.Figma = figmaClient
	logger.Debug("Design API client initialized.")

	// 2. Prompt templates
	templates, err := prompt.NewSource(cfg.Prompt(), logger)
	if err != nil {
		initializationErr = fmt.Errorf("failed to initialize prompt source: %w", err)
		return nil, initializationErr
	}
	components.Templates = templates
	logger.Debug("Prompt source initialized.", zap.String("source", cfg.Prompt().Source))

	// 3. LLM client
	llmClient, err := InitializeLLMClient(ctx, cfg.LLM(), logger)
	if err != nil {
		initializationErr = err
		return nil, initializationErr
	}
	components.LLM = llmClient
	logger.Debug("LLM client initialized.", zap.String("provider", string(cfg.LLM().Provider)), zap.String("model", cfg.LLM().Model))

	// 4. Telemetry
	sink, pool, err := InitializeTelemetrySink(ctx, cfg.Database(), logger)
	if err != nil {
		initializationErr = fmt.Errorf("failed to initialize telemetry: %w", err)
		return nil, initializationErr
	}
	components.Sink = sink
	components.DBPool = pool

	// 5. Pipeline
	workDir, err := os.Getwd()
	if err != nil {
		initializationErr = fmt.Errorf("failed to resolve working directory: %w", err)
		return nil, initializationErr
	}
	p, err := pipeline.New(pipeline.Dependencies{
		Fetcher:   figmaClient,
		Templates: templates,
		LLM:       llmClient,
		Sink:      sink,
		Prompt:    cfg.Prompt(),
		Options:   llmclient.OptionsFromConfig(cfg.LLM()),
		WorkDir:   workDir,
	}, logger)
	if err != nil {
		initializationErr = fmt.Errorf("failed to initialize pipeline: %w", err)
		return nil, initializationErr
	}
	components.Pipeline = p

	logger.Debug("All components initialized.")
	return components, nil
}
