// File: internal/mocks/mocks.go
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/framesmith/api/schemas"
	"github.com/xkilldash9x/framesmith/internal/config"
	"github.com/xkilldash9x/framesmith/internal/figma"
)

// -- Config Mock --

// MockConfig mocks the config.Interface.
type MockConfig struct {
	mock.Mock
}

// --- Getters ---

func (m *MockConfig) Logger() config.LoggerConfig {
	args := m.Called()
	return args.Get(0).(config.LoggerConfig)
}

func (m *MockConfig) Figma() config.FigmaConfig {
	args := m.Called()
	return args.Get(0).(config.FigmaConfig)
}

func (m *MockConfig) LLM() config.LLMConfig {
	args := m.Called()
	return args.Get(0).(config.LLMConfig)
}

func (m *MockConfig) Prompt() config.PromptConfig {
	args := m.Called()
	return args.Get(0).(config.PromptConfig)
}

func (m *MockConfig) Database() config.DatabaseConfig {
	args := m.Called()
	return args.Get(0).(config.DatabaseConfig)
}

func (m *MockConfig) Convert() config.ConvertConfig {
	args := m.Called()
	return args.Get(0).(config.ConvertConfig)
}

// --- Setters ---

func (m *MockConfig) SetConvertConcurrency(n int)   { m.Called(n) }
func (m *MockConfig) SetConvertFormat(f string)     { m.Called(f) }
func (m *MockConfig) SetPromptTemplateID(id string) { m.Called(id) }
func (m *MockConfig) SetLLMModel(model string)      { m.Called(model) }

// -- LLM Client Mock --

// MockLLMClient mocks schemas.LLMClient. Deltas given as an optional third
// return value are replayed through onDelta before returning.
type MockLLMClient struct {
	mock.Mock
}

func (m *MockLLMClient) Stream(ctx context.Context, req schemas.GenerationRequest, onDelta func(string)) (*schemas.GenerationResult, error) {
	args := m.Called(ctx, req, onDelta)
	if len(args) > 2 && onDelta != nil {
		if deltas, ok := args.Get(2).([]string); ok {
			for _, d := range deltas {
				onDelta(d)
			}
		}
	}
	var result *schemas.GenerationResult
	if r := args.Get(0); r != nil {
		result = r.(*schemas.GenerationResult)
	}
	return result, args.Error(1)
}

func (m *MockLLMClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

// -- Collaborator Mocks --

// MockFetcher mocks the design API client.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) FetchNode(ctx context.Context, link figma.Link) (*figma.FetchResult, error) {
	args := m.Called(ctx, link)
	var result *figma.FetchResult
	if r := args.Get(0); r != nil {
		result = r.(*figma.FetchResult)
	}
	return result, args.Error(1)
}

// MockTemplateSource mocks prompt.Source.
type MockTemplateSource struct {
	mock.Mock
}

func (m *MockTemplateSource) Template(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

// MockTelemetrySink mocks schemas.TelemetrySink.
type MockTelemetrySink struct {
	mock.Mock
}

func (m *MockTelemetrySink) Record(ctx context.Context, entry schemas.GenerationLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

var (
	_ config.Interface      = (*MockConfig)(nil)
	_ schemas.LLMClient     = (*MockLLMClient)(nil)
	_ schemas.TelemetrySink = (*MockTelemetrySink)(nil)
)
