// File: internal/pipeline/pipeline_test.go
package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xkilldash9x/framesmith/api/schemas"
	"github.com/xkilldash9x/framesmith/internal/config"
	"github.com/xkilldash9x/framesmith/internal/figma"
	"github.com/xkilldash9x/framesmith/internal/mocks"
	"github.com/xkilldash9x/framesmith/internal/prompt"
	"github.com/xkilldash9x/framesmith/internal/scenegraph"
)

var _ Fetcher = (*mocks.MockFetcher)(nil)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testTemplate = "Frame:\n{frame}\nTailwind:\n{tailwind}\nCSS:\n{globalcss}"

var testLink = figma.Link{FileKey: "AbC123", NodeID: "1:2", Name: "Landing"}

// fixture wires a pipeline to mocks and a temporary project directory.
type fixture struct {
	fetcher   *mocks.MockFetcher
	templates *mocks.MockTemplateSource
	llm       *mocks.MockLLMClient
	sink      *mocks.MockTelemetrySink
	logs      *observer.ObservedLogs
	workDir   string
	deps      Dependencies
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	workDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(workDir, "tailwind.config.ts"), []byte("export default {}"), 0o600))

	promptCfg := config.NewDefaultConfig().PromptCfg
	promptCfg.FrameFormat = "json"

	f := &fixture{
		fetcher:   new(mocks.MockFetcher),
		templates: new(mocks.MockTemplateSource),
		llm:       new(mocks.MockLLMClient),
		sink:      new(mocks.MockTelemetrySink),
		workDir:   workDir,
	}
	f.deps = Dependencies{
		Fetcher:   f.fetcher,
		Templates: f.templates,
		LLM:       f.llm,
		Sink:      f.sink,
		Prompt:    promptCfg,
		Options:   schemas.GenerationOptions{Temperature: 0.2},
		WorkDir:   workDir,
	}
	return f
}

func (f *fixture) pipeline(t *testing.T) *Pipeline {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	f.logs = logs
	p, err := New(f.deps, zap.New(core))
	require.NoError(t, err)
	return p
}

func (f *fixture) assertExpectations(t *testing.T) {
	f.fetcher.AssertExpectations(t)
	f.templates.AssertExpectations(t)
	f.llm.AssertExpectations(t)
	f.sink.AssertExpectations(t)
}

func frameNode() scenegraph.Node {
	spacing := 8.0
	return &scenegraph.FrameNode{
		Common: scenegraph.Common{
			Type:   "FRAME",
			Layout: scenegraph.Layout{HasMode: true, Mode: scenegraph.LayoutModeHorizontal, ItemSpacing: &spacing},
		},
	}
}

func fetched(node scenegraph.Node) *figma.FetchResult {
	return &figma.FetchResult{Link: testLink, NodeID: "1:2", Document: []byte(`{"type":"FRAME"}`), Node: node}
}

func TestRun_FullPipeline(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t)
	ctx := context.Background()

	generation := &schemas.GenerationResult{Text: "<div/>", Provider: "gemini", Model: "gemini-2.5-pro", PromptTokens: 10, CompletionTokens: 3}
	f.fetcher.On("FetchNode", mock.Anything, testLink).Return(fetched(frameNode()), nil).Once()
	f.templates.On("Template", mock.Anything, "frame-to-component").Return(testTemplate, nil).Once()
	f.llm.On("Stream", mock.Anything, mock.MatchedBy(func(req schemas.GenerationRequest) bool {
		return req.UserPrompt == "" && req.Options.Temperature == 0.2 &&
			strings.HasPrefix(req.SystemPrompt, "Frame:\n{") &&
			strings.Contains(req.SystemPrompt, `"flexDirection":"row","gap":"8px"`) &&
			strings.HasSuffix(req.SystemPrompt, "}\nTailwind:\nexport default {}\nCSS:\n")
	}), mock.Anything).Return(generation, nil, []string{"<div", "/>"}).Once()
	f.sink.On("Record", mock.Anything, mock.MatchedBy(func(entry schemas.GenerationLog) bool {
		return entry.PromptID == "frame-to-component" && entry.Completion == "<div/>" &&
			entry.Provider == "gemini" && entry.PromptTokens == 10 &&
			entry.Variables["tailwind"] == "export default {}" && entry.Variables["globalcss"] == ""
	})).Return(nil).Once()

	var stages []Stage
	var messages []string
	var deltas []string
	result, err := p.Run(ctx, testLink, Hooks{
		OnProgress: func(stage Stage, message string) {
			stages = append(stages, stage)
			messages = append(messages, message)
		},
		OnDelta: func(d string) { deltas = append(deltas, d) },
	})
	require.NoError(t, err)

	assert.Equal(t, []Stage{StageFetch, StageConvert, StagePrompt, StageGenerate}, stages)
	assert.Equal(t, "Fetching...", messages[0])
	assert.Equal(t, "Generating...", messages[3])
	assert.Equal(t, []string{"<div", "/>"}, deltas)

	require.NotNil(t, result.Style)
	assert.Equal(t, "8px", result.Style.Gap)
	assert.Equal(t, "<div/>", result.Generation.Text)
	assert.Contains(t, result.Prompt, "export default {}")
	f.assertExpectations(t)
}

func TestRun_ElidedRootIsEmptyList(t *testing.T) {
	f := newFixture(t)
	f.deps.Sink = nil
	p := f.pipeline(t)

	instance := &scenegraph.InstanceNode{Common: scenegraph.Common{Type: "INSTANCE"}}
	f.fetcher.On("FetchNode", mock.Anything, testLink).Return(fetched(instance), nil)
	f.templates.On("Template", mock.Anything, "frame-to-component").Return("{frame}", nil)
	f.llm.On("Stream", mock.Anything, mock.MatchedBy(func(req schemas.GenerationRequest) bool {
		return req.SystemPrompt == "[]"
	}), mock.Anything).Return(&schemas.GenerationResult{Text: "null"}, nil)

	result, err := p.Run(context.Background(), testLink, Hooks{})
	require.NoError(t, err)
	assert.Nil(t, result.Style)
	assert.Equal(t, "[]", result.Frame)
	assert.Equal(t, 1, f.logs.FilterMessage("Root node is a component instance; the frame is empty").Len())
	f.assertExpectations(t)
}

func TestRun_StopsAtFirstFailure(t *testing.T) {
	t.Run("fetch", func(t *testing.T) {
		f := newFixture(t)
		p := f.pipeline(t)
		apiErr := &figma.APIError{StatusCode: 403, Message: "Invalid token"}
		f.fetcher.On("FetchNode", mock.Anything, testLink).Return(nil, apiErr)

		_, err := p.Run(context.Background(), testLink, Hooks{})
		var target *figma.APIError
		require.ErrorAs(t, err, &target)
		assert.Equal(t, 403, target.StatusCode)
		f.templates.AssertNotCalled(t, "Template", mock.Anything, mock.Anything)
		f.llm.AssertNotCalled(t, "Stream", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("template", func(t *testing.T) {
		f := newFixture(t)
		p := f.pipeline(t)
		f.fetcher.On("FetchNode", mock.Anything, testLink).Return(fetched(frameNode()), nil)
		f.templates.On("Template", mock.Anything, "frame-to-component").Return("", prompt.ErrTemplateNotFound)

		_, err := p.Run(context.Background(), testLink, Hooks{})
		assert.ErrorIs(t, err, prompt.ErrTemplateNotFound)
		f.llm.AssertNotCalled(t, "Stream", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("generation", func(t *testing.T) {
		f := newFixture(t)
		p := f.pipeline(t)
		streamErr := errors.New("quota exceeded")
		f.fetcher.On("FetchNode", mock.Anything, testLink).Return(fetched(frameNode()), nil)
		f.templates.On("Template", mock.Anything, "frame-to-component").Return(testTemplate, nil)
		f.llm.On("Stream", mock.Anything, mock.Anything, mock.Anything).Return(nil, streamErr)

		_, err := p.Run(context.Background(), testLink, Hooks{})
		assert.ErrorIs(t, err, streamErr)
		f.sink.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	})
}

func TestRun_TelemetryFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t)
	f.fetcher.On("FetchNode", mock.Anything, testLink).Return(fetched(frameNode()), nil)
	f.templates.On("Template", mock.Anything, "frame-to-component").Return(testTemplate, nil)
	f.llm.On("Stream", mock.Anything, mock.Anything, mock.Anything).Return(&schemas.GenerationResult{Text: "ok"}, nil)
	f.sink.On("Record", mock.Anything, mock.Anything).Return(errors.New("database unavailable"))

	result, err := p.Run(context.Background(), testLink, Hooks{})
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Generation.Text)
	assert.Equal(t, 1, f.logs.FilterMessage("Failed to record generation telemetry").Len())
}

func TestRun_CancelledAfterFetch(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t)
	ctx, cancel := context.WithCancel(context.Background())
	f.fetcher.On("FetchNode", mock.Anything, testLink).
		Run(func(mock.Arguments) { cancel() }).
		Return(fetched(frameNode()), nil)

	_, err := p.Run(ctx, testLink, Hooks{})
	assert.ErrorIs(t, err, context.Canceled)
	f.templates.AssertNotCalled(t, "Template", mock.Anything, mock.Anything)
}

func TestRenderPrompt_WarnsAboutUnresolvedPlaceholders(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t)
	f.templates.On("Template", mock.Anything, "frame-to-component").Return("{frame} {unknown}", nil)

	got, err := p.RenderPrompt(context.Background(), map[string]string{"frame": "[]"})
	require.NoError(t, err)
	assert.Equal(t, "[] {unknown}", got)

	warnings := f.logs.FilterMessage("Prompt template has placeholders without values").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, []interface{}{"unknown"}, warnings[0].ContextMap()["placeholders"])
}

func TestLoadContextFiles(t *testing.T) {
	f := newFixture(t)
	abs := filepath.Join(t.TempDir(), "globals.css")
	require.NoError(t, os.WriteFile(abs, []byte("body { margin: 0 }"), 0o600))
	f.deps.Prompt.ContextFiles = map[string]string{
		"tailwind":  "tailwind.config.ts",
		"globalcss": abs,
		"theme":     "src/theme.ts",
	}
	p := f.pipeline(t)

	vars, err := p.loadContextFiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"tailwind":  "export default {}",
		"globalcss": "body { margin: 0 }",
		"theme":     "",
	}, vars)
}

func TestLoadContextFiles_ReadError(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.Mkdir(filepath.Join(f.workDir, "adir"), 0o700))
	f.deps.Prompt.ContextFiles = map[string]string{"broken": "adir"}
	p := f.pipeline(t)

	_, err := p.loadContextFiles(context.Background())
	assert.ErrorContains(t, err, "failed to read context file")
}

func TestNew_Validation(t *testing.T) {
	f := newFixture(t)

	deps := f.deps
	deps.LLM = nil
	_, err := New(deps, nil)
	assert.Error(t, err)

	deps = f.deps
	deps.Prompt.FrameFormat = "xml"
	_, err = New(deps, nil)
	assert.ErrorContains(t, err, "unsupported style tree format")
}
