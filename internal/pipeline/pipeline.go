// File: internal/pipeline/pipeline.go
//
// Package pipeline turns a design link into generated component code: it
// fetches the frame, converts it to a style tree, fills the prompt template
// and streams the completion.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/framesmith/api/schemas"
	"github.com/xkilldash9x/framesmith/internal/config"
	"github.com/xkilldash9x/framesmith/internal/figma"
	"github.com/xkilldash9x/framesmith/internal/prompt"
	"github.com/xkilldash9x/framesmith/internal/scenegraph"
	"github.com/xkilldash9x/framesmith/internal/styletree"
)

// FrameVariable is the template variable that receives the serialized style tree.
const FrameVariable = "frame"

// Stage identifies a step of Run for progress reporting.
type Stage string

const (
	StageFetch    Stage = "fetch"
	StageConvert  Stage = "convert"
	StagePrompt   Stage = "prompt"
	StageGenerate Stage = "generate"
)

// Fetcher downloads a frame from the design API.
type Fetcher interface {
	FetchNode(ctx context.Context, link figma.Link) (*figma.FetchResult, error)
}

// Hooks receive progress while Run executes. Both are optional and are called
// from the goroutine running Run.
type Hooks struct {
	OnProgress func(stage Stage, message string)
	OnDelta    func(delta string)
}

// Result carries every intermediate product of a run.
type Result struct {
	Fetch      *figma.FetchResult
	Style      *schemas.StyleElement
	Frame      string
	Variables  map[string]string
	Prompt     string
	Generation *schemas.GenerationResult
	Latency    time.Duration
}

// Dependencies are the collaborators a Pipeline drives. Sink may be nil.
type Dependencies struct {
	Fetcher   Fetcher
	Templates prompt.Source
	LLM       schemas.LLMClient
	Sink      schemas.TelemetrySink
	Prompt    config.PromptConfig
	Options   schemas.GenerationOptions
	// WorkDir resolves relative context file paths; empty means the current directory.
	WorkDir string
}

// Pipeline runs link-to-code generation. It is safe for concurrent use when
// its collaborators are.
type Pipeline struct {
	deps   Dependencies
	format styletree.Format
	logger *zap.Logger
}

// New validates the dependencies and creates a Pipeline.
func New(deps Dependencies, logger *zap.Logger) (*Pipeline, error) {
	if deps.Fetcher == nil || deps.Templates == nil || deps.LLM == nil {
		return nil, fmt.Errorf("cannot initialize pipeline with nil dependencies")
	}
	format, err := styletree.ParseFormat(deps.Prompt.FrameFormat)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{deps: deps, format: format, logger: logger.Named("pipeline")}, nil
}

// Run executes every stage for link. Cancellation is checked between stages;
// a failure to record telemetry is logged and does not fail the run.
func (p *Pipeline) Run(ctx context.Context, link figma.Link, hooks Hooks) (*Result, error) {
	p.logger.Info("Starting generation", zap.String("link", link.String()), zap.String("template_id", p.deps.Prompt.TemplateID))
	result := &Result{}

	hooks.progress(StageFetch, "Fetching...")
	fetched, err := p.deps.Fetcher.FetchNode(ctx, link)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch frame: %w", err)
	}
	result.Fetch = fetched
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hooks.progress(StageConvert, "Converting...")
	frame, style, err := p.ConvertFrame(fetched.Node)
	if err != nil {
		return nil, err
	}
	result.Style, result.Frame = style, frame
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hooks.progress(StagePrompt, "Preparing prompt...")
	vars, err := p.loadContextFiles(ctx)
	if err != nil {
		return nil, err
	}
	vars[FrameVariable] = frame
	result.Variables = vars

	rendered, err := p.RenderPrompt(ctx, vars)
	if err != nil {
		return nil, err
	}
	result.Prompt = rendered
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hooks.progress(StageGenerate, "Generating...")
	start := time.Now()
	gen, err := p.deps.LLM.Stream(ctx, schemas.GenerationRequest{SystemPrompt: rendered, Options: p.deps.Options}, hooks.OnDelta)
	if err != nil {
		return nil, fmt.Errorf("failed to generate code: %w", err)
	}
	result.Generation = gen
	result.Latency = time.Since(start)

	p.record(ctx, result)
	return result, nil
}

// ConvertFrame builds the style tree for node and serializes it in the
// configured format. An elided root serializes as an empty list.
func (p *Pipeline) ConvertFrame(node scenegraph.Node) (string, *schemas.StyleElement, error) {
	style := styletree.Convert(node)
	data, err := styletree.Marshal(style, p.format)
	if err != nil {
		return "", nil, fmt.Errorf("failed to serialize style tree: %w", err)
	}
	if style == nil {
		p.logger.Warn("Root node is a component instance; the frame is empty")
	}
	return string(data), style, nil
}

// RenderPrompt fetches the configured template and fills it with vars.
// Placeholders left without a value are reported but kept.
func (p *Pipeline) RenderPrompt(ctx context.Context, vars map[string]string) (string, error) {
	tmpl, err := p.deps.Templates.Template(ctx, p.deps.Prompt.TemplateID)
	if err != nil {
		return "", fmt.Errorf("failed to load prompt template %q: %w", p.deps.Prompt.TemplateID, err)
	}

	var missing []string
	for _, name := range prompt.Placeholders(tmpl) {
		if _, ok := vars[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		p.logger.Warn("Prompt template has placeholders without values", zap.Strings("placeholders", missing))
	}
	return prompt.Render(tmpl, vars), nil
}

// loadContextFiles reads the configured project files concurrently. A file
// that does not exist contributes an empty value.
func (p *Pipeline) loadContextFiles(ctx context.Context) (map[string]string, error) {
	names := make([]string, 0, len(p.deps.Prompt.ContextFiles))
	for name := range p.deps.Prompt.ContextFiles {
		names = append(names, name)
	}
	sort.Strings(names)

	contents := make([]string, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, name := range names {
		path := p.deps.Prompt.ContextFiles[name]
		if !filepath.IsAbs(path) && p.deps.WorkDir != "" {
			path = filepath.Join(p.deps.WorkDir, path)
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			switch {
			case errors.Is(err, fs.ErrNotExist):
				p.logger.Debug("Context file not found, using empty value", zap.String("variable", name), zap.String("path", path))
				return nil
			case err != nil:
				return fmt.Errorf("failed to read context file %s for {%s}: %w", path, name, err)
			}
			contents[i] = string(data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	vars := make(map[string]string, len(names)+1)
	for i, name := range names {
		vars[name] = contents[i]
	}
	return vars, nil
}

func (p *Pipeline) record(ctx context.Context, result *Result) {
	if p.deps.Sink == nil {
		return
	}
	entry := schemas.GenerationLog{
		ID:               uuid.New(),
		PromptID:         p.deps.Prompt.TemplateID,
		Provider:         result.Generation.Provider,
		Model:            result.Generation.Model,
		Completion:       result.Generation.Text,
		Variables:        result.Variables,
		PromptTokens:     result.Generation.PromptTokens,
		CompletionTokens: result.Generation.CompletionTokens,
		Latency:          result.Latency,
		CreatedAt:        time.Now(),
	}
	if err := p.deps.Sink.Record(ctx, entry); err != nil {
		p.logger.Warn("Failed to record generation telemetry", zap.Error(err))
	}
}

func (h Hooks) progress(stage Stage, message string) {
	if h.OnProgress != nil {
		h.OnProgress(stage, message)
	}
}
