// File: internal/prompt/prompt.go
//
// Package prompt locates code-generation templates and fills in their
// {variable} placeholders.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/framesmith/internal/config"
)

// ErrTemplateNotFound is returned when a source has no template for an id.
var ErrTemplateNotFound = errors.New("prompt template not found")

// Source resolves a template id to template text.
type Source interface {
	Template(ctx context.Context, id string) (string, error)
}

// NewSource builds the source selected by configuration.
func NewSource(cfg config.PromptConfig, logger *zap.Logger) (Source, error) {
	switch cfg.Source {
	case config.PromptSourceFile, "":
		return NewFileSource(cfg.Dir), nil
	case config.PromptSourceRegistry:
		return NewRegistrySource(cfg.RegistryURL, cfg.RegistryToken, logger)
	default:
		return nil, fmt.Errorf("unknown prompt source %q", cfg.Source)
	}
}

// Render substitutes every {name} placeholder with vars[name]. Substitution is
// a single pass, so placeholder-like text inside a value is left alone.
// Placeholders without a matching variable are kept verbatim.
func Render(template string, vars map[string]string) string {
	if len(vars) == 0 {
		return template
	}
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", vars[k])
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// Placeholders lists the distinct {name} tokens in a template, in order of
// first appearance.
func Placeholders(template string) []string {
	var names []string
	seen := make(map[string]bool)
	for rest := template; ; {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			return names
		}
		rest = rest[open+1:]
		end := strings.IndexAny(rest, "{}")
		if end < 0 {
			return names
		}
		if rest[end] == '{' {
			continue
		}
		name := rest[:end]
		rest = rest[end+1:]
		if isIdentifier(name) && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}
