// File: internal/prompt/file_source.go
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// templateExtensions are tried in order when an id has no extension.
var templateExtensions = []string{"", ".txt", ".md", ".tmpl"}

// FileSource reads templates from a directory. An id may also be a direct
// path to a template file.
type FileSource struct {
	dir string
}

// NewFileSource creates a source rooted at dir; a leading ~ is expanded.
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

// Template implements Source.
func (s *FileSource) Template(ctx context.Context, id string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(id) == "" {
		return "", fmt.Errorf("%w: empty template id", ErrTemplateNotFound)
	}

	candidates, err := s.candidates(id)
	if err != nil {
		return "", err
	}
	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) && !isDirErr(path) {
			return "", fmt.Errorf("failed to read template %s: %w", path, err)
		}
	}
	return "", fmt.Errorf("%w: %q (searched %s)", ErrTemplateNotFound, id, strings.Join(candidates, ", "))
}

func (s *FileSource) candidates(id string) ([]string, error) {
	expandedID, err := homedir.Expand(id)
	if err != nil {
		return nil, fmt.Errorf("failed to expand template path %q: %w", id, err)
	}
	var paths []string
	if filepath.IsAbs(expandedID) || strings.ContainsRune(id, filepath.Separator) {
		paths = append(paths, expandedID)
	}

	dir, err := homedir.Expand(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to expand template directory %q: %w", s.dir, err)
	}
	if dir != "" && !filepath.IsAbs(expandedID) {
		for _, ext := range templateExtensions {
			if ext != "" && filepath.Ext(id) != "" {
				break
			}
			paths = append(paths, filepath.Join(dir, id+ext))
		}
	}
	return paths, nil
}

func isDirErr(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
