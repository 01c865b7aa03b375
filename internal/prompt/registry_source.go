// File: internal/prompt/registry_source.go
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/framesmith/internal/network"
)

const registryTimeout = 20 * time.Second

// deployment is the subset of a prompt-registry deployment we read: the text
// of the first content part of the first message.
type deployment struct {
	Messages []struct {
		Role    string `json:"role"`
		Content []struct {
			Modality string `json:"modality"`
			Value    string `json:"value"`
		} `json:"content"`
	} `json:"messages"`
}

// RegistrySource fetches the currently deployed template from a prompt
// registry. Templates are cached for the life of the source.
type RegistrySource struct {
	baseURL    string
	token      string
	httpClient *http.Client
	newBackOff func() backoff.BackOff
	logger     *zap.Logger

	mu    sync.Mutex
	cache map[string]string
}

// RegistryOption customizes a RegistrySource.
type RegistryOption func(*RegistrySource)

// WithRegistryHTTPClient replaces the HTTP client.
func WithRegistryHTTPClient(hc *http.Client) RegistryOption {
	return func(s *RegistrySource) { s.httpClient = hc }
}

// WithRegistryBackOff replaces the retry policy.
func WithRegistryBackOff(f func() backoff.BackOff) RegistryOption {
	return func(s *RegistrySource) { s.newBackOff = f }
}

// NewRegistrySource creates a source for the registry at baseURL.
func NewRegistrySource(baseURL, token string, logger *zap.Logger, opts ...RegistryOption) (*RegistrySource, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("prompt registry URL is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	netCfg := network.NewDefaultClientConfig()
	netCfg.RequestTimeout = registryTimeout
	netCfg.Logger = logger

	s := &RegistrySource{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: network.NewClient(netCfg),
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxInterval = 5 * time.Second
			b.MaxElapsedTime = 30 * time.Second
			return b
		},
		logger: logger.Named("prompt_registry"),
		cache:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Template implements Source.
func (s *RegistrySource) Template(ctx context.Context, id string) (string, error) {
	s.mu.Lock()
	cached, ok := s.cache[id]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}

	var text string
	operation := func() error {
		var err error
		text, err = s.fetch(ctx, id)
		return err
	}
	notify := func(err error, wait time.Duration) {
		s.logger.Warn("Prompt registry request failed, retrying...", zap.String("template_id", id), zap.Duration("wait", wait), zap.Error(err))
	}
	if err := backoff.RetryNotify(operation, backoff.WithContext(s.newBackOff(), ctx), notify); err != nil {
		return "", err
	}

	s.mu.Lock()
	s.cache[id] = text
	s.mu.Unlock()
	return text, nil
}

func (s *RegistrySource) fetch(ctx context.Context, id string) (string, error) {
	endpoint := fmt.Sprintf("%s/v1/deployments/%s/current", s.baseURL, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("failed to create registry request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", backoff.Permanent(ctxErr)
		}
		return "", fmt.Errorf("registry request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read registry response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", backoff.Permanent(fmt.Errorf("%w: registry has no deployment %q", ErrTemplateNotFound, id))
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return "", fmt.Errorf("registry returned status %d", resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return "", backoff.Permanent(fmt.Errorf("registry returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var d deployment
	if err := json.Unmarshal(body, &d); err != nil {
		return "", backoff.Permanent(fmt.Errorf("failed to decode registry deployment: %w", err))
	}
	if len(d.Messages) == 0 || len(d.Messages[0].Content) == 0 {
		return "", backoff.Permanent(fmt.Errorf("%w: deployment %q has no message content", ErrTemplateNotFound, id))
	}
	return d.Messages[0].Content[0].Value, nil
}

// IsNotFound reports whether err means the template does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTemplateNotFound)
}
