// File: internal/figma/client.go
package figma

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/framesmith/internal/config"
	"github.com/xkilldash9x/framesmith/internal/network"
	"github.com/xkilldash9x/framesmith/internal/scenegraph"
)

// ErrMissingCredentials is returned when neither an access token nor an OAuth
// token is configured.
var ErrMissingCredentials = errors.New("no design API credentials configured (set FIGMA_ACCESS_TOKEN or FIGMA_OAUTH_TOKEN)")

// maxResponseBytes caps how much of a nodes response is buffered.
const maxResponseBytes = 64 << 20

// APIError is a non-2xx response from the design API.
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("design API returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("design API returned %d", e.StatusCode)
}

// FetchResult is one fetched frame.
type FetchResult struct {
	Link Link
	// NodeID is the envelope key actually used, which can differ from
	// Link.NodeID when the API normalizes the id.
	NodeID string
	// Document is the raw JSON of the node's document.
	Document []byte
	Node     scenegraph.Node
	Elapsed  time.Duration
}

// Client fetches frames from the design REST API. It is safe for concurrent use.
type Client struct {
	baseURL     string
	accessToken string
	oauthToken  string
	dialect     scenegraph.Dialect
	httpClient  *http.Client
	limiter     *rate.Limiter
	logger      *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient builds a client from configuration.
func NewClient(cfg config.FigmaConfig, logger *zap.Logger, opts ...Option) (*Client, error) {
	if !cfg.HasCredentials() {
		return nil, ErrMissingCredentials
	}
	dialect, err := scenegraph.ParseDialect(cfg.BackgroundDialect)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	netCfg := network.NewDefaultClientConfig()
	netCfg.RequestTimeout = cfg.Timeout
	netCfg.Logger = logger

	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	c := &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		accessToken: cfg.AccessToken,
		oauthToken:  cfg.OAuthToken,
		dialect:     dialect,
		httpClient:  network.NewClient(netCfg),
		limiter:     rate.NewLimiter(rate.Limit(cfg.RateLimit), burst),
		logger:      logger.Named("figma"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchNode downloads one node and decodes it into the scene-graph model.
// Failed requests are not retried.
func (c *Client) FetchNode(ctx context.Context, link Link) (*FetchResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	start := time.Now()
	body, err := c.get(ctx, link)
	if err != nil {
		return nil, err
	}

	doc, id, err := scenegraph.ExtractDocument(body, link.NodeID)
	if err != nil {
		return nil, err
	}
	node, err := scenegraph.Decode(doc, scenegraph.DecodeOptions{Dialect: c.dialect})
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	c.logger.Debug("Fetched node.",
		zap.String("file_key", link.FileKey),
		zap.String("node_id", id),
		zap.Int("bytes", len(doc)),
		zap.Duration("elapsed", elapsed))

	return &FetchResult{Link: link, NodeID: id, Document: doc, Node: node, Elapsed: elapsed}, nil
}

func (c *Client) get(ctx context.Context, link Link) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/v1/files/%s/nodes?ids=%s",
		c.baseURL, url.PathEscape(link.FileKey), url.QueryEscape(link.NodeID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.accessToken != "" {
		req.Header.Set("X-Figma-Token", c.accessToken)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.oauthToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to design API failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read design API response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, body)
	}
	return body, nil
}

// newAPIError pulls the message out of the API's {"status": n, "err": "..."} body.
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Body: truncate(string(body), 2048)}
	if msg := json.Get(body, "err").ToString(); msg != "" {
		apiErr.Message = msg
	} else if msg := json.Get(body, "message").ToString(); msg != "" {
		apiErr.Message = msg
	}
	return apiErr
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
