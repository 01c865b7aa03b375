// File: internal/network/httpclient.go
package network

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/http2"
)

// Defaults for the outbound API clients. Every remote service framesmith
// talks to is a single well-known host, so the pool stays small.
const (
	DefaultDialTimeout           = 10 * time.Second
	DefaultKeepAliveInterval     = 30 * time.Second
	DefaultTLSHandshakeTimeout   = 10 * time.Second
	DefaultResponseHeaderTimeout = 60 * time.Second
	DefaultMaxIdleConnsPerHost   = 4
	DefaultIdleConnTimeout       = 90 * time.Second
)

// ClientConfig holds the transport settings shared by the API clients.
type ClientConfig struct {
	// RequestTimeout bounds a whole exchange including reading the body. It
	// must stay zero for streaming clients, which rely on the context instead.
	RequestTimeout        time.Duration
	TLSHandshakeTimeout   time.Duration
	ResponseHeaderTimeout time.Duration
	MaxIdleConnsPerHost   int
	IdleConnTimeout       time.Duration
	ForceHTTP2            bool
	Logger                *zap.Logger
}

// NewDefaultClientConfig returns settings suited to request/response APIs.
func NewDefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		TLSHandshakeTimeout:   DefaultTLSHandshakeTimeout,
		ResponseHeaderTimeout: DefaultResponseHeaderTimeout,
		MaxIdleConnsPerHost:   DefaultMaxIdleConnsPerHost,
		IdleConnTimeout:       DefaultIdleConnTimeout,
		ForceHTTP2:            true,
	}
}

// NewHTTPTransport builds a transport from config, honoring the standard
// proxy environment variables.
func NewHTTPTransport(config *ClientConfig) *http.Transport {
	if config == nil {
		config = NewDefaultClientConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	dialer := &net.Dialer{Timeout: DefaultDialTimeout, KeepAlive: DefaultKeepAliveInterval}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
		TLSHandshakeTimeout:   config.TLSHandshakeTimeout,
		ResponseHeaderTimeout: config.ResponseHeaderTimeout,
		MaxIdleConnsPerHost:   config.MaxIdleConnsPerHost,
		IdleConnTimeout:       config.IdleConnTimeout,
		ForceAttemptHTTP2:     config.ForceHTTP2,
	}

	if config.ForceHTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			logger.Warn("Failed to configure HTTP/2 transport, falling back to HTTP/1.1", zap.Error(err))
		}
	}
	return transport
}

// NewClient returns an *http.Client over NewHTTPTransport. Callers own the
// response body and must close it.
func NewClient(config *ClientConfig) *http.Client {
	if config == nil {
		config = NewDefaultClientConfig()
	}
	return &http.Client{
		Transport: NewHTTPTransport(config),
		Timeout:   config.RequestTimeout,
	}
}

// NewStreamingClient is NewClient with the overall timeout disabled, for
// responses that are consumed incrementally.
func NewStreamingClient(config *ClientConfig) *http.Client {
	if config == nil {
		config = NewDefaultClientConfig()
	}
	streaming := *config
	streaming.RequestTimeout = 0
	return NewClient(&streaming)
}
