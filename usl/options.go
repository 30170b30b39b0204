package usl

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Option configures a Client.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	baseURL          string
	defaultUserAgent string
	timeout          time.Duration
	httpClient       *http.Client
	logger           zerolog.Logger
}

// WithBaseURL points the client at another deployment of the site.
func WithBaseURL(baseURL string) Option {
	return func(o *clientOptions) {
		if baseURL != "" {
			o.baseURL = baseURL
		}
	}
}

// WithDefaultUserAgent replaces the identification string used when NewClient
// gets an empty one. It is validated like any other user agent.
func WithDefaultUserAgent(userAgent string) Option {
	return func(o *clientOptions) {
		if userAgent != "" {
			o.defaultUserAgent = userAgent
		}
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithHTTPClient replaces the default pooled HTTP client.
// The timeout option is ignored when a client is supplied.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *clientOptions) {
		o.logger = logger
	}
}
