// Package infer talks to the local inference endpoint. It is the only part
// of the system with network-failure semantics: transient failures are
// retried a fixed number of times, and exhaustion surfaces as
// ErrUnavailable, the one condition that aborts a whole turn.
package infer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// ErrUnavailable is returned when every attempt against the inference
// endpoint has failed.
var ErrUnavailable = errors.New("inference endpoint unavailable")

// maxErrorBodySize caps how much of an error response body is read to
// prevent memory spikes.
const maxErrorBodySize = 4096

// Config holds the inference client settings.
type Config struct {
	// URL is the full generate endpoint, e.g. http://localhost:11434/api/generate.
	URL string `yaml:"url"`

	// Model is the model identifier sent with every request.
	Model string `yaml:"model"`

	// Timeout bounds each individual attempt.
	Timeout time.Duration `yaml:"timeout"`

	// Retries is the number of additional attempts after the first failure.
	// Zero is a valid setting and means a single attempt; the configuration
	// layer supplies the usual default of 2.
	Retries int `yaml:"retries"`
}

// Defaults fills unset fields with the standard local-endpoint values.
// Retries is left alone: zero is meaningful there and cannot be told apart
// from unset.
func (c *Config) Defaults() {
	if c.URL == "" {
		c.URL = "http://localhost:11434/api/generate"
	}
	if c.Model == "" {
		c.Model = "qwen2.5:1.5b"
	}
	if c.Timeout == 0 {
		c.Timeout = 180 * time.Second
	}
}

// Client is a blocking client for the generate endpoint.
type Client struct {
	config  Config
	client  *http.Client
	logger  *slog.Logger
	backoff time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithBackoff overrides the fixed inter-attempt backoff (used in tests).
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

// New creates a Client. Zero-value config fields are replaced by defaults.
func New(cfg Config, opts ...Option) *Client {
	cfg.Defaults()
	c := &Client{
		config: cfg,
		// Response-header timeout instead of a global client timeout: the
		// per-attempt context bounds the whole exchange.
		client: &http.Client{
			Transport: &http.Transport{ResponseHeaderTimeout: cfg.Timeout},
		},
		logger:  slog.New(slog.DiscardHandler),
		backoff: time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// generateRequest is the wire format of one generate call.
type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// generateResponse is the success body of a generate call.
type generateResponse struct {
	Response string `json:"response"`
}

// Generate sends the prompt and returns the model's text. Each attempt has
// its own timeout; after Retries+1 failed attempts it returns ErrUnavailable
// wrapping the last error. Caller cancellation is returned as-is, not
// classified as endpoint failure.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	attempts := c.config.Retries + 1
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		c.logger.Info("calling model",
			"model", c.config.Model,
			"attempt", attempt,
			"of", attempts,
		)

		start := time.Now()
		text, err := c.attempt(ctx, prompt)
		if err == nil {
			c.logger.Info("model responded", "elapsed", time.Since(start).Round(100*time.Millisecond))
			return text, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		lastErr = err
		c.logger.Warn("model call failed", "attempt", attempt, "error", err)

		if attempt < attempts {
			select {
			case <-time.After(c.backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}

	return "", fmt.Errorf("%w: %w", ErrUnavailable, lastErr)
}

// attempt performs a single request/response exchange.
func (c *Client) attempt(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Model:  c.config.Model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.config.URL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, body)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	return out.Response, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.config.Model
}
