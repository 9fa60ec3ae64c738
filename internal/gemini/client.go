// Package gemini talks to the generateContent endpoint of the Gemini API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	jsonMimeType          = "application/json"
	defaultBaseURL        = "https://generativelanguage.googleapis.com/v1beta"
	defaultHTTPTimeout    = 30 * time.Second
	defaultRetryMaxDelay  = 8 * time.Second
	defaultRetryBaseDelay = 500 * time.Millisecond
	defaultRetryAttempts  = 3
	maxResponseBytes      = 4 << 20
)

// ErrNotConfigured is returned when no API key is set
var ErrNotConfigured = errors.New("gemini: api key not configured")

// Config captures the settings required to talk to the API.
type Config struct {
	APIKey  string
	BaseURL string
	// Models are tried in order. A model is abandoned after its retries run out.
	Models []string
}

// Client wraps the generateContent endpoint with retries and model fallback.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger

	retry retryPolicy
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger sets the logger used to report model fallbacks.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRetryMaxAttempts overrides the per-model attempt count.
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retry.attempts = attempts
	}
}

// WithSleeper overrides how retry sleeps are performed.
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.retry.sleeper = sleeper
	}
}

// NewClient constructs a client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	models := make([]string, 0, len(cfg.Models))
	for _, m := range cfg.Models {
		if m = strings.TrimSpace(m); m != "" {
			models = append(models, m)
		}
	}
	client := &Client{
		cfg: Config{
			APIKey:  strings.TrimSpace(cfg.APIKey),
			BaseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			Models:  models,
		},
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		logger:     zap.NewNop(),
		retry: retryPolicy{
			attempts:  defaultRetryAttempts,
			baseDelay: defaultRetryBaseDelay,
			maxDelay:  defaultRetryMaxDelay,
		},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = defaultBaseURL
	}
	return client
}

// Enabled reports whether the client has an API key and at least one model.
func (c *Client) Enabled() bool {
	return c != nil && c.cfg.APIKey != "" && len(c.cfg.Models) > 0
}

type httpStatusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("gemini request: http %d: %s", e.StatusCode, snippet(e.Body))
}

type blockedError struct {
	Reason string
}

func (e *blockedError) Error() string {
	return fmt.Sprintf("gemini request: blocked (%s)", e.Reason)
}

type generateRequest struct {
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string  `json:"responseMimeType"`
	Temperature      float64 `json:"temperature"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// GenerateJSON sends a JSON-only request and decodes the model output into target.
// Models are tried in order and the name of the model that answered is returned.
func (c *Client) GenerateJSON(ctx context.Context, systemPrompt, userPrompt string, target any) (string, error) {
	if !c.Enabled() {
		return "", ErrNotConfigured
	}
	userPrompt = strings.TrimSpace(userPrompt)
	if userPrompt == "" {
		return "", errors.New("gemini generate: user prompt required")
	}

	payload := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: userPrompt}}}},
		GenerationConfig: generationConfig{
			ResponseMimeType: jsonMimeType,
			Temperature:      0.2,
		},
	}
	if systemPrompt = strings.TrimSpace(systemPrompt); systemPrompt != "" {
		payload.SystemInstruction = &content{Parts: []part{{Text: systemPrompt}}}
	}

	var lastErr error
	for _, model := range c.cfg.Models {
		text, err := c.retry.do(ctx, model, func() (string, error) {
			return c.generateOnce(ctx, model, payload)
		})
		if err == nil {
			if err = DecodeJSON(text, target); err == nil {
				return model, nil
			}
			err = fmt.Errorf("gemini generate: parse payload: %w", err)
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if !shouldFallback(err) {
			return "", err
		}
		c.logger.Warn("gemini model failed, trying next", zap.String("model", model), zap.Error(err))
		lastErr = err
	}

	return "", fmt.Errorf("gemini generate: all models failed: %w", lastErr)
}

// shouldFallback reports whether another model could succeed where this one failed.
// Authentication and malformed request errors fail every model alike.
func shouldFallback(err error) bool {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
			return false
		}
	}
	return true
}

func (c *Client) generateOnce(ctx context.Context, model string, payload generateRequest) (string, error) {
	endpoint := c.cfg.BaseURL + "/models/" + url.PathEscape(model) + ":generateContent"

	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("gemini request: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("gemini request: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request: http error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return "", fmt.Errorf("gemini request: read body: %w", err)
	}
	if len(body) > maxResponseBytes {
		return "", fmt.Errorf("gemini request: response exceeds %d bytes", maxResponseBytes)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		wait := retryAfter(resp.Header.Get("Retry-After"))
		return "", &httpStatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
			RetryAfter: wait,
		}
	}

	var decoded generateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("gemini request: decode response: %w", err)
	}
	if decoded.PromptFeedback != nil && decoded.PromptFeedback.BlockReason != "" {
		return "", &blockedError{Reason: decoded.PromptFeedback.BlockReason}
	}
	for _, candidate := range decoded.Candidates {
		var sb strings.Builder
		for _, p := range candidate.Content.Parts {
			sb.WriteString(p.Text)
		}
		if text := strings.TrimSpace(sb.String()); text != "" {
			return text, nil
		}
	}

	return "", fmt.Errorf("gemini request: empty candidates (response snippet: %s)", snippet(string(body)))
}
