// Package generator provides the OpenAI-backed text completion client
// used to produce interaction and drug information explanations.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/juju/ratelimit"

	"github.com/medsafe/interactions-api/interfaces"
	"github.com/medsafe/interactions-api/logging"
	"github.com/medsafe/interactions-api/metrics"
)

// ErrUpstream marks any failure of the completion service: transport
// errors, non-2xx statuses, and unusable response bodies. Handlers map
// it to 502.
var ErrUpstream = errors.New("completion service unavailable")

// Compile-time check to ensure OpenAIClient implements Generator
var _ interfaces.Generator = (*OpenAIClient)(nil)

// Config holds the settings for the OpenAI client.
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
	// RequestsPerMinute caps outbound calls. Zero disables the limiter.
	RequestsPerMinute int
}

// OpenAIClient calls the OpenAI chat completions endpoint.
type OpenAIClient struct {
	apiKey      string
	model       string
	baseURL     string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
	limiter     *ratelimit.Bucket
}

// NewOpenAIClient creates a new client. The API key is required,
// everything else falls back to a sensible default.
func NewOpenAIClient(cfg Config) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 600
	}
	// Zero means unset. A literal zero temperature is not supported.
	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = 0.7
	}

	var limiter *ratelimit.Bucket
	if cfg.RequestsPerMinute > 0 {
		limiter = ratelimit.NewBucketWithRate(
			float64(cfg.RequestsPerMinute)/60.0,
			int64(cfg.RequestsPerMinute),
		)
	}

	return &OpenAIClient{
		apiKey:      cfg.APIKey,
		model:       model,
		baseURL:     baseURL,
		maxTokens:   maxTokens,
		temperature: temperature,
		httpClient:  &http.Client{Timeout: timeout},
		limiter:     limiter,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete sends the prompts to the chat completions endpoint and
// returns the raw explanation text, trimmed of surrounding whitespace.
func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}

	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: encoding request: %v", ErrUpstream, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: building request: %v", ErrUpstream, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.GeneratorRequestTotals.WithLabelValues(metrics.OutcomeError).Inc()
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	metrics.GeneratorRequestDuration.Observe(time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.GeneratorRequestTotals.WithLabelValues(metrics.OutcomeError).Inc()
		return "", c.upstreamError(resp)
	}

	var envelope chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		metrics.GeneratorRequestTotals.WithLabelValues(metrics.OutcomeError).Inc()
		return "", fmt.Errorf("%w: decoding response: %v", ErrUpstream, err)
	}

	if len(envelope.Choices) == 0 {
		metrics.GeneratorRequestTotals.WithLabelValues(metrics.OutcomeError).Inc()
		return "", fmt.Errorf("%w: response contains no choices", ErrUpstream)
	}

	text := strings.TrimSpace(envelope.Choices[0].Message.Content)
	if text == "" {
		metrics.GeneratorRequestTotals.WithLabelValues(metrics.OutcomeError).Inc()
		return "", fmt.Errorf("%w: response contains no text", ErrUpstream)
	}

	metrics.GeneratorRequestTotals.WithLabelValues(metrics.OutcomeSuccess).Inc()
	return text, nil
}

// wait blocks until the outbound limiter releases a token or the
// context is done.
func (c *OpenAIClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}

	delay := c.limiter.Take(1)
	if delay <= 0 {
		return nil
	}

	logging.Debug("Generator rate limited", "delay_ms", delay.Milliseconds())

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrUpstream, ctx.Err())
	case <-timer.C:
		return nil
	}
}

// upstreamError extracts the OpenAI error envelope when there is one.
func (c *OpenAIClient) upstreamError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var envelope chatResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil && envelope.Error.Message != "" {
		logging.Warn("Generator request rejected",
			"status", resp.StatusCode,
			"type", envelope.Error.Type,
			"message", envelope.Error.Message,
		)
		return fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, envelope.Error.Message)
	}

	logging.Warn("Generator request failed", "status", resp.StatusCode)
	return fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
}
