package openai

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/kirillkom/pdfchecker/internal/core/domain"
	"github.com/kirillkom/pdfchecker/internal/infrastructure/resilience"
)

const (
	ProviderName   = "OpenAI"
	DefaultBaseURL = "https://api.openai.com/v1"

	operation = "openai.chat"
)

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	api      *goopenai.Client
	executor *resilience.Executor
	logger   *slog.Logger
}

func New(cfg Config, executor *resilience.Executor, logger *slog.Logger) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	apiCfg := goopenai.DefaultConfig(cfg.APIKey)
	apiCfg.BaseURL = baseURL
	apiCfg.HTTPClient = &http.Client{Timeout: timeout}

	return &Client{
		api:      goopenai.NewClientWithConfig(apiCfg),
		executor: executor,
		logger:   logger,
	}
}

func (c *Client) Name() string { return ProviderName }

func (c *Client) Complete(ctx context.Context, inv domain.LLMInvocation) (string, error) {
	if c.executor == nil {
		return c.complete(ctx, inv)
	}
	out, err := c.executor.Call(ctx, operation, func(callCtx context.Context) (string, error) {
		return c.complete(callCtx, inv)
	}, resilience.ClassifyProviderError)
	if err != nil && resilience.IsCircuitOpen(err) {
		return "", domain.WrapError(domain.ErrProviderUnreachable, "openai chat", err)
	}
	return out, err
}

func (c *Client) complete(ctx context.Context, inv domain.LLMInvocation) (string, error) {
	req := goopenai.ChatCompletionRequest{
		Model: inv.Model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: inv.SystemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: inv.UserPrompt},
		},
		MaxTokens:   inv.MaxTokens,
		Temperature: temperature(inv.Temperature),
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	started := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		mapped := mapError(err)
		c.logger.Warn("llm.request.failed",
			"provider", ProviderName,
			"model", inv.Model,
			"duration_ms", time.Since(started).Milliseconds(),
			"error", mapped,
		)
		return "", mapped
	}
	c.logger.Debug("llm.request",
		"provider", ProviderName,
		"model", inv.Model,
		"duration_ms", time.Since(started).Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	)

	if len(resp.Choices) == 0 {
		return "", &domain.ProviderStatusError{Provider: ProviderName, Body: "response contained no choices"}
	}
	return resp.Choices[0].Message.Content, nil
}

// temperature keeps an explicit zero on the wire; the library omits a zero value.
func temperature(t float64) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}

func mapError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return &domain.ProviderStatusError{Provider: ProviderName, StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return &domain.ProviderStatusError{Provider: ProviderName, StatusCode: reqErr.HTTPStatusCode, Body: truncateBody(string(reqErr.Body))}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return domain.WrapError(domain.ErrProviderUnreachable, "openai chat", err)
	}

	return &domain.ProviderStatusError{Provider: ProviderName, Body: err.Error()}
}

func truncateBody(body string) string {
	body = strings.TrimSpace(body)
	if len(body) > 2048 {
		return body[:2048]
	}
	return body
}
