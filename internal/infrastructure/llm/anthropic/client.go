package anthropic

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/kirillkom/pdfchecker/internal/core/domain"
	"github.com/kirillkom/pdfchecker/internal/infrastructure/resilience"
)

const (
	ProviderName   = "Anthropic"
	DefaultBaseURL = "https://api.anthropic.com"

	operation    = "anthropic.messages"
	maxErrorBody = 2048
)

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client calls the Anthropic messages API. There is no JSON mode, so the
// system prompt alone asks for a JSON object.
type Client struct {
	api      sdk.Client
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

	// Retries belong to the executor.
	api := sdk.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
		option.WithMaxRetries(0),
	)
	return &Client{api: api, executor: executor, logger: logger}
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
		return "", domain.WrapError(domain.ErrProviderUnreachable, "anthropic messages", err)
	}
	return out, err
}

func (c *Client) complete(ctx context.Context, inv domain.LLMInvocation) (string, error) {
	params := sdk.MessageNewParams{
		Model:       sdk.Model(inv.Model),
		MaxTokens:   int64(inv.MaxTokens),
		Temperature: sdk.Float(inv.Temperature),
		System:      []sdk.TextBlockParam{{Text: inv.SystemPrompt}},
		Messages:    []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock(inv.UserPrompt))},
	}

	started := time.Now()
	var httpResp *http.Response
	msg, err := c.api.Messages.New(ctx, params, option.WithResponseInto(&httpResp))
	if err != nil {
		mapped := mapError(err, httpResp)
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
		"prompt_tokens", msg.Usage.InputTokens,
		"completion_tokens", msg.Usage.OutputTokens,
	)

	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", &domain.ProviderStatusError{Provider: ProviderName, Body: "response contained no text content"}
}

// mapError turns SDK failures into domain errors. Error bodies that are not
// JSON never become *sdk.Error, so the raw response is consulted as well.
func mapError(err error, resp *http.Response) error {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		return &domain.ProviderStatusError{Provider: ProviderName, StatusCode: apiErr.StatusCode, Body: truncateBody(apiErr.RawJSON())}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return domain.WrapError(domain.ErrProviderUnreachable, "anthropic messages", err)
	}

	if resp != nil && resp.StatusCode >= http.StatusBadRequest {
		body := ""
		if resp.Body != nil {
			data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			body = string(data)
		}
		return &domain.ProviderStatusError{Provider: ProviderName, StatusCode: resp.StatusCode, Body: truncateBody(body)}
	}

	return &domain.ProviderStatusError{Provider: ProviderName, Body: err.Error()}
}

func truncateBody(body string) string {
	body = strings.TrimSpace(body)
	if len(body) > maxErrorBody {
		return body[:maxErrorBody]
	}
	return body
}
