package ollama

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/pdfchecker/internal/core/domain"
	"github.com/kirillkom/pdfchecker/internal/infrastructure/resilience"
)

const (
	ProviderName   = "Ollama"
	DefaultBaseURL = "http://localhost:11434"

	chatPath  = "/api/chat"
	operation = "ollama.chat"
)

type Config struct {
	BaseURL string
	// APIKey is optional and sent as a bearer token for proxied deployments.
	APIKey  string
	Timeout time.Duration
}

// Client calls a local Ollama server through its chat endpoint in JSON mode.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	executor   *resilience.Executor
	logger     *slog.Logger
}

func New(cfg Config, executor *resilience.Executor, logger *slog.Logger) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		httpClient: &http.Client{Timeout: timeout},
		executor:   executor,
		logger:     logger,
	}
}

func (c *Client) Name() string { return ProviderName }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Format   string        `json:"format"`
	Options  chatOptions   `json:"options"`
}

type chatResponse struct {
	Message         *chatMessage `json:"message"`
	PromptEvalCount int          `json:"prompt_eval_count"`
	EvalCount       int          `json:"eval_count"`
}

func (c *Client) Complete(ctx context.Context, inv domain.LLMInvocation) (string, error) {
	if c.executor == nil {
		return c.complete(ctx, inv)
	}
	out, err := c.executor.Call(ctx, operation, func(callCtx context.Context) (string, error) {
		return c.complete(callCtx, inv)
	}, resilience.ClassifyProviderError)
	if err != nil && resilience.IsCircuitOpen(err) {
		return "", domain.WrapError(domain.ErrProviderUnreachable, "ollama chat", err)
	}
	return out, err
}

func (c *Client) complete(ctx context.Context, inv domain.LLMInvocation) (string, error) {
	req := chatRequest{
		Model: inv.Model,
		Messages: []chatMessage{
			{Role: "system", Content: inv.SystemPrompt},
			{Role: "user", Content: inv.UserPrompt},
		},
		Stream: false,
		Format: "json",
		Options: chatOptions{
			Temperature: inv.Temperature,
			NumPredict:  inv.MaxTokens,
		},
	}

	started := time.Now()
	var resp chatResponse
	if err := c.postJSON(ctx, chatPath, req, &resp); err != nil {
		c.logger.Warn("llm.request.failed",
			"provider", ProviderName,
			"model", inv.Model,
			"duration_ms", time.Since(started).Milliseconds(),
			"error", err,
		)
		return "", err
	}
	c.logger.Debug("llm.request",
		"provider", ProviderName,
		"model", inv.Model,
		"duration_ms", time.Since(started).Milliseconds(),
		"prompt_tokens", resp.PromptEvalCount,
		"completion_tokens", resp.EvalCount,
	)

	if resp.Message == nil {
		return "", &domain.ProviderStatusError{Provider: ProviderName, Body: "response contained no message"}
	}
	return strings.TrimSpace(resp.Message.Content), nil
}
