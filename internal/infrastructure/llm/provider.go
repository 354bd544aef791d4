package llm

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/pdfchecker/internal/core/ports"
	"github.com/kirillkom/pdfchecker/internal/infrastructure/llm/anthropic"
	"github.com/kirillkom/pdfchecker/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/pdfchecker/internal/infrastructure/llm/openai"
	"github.com/kirillkom/pdfchecker/internal/infrastructure/resilience"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

type Settings struct {
	Provider string
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
}

// NewProvider picks the provider adapter once, at startup.
func NewProvider(s Settings, executor *resilience.Executor, logger *slog.Logger) (ports.LLMProvider, error) {
	switch strings.ToLower(strings.TrimSpace(s.Provider)) {
	case "", ProviderOpenAI:
		return openai.New(openai.Config{BaseURL: s.BaseURL, APIKey: s.APIKey, Timeout: s.Timeout}, executor, logger), nil
	case ProviderAnthropic:
		return anthropic.New(anthropic.Config{BaseURL: s.BaseURL, APIKey: s.APIKey, Timeout: s.Timeout}, executor, logger), nil
	case ProviderOllama:
		return ollama.New(ollama.Config{BaseURL: s.BaseURL, APIKey: s.APIKey, Timeout: s.Timeout}, executor, logger), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", s.Provider)
	}
}
