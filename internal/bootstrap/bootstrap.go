package bootstrap

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/pdfchecker/internal/config"
	"github.com/kirillkom/pdfchecker/internal/core/ports"
	"github.com/kirillkom/pdfchecker/internal/core/usecase"
	"github.com/kirillkom/pdfchecker/internal/infrastructure/export/xlsx"
	"github.com/kirillkom/pdfchecker/internal/infrastructure/extractor/pdf"
	"github.com/kirillkom/pdfchecker/internal/infrastructure/llm"
	"github.com/kirillkom/pdfchecker/internal/infrastructure/resilience"
	"github.com/kirillkom/pdfchecker/internal/observability/metrics"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Checker   ports.DocumentChecker
	Validator *usecase.RequestValidator
	Exporter  ports.ReportExporter
	Provider  ports.LLMProvider

	HTTPMetrics  *metrics.HTTPServerMetrics
	CheckMetrics *metrics.CheckMetrics
}

// New wires the checking pipeline for one process. service labels logs and metrics.
func New(cfg config.Config, service string, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	httpMetrics := metrics.NewHTTPServerMetrics(service)
	checkMetrics := metrics.NewCheckMetrics(service, httpMetrics.Registry())

	executor := resilience.NewExecutor(resilienceConfig(cfg, checkMetrics))
	provider, err := llm.NewProvider(llm.Settings{
		Provider: cfg.LLMProvider,
		BaseURL:  cfg.LLMAPIURL,
		APIKey:   cfg.LLMAPIKey,
		Timeout:  time.Duration(cfg.LLMTimeoutSeconds) * time.Second,
	}, executor, logger)
	if err != nil {
		return nil, fmt.Errorf("init llm provider: %w", err)
	}

	validator := usecase.NewRequestValidator(usecase.ValidationLimits{
		MaxFileSizeMB: cfg.MaxFileSizeMB,
		MaxRules:      cfg.MaxRules,
		MaxRuleLength: cfg.MaxRuleLength,
	})
	parser, err := usecase.NewVerdictParser()
	if err != nil {
		return nil, fmt.Errorf("init verdict parser: %w", err)
	}

	checker := usecase.NewCheckDocumentUseCase(
		validator,
		pdf.NewExtractor(cfg.MaxPages),
		provider,
		usecase.NewPromptBuilder(cfg.DocumentTruncateChars),
		parser,
		checkMetrics,
		logger,
		usecase.CheckOptions{
			Model:       cfg.LLMModel,
			MaxTokens:   cfg.LLMMaxTokens,
			Temperature: cfg.LLMTemperature,
			Concurrency: cfg.CheckRuleConcurrency,
			Timeout:     time.Duration(cfg.CheckTimeoutSeconds) * time.Second,
		},
	)

	logger.Info("bootstrap.ready",
		"llm_provider", provider.Name(),
		"llm_model", cfg.LLMModel,
		"max_pages", cfg.MaxPages,
		"rule_concurrency", cfg.CheckRuleConcurrency,
	)

	return &App{
		Config:       cfg,
		Logger:       logger,
		Checker:      checker,
		Validator:    validator,
		Exporter:     xlsx.NewExporter(),
		Provider:     provider,
		HTTPMetrics:  httpMetrics,
		CheckMetrics: checkMetrics,
	}, nil
}

func resilienceConfig(cfg config.Config, checkMetrics *metrics.CheckMetrics) resilience.Config {
	rc := resilience.DefaultConfig()
	rc.RetryMaxAttempts = cfg.LLMRetryMaxAttempts
	rc.BreakerEnabled = cfg.LLMBreakerEnabled
	rc.OnStateChange = checkMetrics.ObserveBreakerState
	return rc
}
