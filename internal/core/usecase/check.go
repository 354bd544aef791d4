package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kirillkom/pdfchecker/internal/core/domain"
	"github.com/kirillkom/pdfchecker/internal/core/ports"
)

const (
	defaultRuleConcurrency = domain.DefaultMaxRules
	msgCheckCancelled      = "check cancelled before the rule completed"
	msgCheckTimedOut       = "check timed out before the rule completed"
)

type CheckOptions struct {
	Model       string
	MaxTokens   int
	Temperature float64
	// Concurrency bounds the number of rules sent to the provider at once.
	Concurrency int
	// Timeout covers the whole rule batch. Zero disables it.
	Timeout time.Duration
}

func (o CheckOptions) normalize() CheckOptions {
	out := o
	if strings.TrimSpace(out.Model) == "" {
		out.Model = domain.DefaultModel
	}
	if out.MaxTokens <= 0 {
		out.MaxTokens = domain.DefaultMaxTokens
	}
	if out.Temperature < 0 {
		out.Temperature = domain.DefaultTemperature
	}
	if out.Concurrency <= 0 {
		out.Concurrency = defaultRuleConcurrency
	}
	if out.Timeout < 0 {
		out.Timeout = 0
	}
	return out
}

type CheckDocumentUseCase struct {
	validator *RequestValidator
	extractor ports.TextExtractor
	provider  ports.LLMProvider
	prompts   *PromptBuilder
	parser    *VerdictParser
	observer  ports.CheckObserver
	logger    *slog.Logger
	opts      CheckOptions
	now       func() time.Time
}

func NewCheckDocumentUseCase(
	validator *RequestValidator,
	extractor ports.TextExtractor,
	provider ports.LLMProvider,
	prompts *PromptBuilder,
	parser *VerdictParser,
	observer ports.CheckObserver,
	logger *slog.Logger,
	opts CheckOptions,
) *CheckDocumentUseCase {
	if validator == nil {
		validator = NewRequestValidator(DefaultValidationLimits())
	}
	if prompts == nil {
		prompts = NewPromptBuilder(domain.DefaultTruncateChars)
	}
	if parser == nil {
		parser = MustVerdictParser()
	}
	if observer == nil {
		observer = noopObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CheckDocumentUseCase{
		validator: validator,
		extractor: extractor,
		provider:  provider,
		prompts:   prompts,
		parser:    parser,
		observer:  observer,
		logger:    logger,
		opts:      opts.normalize(),
		now:       time.Now,
	}
}

// Check validates the request, extracts the document text and judges every rule.
// Validation and extraction failures are returned as errors. Per-rule failures
// become ERROR results and never abort the batch.
func (uc *CheckDocumentUseCase) Check(ctx context.Context, req domain.CheckRequest) (*domain.CheckReport, error) {
	started := uc.now()

	if err := uc.validator.Check(req); err != nil {
		return nil, err
	}

	doc, err := uc.extract(ctx, req.Document)
	if err != nil {
		return nil, err
	}

	results := uc.checkRules(ctx, uc.prompts.Prepare(doc.Text), req.Rules)
	overall := domain.Aggregate(results)
	elapsed := uc.now().Sub(started)

	uc.observer.ObserveReport(overall, doc.Pages, elapsed)
	uc.logger.Info("check.completed",
		"file_name", req.Filename,
		"pages", doc.Pages,
		"rules", len(req.Rules),
		"overall_status", overall,
		"duration_ms", elapsed.Milliseconds(),
	)

	return &domain.CheckReport{
		FileName:         req.Filename,
		TotalPages:       doc.Pages,
		Results:          results,
		OverallStatus:    overall,
		ProcessingTimeMs: elapsed.Milliseconds(),
		Timestamp:        uc.now().UTC(),
	}, nil
}

func (uc *CheckDocumentUseCase) extract(ctx context.Context, document []byte) (domain.ExtractedDocument, error) {
	doc, err := uc.extractor.Extract(ctx, document)
	if err != nil {
		if domain.IsKind(err, domain.ErrTooManyPages) || domain.IsKind(err, domain.ErrExtractionFailed) {
			return domain.ExtractedDocument{}, err
		}
		return domain.ExtractedDocument{}, domain.WrapError(domain.ErrExtractionFailed, "extract text", err)
	}
	return doc, nil
}

// checkRules fans rules out to the provider. Results are stored by input
// position. Rules still unfinished when the batch context ends are reported
// as ERROR and the completed ones are kept.
func (uc *CheckDocumentUseCase) checkRules(ctx context.Context, doc PreparedDocument, rules []string) []domain.RuleResult {
	batchCtx := ctx
	if uc.opts.Timeout > 0 {
		var cancel context.CancelFunc
		batchCtx, cancel = context.WithTimeout(ctx, uc.opts.Timeout)
		defer cancel()
	}

	results := make([]domain.RuleResult, len(rules))

	var g errgroup.Group
	g.SetLimit(uc.opts.Concurrency)
	for i, rule := range rules {
		if batchCtx.Err() != nil {
			results[i] = uc.cancelledResult(batchCtx, rule)
			continue
		}
		g.Go(func() error {
			results[i] = uc.checkRule(batchCtx, doc, rule)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (uc *CheckDocumentUseCase) checkRule(ctx context.Context, doc PreparedDocument, rule string) domain.RuleResult {
	started := uc.now()
	result := uc.judge(ctx, doc, rule)
	uc.observer.ObserveRule(uc.provider.Name(), result.Status, uc.now().Sub(started))
	return result
}

func (uc *CheckDocumentUseCase) judge(ctx context.Context, doc PreparedDocument, rule string) domain.RuleResult {
	if ctx.Err() != nil {
		return uc.cancelledResult(ctx, rule)
	}

	inv := domain.LLMInvocation{
		Model:        uc.opts.Model,
		DocumentText: doc.Text,
		Rule:         rule,
		MaxTokens:    uc.opts.MaxTokens,
		Temperature:  uc.opts.Temperature,
		SystemPrompt: uc.prompts.BuildSystemPrompt(),
		UserPrompt:   uc.prompts.BuildUserPromptFor(doc, rule),
	}

	raw, err := uc.provider.Complete(ctx, inv)
	if err != nil {
		if ctx.Err() != nil {
			return uc.cancelledResult(ctx, rule)
		}
		uc.logger.Warn("check.rule.error", "provider", uc.provider.Name(), "stage", "invoke", "error", err)
		return domain.ErrorResult(rule, domain.RuleFailurePrefix+err.Error())
	}

	verdict, err := uc.parser.Parse(raw)
	if err != nil {
		uc.logger.Warn("check.rule.error", "provider", uc.provider.Name(), "stage", "parse", "error", err)
		return domain.ErrorResult(rule, domain.RuleFailurePrefix+err.Error())
	}
	if !verdict.IsValid() {
		err := fmt.Errorf("invalid verdict: confidence %d outside [%d, %d]", *verdict.Confidence, domain.MinConfidence, domain.MaxConfidence)
		uc.logger.Warn("check.rule.error", "provider", uc.provider.Name(), "stage", "validate", "error", err)
		return domain.ErrorResult(rule, domain.RuleFailurePrefix+err.Error())
	}

	status, ok := normalizeStatus(*verdict.Status)
	if !ok {
		err := fmt.Errorf("invalid verdict: unknown status %q", *verdict.Status)
		uc.logger.Warn("check.rule.error", "provider", uc.provider.Name(), "stage", "validate", "error", err)
		return domain.ErrorResult(rule, domain.RuleFailurePrefix+err.Error())
	}

	result := verdict.RuleResult(rule)
	result.Status = status
	return result
}

func (uc *CheckDocumentUseCase) cancelledResult(ctx context.Context, rule string) domain.RuleResult {
	msg := msgCheckCancelled
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		msg = msgCheckTimedOut
	}
	return domain.ErrorResult(rule, domain.RuleFailurePrefix+msg)
}

func normalizeStatus(raw string) (domain.RuleStatus, bool) {
	switch domain.RuleStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case domain.RuleStatusPass:
		return domain.RuleStatusPass, true
	case domain.RuleStatusFail:
		return domain.RuleStatusFail, true
	default:
		return "", false
	}
}

type noopObserver struct{}

func (noopObserver) ObserveRule(string, domain.RuleStatus, time.Duration) {}
func (noopObserver) ObserveReport(domain.OverallStatus, int, time.Duration) {}
