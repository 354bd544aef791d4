package ports

import (
	"context"
	"time"

	"github.com/kirillkom/pdfchecker/internal/core/domain"
)

// TextExtractor turns raw document bytes into plain text and a page count.
type TextExtractor interface {
	Extract(ctx context.Context, document []byte) (domain.ExtractedDocument, error)
}

// LLMProvider sends one invocation to the configured provider and returns the raw completion text.
type LLMProvider interface {
	Complete(ctx context.Context, inv domain.LLMInvocation) (string, error)
	Name() string
}

// CheckObserver receives pipeline measurements.
type CheckObserver interface {
	ObserveRule(provider string, status domain.RuleStatus, duration time.Duration)
	ObserveReport(status domain.OverallStatus, pages int, duration time.Duration)
}

// ReportExporter renders a finished report into a downloadable representation.
type ReportExporter interface {
	Export(report *domain.CheckReport) ([]byte, error)
	ContentType() string
}
