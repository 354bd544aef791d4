package ports

import (
	"context"

	"github.com/kirillkom/pdfchecker/internal/core/domain"
)

// DocumentChecker is the inbound contract for checking a document against rules.
type DocumentChecker interface {
	Check(ctx context.Context, req domain.CheckRequest) (*domain.CheckReport, error)
}
