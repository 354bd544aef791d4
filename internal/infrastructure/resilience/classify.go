package resilience

import (
	"errors"
	"net/http"

	"github.com/kirillkom/pdfchecker/internal/core/domain"
)

// ClassifyProviderError decides retry and breaker accounting for LLM provider failures.
// Client-side timeouts count as unreachable. Caller cancellation never reaches
// the classifier: the executor excludes it before.
func ClassifyProviderError(err error) ErrorClassification {
	if err == nil {
		return ErrorClassification{}
	}

	var statusErr *domain.ProviderStatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == 0:
			return ErrorClassification{Retryable: false, RecordFailure: true}
		case IsRetryableHTTPStatus(statusErr.StatusCode):
			return ErrorClassification{Retryable: true, RecordFailure: true}
		default:
			return ErrorClassification{Retryable: false, RecordFailure: false}
		}
	}

	if domain.IsKind(err, domain.ErrProviderUnreachable) {
		return ErrorClassification{Retryable: true, RecordFailure: true}
	}

	return ErrorClassification{Retryable: false, RecordFailure: true}
}

func IsRetryableHTTPStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
