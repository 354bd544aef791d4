package httpadapter

import (
	"errors"
	"net/http"
	"time"

	"github.com/kirillkom/pdfchecker/internal/core/domain"
)

// ErrorResponse is the body of every non-2xx JSON reply.
type ErrorResponse struct {
	Status    int       `json:"status"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Errors    []string  `json:"errors,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Path      string    `json:"path"`
}

func mapErrorToHTTPStatus(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case domain.IsKind(err, domain.ErrValidationFailed):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrTooManyPages),
		domain.IsKind(err, domain.ErrExtractionFailed):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrProviderUnreachable),
		domain.IsKind(err, domain.ErrProviderError),
		domain.IsKind(err, domain.ErrResponseMalformed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "Validation failed"
	case http.StatusRequestEntityTooLarge:
		return "File size exceeds maximum limit"
	case http.StatusUnprocessableEntity:
		return "PDF processing failed"
	case http.StatusServiceUnavailable:
		return "LLM service failed"
	default:
		return "An unexpected error occurred"
	}
}

// writeCheckError renders a pipeline failure.
func (rt *Router) writeCheckError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)

	var violations []string
	details := err.Error()
	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		violations = validation.Violations
		details = ""
	}

	attrs := []any{
		"request_id", requestIDFromContext(r.Context()),
		"status", status,
		"error", err,
	}
	if status >= http.StatusInternalServerError {
		rt.logger.Error("check.request.failed", attrs...)
	} else {
		rt.logger.Warn("check.request.rejected", attrs...)
	}

	writeError(w, r, status, errorMessage(status), details, violations)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message, details string, violations []string) {
	writeJSON(w, status, ErrorResponse{
		Status:    status,
		Message:   message,
		Details:   details,
		Errors:    violations,
		Timestamp: time.Now().UTC(),
		Path:      r.URL.Path,
	})
}
