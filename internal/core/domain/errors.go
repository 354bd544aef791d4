package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidationFailed    = errors.New("validation failed")
	ErrExtractionFailed    = errors.New("extraction failed")
	ErrTooManyPages        = errors.New("too many pages")
	ErrProviderUnreachable = errors.New("provider unreachable")
	ErrProviderError       = errors.New("provider error")
	ErrResponseMalformed   = errors.New("response malformed")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// ValidationError carries every violation found in a check request.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Violations) == 0 {
		return ErrValidationFailed.Error()
	}
	return ErrValidationFailed.Error() + ": " + strings.Join(e.Violations, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrValidationFailed }

// PageLimitError reports a document that exceeds the page ceiling.
type PageLimitError struct {
	Pages    int
	MaxPages int
}

func (e *PageLimitError) Error() string {
	return fmt.Sprintf("PDF has too many pages: %d (max: %d)", e.Pages, e.MaxPages)
}

func (e *PageLimitError) Unwrap() error { return ErrTooManyPages }

// ProviderStatusError is returned when the provider answers with a non-success status
// or an envelope that cannot be decoded.
type ProviderStatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *ProviderStatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	switch {
	case e.StatusCode == 0 && body == "":
		return fmt.Sprintf("%s API returned an invalid response", e.Provider)
	case e.StatusCode == 0:
		return fmt.Sprintf("%s API returned an invalid response: %s", e.Provider, body)
	case body == "":
		return fmt.Sprintf("%s API returned status: %d", e.Provider, e.StatusCode)
	default:
		return fmt.Sprintf("%s API returned status: %d: %s", e.Provider, e.StatusCode, body)
	}
}

func (e *ProviderStatusError) Unwrap() error { return ErrProviderError }

// MalformedResponseError keeps the offending provider text for diagnostics.
type MalformedResponseError struct {
	Raw string
	Err error
}

func (e *MalformedResponseError) Error() string {
	if e.Err == nil {
		return "Failed to parse LLM response"
	}
	return "Failed to parse LLM response: " + e.Err.Error()
}

func (e *MalformedResponseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrResponseMalformed}
	}
	return []error{ErrResponseMalformed, e.Err}
}
