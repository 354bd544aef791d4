package usecase

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/pdfchecker/internal/core/domain"
)

const (
	msgFileRequired     = "PDF file is required"
	msgInvalidFileType  = "Only PDF files are allowed"
	msgFileSizeExceeded = "File size exceeds maximum limit"
	msgRulesRequired    = "At least one rule is required"
	msgRuleEmpty        = "Rule cannot be empty"
)

type ValidationLimits struct {
	MaxFileSizeMB int
	MaxRules      int
	MaxRuleLength int
}

func DefaultValidationLimits() ValidationLimits {
	return ValidationLimits{
		MaxFileSizeMB: domain.DefaultMaxFileSizeMB,
		MaxRules:      domain.DefaultMaxRules,
		MaxRuleLength: domain.DefaultMaxRuleLength,
	}
}

func (l ValidationLimits) normalize() ValidationLimits {
	out := l
	def := DefaultValidationLimits()
	if out.MaxFileSizeMB <= 0 {
		out.MaxFileSizeMB = def.MaxFileSizeMB
	}
	if out.MaxRules <= 0 {
		out.MaxRules = def.MaxRules
	}
	if out.MaxRuleLength <= 0 {
		out.MaxRuleLength = def.MaxRuleLength
	}
	return out
}

// RequestValidator checks a request's structure before any extraction or provider spend.
type RequestValidator struct {
	limits ValidationLimits
}

func NewRequestValidator(limits ValidationLimits) *RequestValidator {
	return &RequestValidator{limits: limits.normalize()}
}

func (v *RequestValidator) Limits() ValidationLimits {
	return v.limits
}

// Validate returns every violation in the request. An empty slice means the request is valid.
func (v *RequestValidator) Validate(req domain.CheckRequest) []string {
	violations := make([]string, 0)

	if len(req.Document) == 0 {
		violations = append(violations, msgFileRequired)
	} else {
		if !IsPDFFilename(req.Filename) {
			violations = append(violations, msgInvalidFileType)
		}
		if !v.isValidFileSize(int64(len(req.Document))) {
			violations = append(violations, msgFileSizeExceeded)
		}
	}

	return append(violations, v.ValidateRules(req.Rules)...)
}

// ValidateRules checks rule count and each rule's content.
func (v *RequestValidator) ValidateRules(rules []string) []string {
	if len(rules) == 0 {
		return []string{msgRulesRequired}
	}

	var violations []string
	for i, rule := range rules {
		if strings.TrimSpace(rule) == "" {
			violations = append(violations, fmt.Sprintf("Rule %d: %s", i+1, msgRuleEmpty))
		}
		if utf8.RuneCountInString(rule) > v.limits.MaxRuleLength {
			violations = append(violations, fmt.Sprintf("Rule %d is too long (max %d characters)", i+1, v.limits.MaxRuleLength))
		}
	}
	if len(rules) > v.limits.MaxRules {
		violations = append(violations, fmt.Sprintf("Maximum %d rules allowed", v.limits.MaxRules))
	}
	return violations
}

// Check wraps Validate into a typed error.
func (v *RequestValidator) Check(req domain.CheckRequest) error {
	violations := v.Validate(req)
	if len(violations) == 0 {
		return nil
	}
	return &domain.ValidationError{Violations: violations}
}

func (v *RequestValidator) isValidFileSize(size int64) bool {
	maxBytes := int64(v.limits.MaxFileSizeMB) * 1024 * 1024
	return size > 0 && size <= maxBytes
}

func IsPDFFilename(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	return strings.HasSuffix(strings.ToLower(name), domain.PDFExtension)
}
