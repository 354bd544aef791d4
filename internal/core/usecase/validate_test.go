package usecase

import (
	"errors"
	"strings"
	"testing"

	"github.com/kirillkom/pdfchecker/internal/core/domain"
)

func validRequest() domain.CheckRequest {
	return domain.CheckRequest{
		Document: []byte("%PDF-1.4 stub"),
		Filename: "contract.pdf",
		Rules:    []string{"Document must mention a due date"},
	}
}

func containsViolation(violations []string, want string) bool {
	for _, v := range violations {
		if v == want {
			return true
		}
	}
	return false
}

func TestValidateAcceptsValidRequest(t *testing.T) {
	v := NewRequestValidator(DefaultValidationLimits())
	if violations := v.Validate(validRequest()); len(violations) != 0 {
		t.Fatalf("expected no violations, got %v", violations)
	}
	if err := v.Check(validRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	elevenRules := make([]string, 11)
	for i := range elevenRules {
		elevenRules[i] = "rule"
	}

	cases := []struct {
		name   string
		mutate func(*domain.CheckRequest)
		want   string
	}{
		{name: "no rules", mutate: func(r *domain.CheckRequest) { r.Rules = nil }, want: "At least one rule is required"},
		{name: "eleven rules", mutate: func(r *domain.CheckRequest) { r.Rules = elevenRules }, want: "Maximum 10 rules allowed"},
		{name: "rule too long", mutate: func(r *domain.CheckRequest) { r.Rules = []string{strings.Repeat("a", 501)} }, want: "Rule 1 is too long (max 500 characters)"},
		{name: "blank rule", mutate: func(r *domain.CheckRequest) { r.Rules = []string{"ok", "   "} }, want: "Rule 2: Rule cannot be empty"},
		{name: "non pdf name", mutate: func(r *domain.CheckRequest) { r.Filename = "notes.txt" }, want: "Only PDF files are allowed"},
		{name: "empty file", mutate: func(r *domain.CheckRequest) { r.Document = nil }, want: "PDF file is required"},
		{name: "oversize", mutate: func(r *domain.CheckRequest) { r.Document = make([]byte, 10*1024*1024+1) }, want: "File size exceeds maximum limit"},
	}

	v := NewRequestValidator(DefaultValidationLimits())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			violations := v.Validate(req)
			if !containsViolation(violations, tc.want) {
				t.Fatalf("expected violation %q, got %v", tc.want, violations)
			}
		})
	}
}

func TestValidateRuleLengthBoundary(t *testing.T) {
	v := NewRequestValidator(DefaultValidationLimits())
	req := validRequest()
	req.Rules = []string{strings.Repeat("é", 500)}
	if violations := v.Validate(req); len(violations) != 0 {
		t.Fatalf("500 characters must be accepted, got %v", violations)
	}
}

func TestValidateUppercaseExtension(t *testing.T) {
	v := NewRequestValidator(DefaultValidationLimits())
	req := validRequest()
	req.Filename = "REPORT.PDF"
	if violations := v.Validate(req); len(violations) != 0 {
		t.Fatalf("expected uppercase extension to pass, got %v", violations)
	}
}

func TestValidateAccumulatesViolations(t *testing.T) {
	v := NewRequestValidator(DefaultValidationLimits())
	req := domain.CheckRequest{
		Document: []byte("data"),
		Filename: "scan.png",
		Rules:    []string{"", strings.Repeat("x", 600)},
	}

	violations := v.Validate(req)
	for _, want := range []string{
		"Only PDF files are allowed",
		"Rule 1: Rule cannot be empty",
		"Rule 2 is too long (max 500 characters)",
	} {
		if !containsViolation(violations, want) {
			t.Fatalf("expected %q in %v", want, violations)
		}
	}

	err := v.Check(req)
	var validationErr *domain.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected *domain.ValidationError, got %T", err)
	}
	if len(validationErr.Violations) != len(violations) {
		t.Fatalf("expected %d violations in error, got %d", len(violations), len(validationErr.Violations))
	}
	if !domain.IsKind(err, domain.ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed kind")
	}
}

func TestValidateCustomLimits(t *testing.T) {
	v := NewRequestValidator(ValidationLimits{MaxFileSizeMB: 1, MaxRules: 2, MaxRuleLength: 10})
	req := validRequest()
	req.Document = make([]byte, 1024*1024+1)
	req.Rules = []string{"short", "also short", "third one"}

	violations := v.Validate(req)
	if !containsViolation(violations, "File size exceeds maximum limit") {
		t.Fatalf("expected size violation, got %v", violations)
	}
	if !containsViolation(violations, "Maximum 2 rules allowed") {
		t.Fatalf("expected rule count violation, got %v", violations)
	}
}
