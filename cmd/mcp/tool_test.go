package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kirillkom/pdfchecker/internal/core/domain"
)

type checkerFake struct {
	err  error
	last domain.CheckRequest
}

func (f *checkerFake) Check(_ context.Context, req domain.CheckRequest) (*domain.CheckReport, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &domain.CheckReport{FileName: req.Filename, OverallStatus: domain.OverallAllFail}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func callTool(t *testing.T, checker *checkerFake, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	handler := newCheckPDFHandler(checker, discardLogger())
	req := mcp.CallToolRequest{Params: mcp.CallToolParams{Name: checkPDFToolName, Arguments: args}}
	res, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatalf("expected content in result")
	}
	text, ok := mcp.AsTextContent(res.Content[0])
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return text.Text
}

func samplePDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o600); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	return path
}

func TestCheckPDFToolReturnsReport(t *testing.T) {
	checker := &checkerFake{}
	path := samplePDF(t)

	res := callTool(t, checker, map[string]any{"path": path, "rules": []any{"a", "b"}})
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}
	if checker.last.Filename != "policy.pdf" || len(checker.last.Rules) != 2 {
		t.Fatalf("unexpected request: %+v", checker.last)
	}
	if !strings.Contains(resultText(t, res), `"overallStatus":"ALL_FAIL"`) {
		t.Fatalf("expected JSON report text, got %s", resultText(t, res))
	}
	if _, ok := res.StructuredContent.(*domain.CheckReport); !ok {
		t.Fatalf("expected structured report, got %T", res.StructuredContent)
	}
}

func TestCheckPDFToolReportsFailuresAsToolErrors(t *testing.T) {
	path := samplePDF(t)
	cases := map[string]struct {
		args    map[string]any
		err     error
		wantSub string
	}{
		"missing path":  {args: map[string]any{"rules": []any{"a"}}, wantSub: "path"},
		"missing rules": {args: map[string]any{"path": path}, wantSub: "rules"},
		"unreadable":    {args: map[string]any{"path": filepath.Join(t.TempDir(), "nope.pdf"), "rules": []any{"a"}}, wantSub: "read document"},
		"validation": {
			args:    map[string]any{"path": path, "rules": []any{""}},
			err:     &domain.ValidationError{Violations: []string{"Rule 1: Rule cannot be empty"}},
			wantSub: "Rule 1: Rule cannot be empty",
		},
		"page limit": {
			args:    map[string]any{"path": path, "rules": []any{"a"}},
			err:     &domain.PageLimitError{Pages: 80, MaxPages: 50},
			wantSub: "PDF processing failed",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			res := callTool(t, &checkerFake{err: tc.err}, tc.args)
			if !res.IsError {
				t.Fatalf("expected tool error")
			}
			if text := resultText(t, res); !strings.Contains(text, tc.wantSub) {
				t.Fatalf("expected %q in %q", tc.wantSub, text)
			}
		})
	}
}

func TestCheckPDFToolSchema(t *testing.T) {
	tool := checkPDFTool(10)
	if tool.Name != checkPDFToolName {
		t.Fatalf("unexpected tool name %q", tool.Name)
	}
	required := strings.Join(tool.InputSchema.Required, ",")
	if !strings.Contains(required, "path") || !strings.Contains(required, "rules") {
		t.Fatalf("expected path and rules to be required, got %v", tool.InputSchema.Required)
	}
}
