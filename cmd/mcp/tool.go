package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/pdfchecker/internal/core/domain"
	"github.com/kirillkom/pdfchecker/internal/core/ports"
)

const checkPDFToolName = "check_pdf"

func checkPDFTool(maxRules int) mcp.Tool {
	return mcp.NewTool(checkPDFToolName,
		mcp.WithDescription("Check a PDF document on disk against natural-language rules. "+
			"Returns one PASS/FAIL/ERROR verdict per rule with evidence, reasoning and confidence."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF file"),
		),
		mcp.WithArray("rules",
			mcp.Required(),
			mcp.Description("Rules to check, in order"),
			mcp.MinItems(1),
			mcp.MaxItems(maxRules),
			mcp.WithStringItems(),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func newCheckPDFHandler(checker ports.DocumentChecker, logger *slog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := request.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		rules, err := request.RequireStringSlice("rules")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		document, err := os.ReadFile(path)
		if err != nil {
			return mcp.NewToolResultErrorFromErr("read document", err), nil
		}

		report, err := checker.Check(ctx, domain.CheckRequest{
			Document: document,
			Filename: filepath.Base(path),
			Rules:    rules,
		})
		if err != nil {
			logger.Warn("mcp.check_pdf.failed", "path", path, "error", err)
			return toolError(err), nil
		}

		text, err := json.Marshal(report)
		if err != nil {
			return nil, fmt.Errorf("encode report: %w", err)
		}
		return mcp.NewToolResultStructured(report, string(text)), nil
	}
}

func toolError(err error) *mcp.CallToolResult {
	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		return mcp.NewToolResultError("Validation failed: " + strings.Join(validation.Violations, "; "))
	}
	if domain.IsKind(err, domain.ErrTooManyPages) || domain.IsKind(err, domain.ErrExtractionFailed) {
		return mcp.NewToolResultErrorFromErr("PDF processing failed", err)
	}
	return mcp.NewToolResultErrorFromErr("check failed", err)
}
