package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/kirillkom/pdfchecker/internal/bootstrap"
	"github.com/kirillkom/pdfchecker/internal/config"
	"github.com/kirillkom/pdfchecker/internal/core/domain"
	"github.com/kirillkom/pdfchecker/internal/observability/logging"
)

var stderr io.Writer = os.Stderr

const (
	exitOK       = 0
	exitFailure  = 1
	exitRejected = 2
)

// printError writes to stderr only; stdout carries the report.
func printError(format string, args ...any) {
	_, _ = fmt.Fprintf(stderr, format, args...)
}

func main() {
	var (
		file      = flag.String("file", "", "PDF document to check (required)")
		rulesPath = flag.String("rules", "", "YAML file with the rules to check (required)")
		xlsxOut   = flag.String("xlsx", "", "also write the report as an XLSX workbook to this path")
	)
	flag.Parse()

	if *file == "" || *rulesPath == "" {
		printError("Error: -file and -rules are required\n")
		flag.Usage()
		os.Exit(exitFailure)
	}

	if err := config.LoadDotEnv(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(exitFailure)
	}
	cfg := config.Load()
	logger := logging.NewJSONLoggerTo(os.Stderr, "pdfchecker-cli", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(cfg, "cli", logger)
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(exitFailure)
	}

	os.Exit(run(ctx, app, *file, *rulesPath, *xlsxOut, os.Stdout))
}

func run(ctx context.Context, app *bootstrap.App, file, rulesPath, xlsxOut string, stdout io.Writer) int {
	rules, err := loadRules(rulesPath)
	if err != nil {
		printError("Error: %v\n", err)
		return exitFailure
	}
	document, err := os.ReadFile(file)
	if err != nil {
		printError("Error: read document: %v\n", err)
		return exitFailure
	}

	report, err := app.Checker.Check(ctx, domain.CheckRequest{
		Document: document,
		Filename: filepath.Base(file),
		Rules:    rules,
	})
	if err != nil {
		return reportFailure(err)
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		printError("Error: write report: %v\n", err)
		return exitFailure
	}

	if xlsxOut != "" {
		data, err := app.Exporter.Export(report)
		if err != nil {
			printError("Error: export workbook: %v\n", err)
			return exitFailure
		}
		if err := os.WriteFile(xlsxOut, data, 0o644); err != nil {
			printError("Error: write workbook: %v\n", err)
			return exitFailure
		}
		app.Logger.Info("report.exported", "path", xlsxOut, "bytes", len(data))
	}
	return exitOK
}

func reportFailure(err error) int {
	var validation *domain.ValidationError
	switch {
	case errors.As(err, &validation):
		printError("Validation failed:\n")
		for _, v := range validation.Violations {
			printError("  - %s\n", v)
		}
		return exitRejected
	case domain.IsKind(err, domain.ErrTooManyPages), domain.IsKind(err, domain.ErrExtractionFailed):
		printError("PDF processing failed: %v\n", err)
		return exitRejected
	default:
		printError("Error: %v\n", err)
		return exitFailure
	}
}
