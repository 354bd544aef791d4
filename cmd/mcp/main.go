package main

import (
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/pdfchecker/internal/bootstrap"
	"github.com/kirillkom/pdfchecker/internal/config"
	"github.com/kirillkom/pdfchecker/internal/observability/logging"
)

const serverVersion = "1.0.0"

func main() {
	// stdout carries the protocol, everything else goes to stderr.
	if err := config.LoadDotEnv(); err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("dotenv_load_failed", "error", err)
		os.Exit(1)
	}
	cfg := config.Load()
	logger := logging.NewJSONLoggerTo(os.Stderr, "pdfchecker-mcp", cfg.LogLevel)
	slog.SetDefault(logger)

	app, err := bootstrap.New(cfg, "mcp", logger)
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}

	s := server.NewMCPServer("pdfchecker", serverVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s.AddTool(checkPDFTool(cfg.MaxRules), newCheckPDFHandler(app.Checker, logger))

	logger.Info("mcp_serving", "transport", "stdio", "tool", checkPDFToolName)
	if err := server.ServeStdio(s, server.WithErrorLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError))); err != nil {
		logger.Error("mcp_server_error", "error", err)
		os.Exit(1)
	}
}
