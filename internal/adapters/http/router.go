package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/kirillkom/pdfchecker/internal/config"
	"github.com/kirillkom/pdfchecker/internal/core/domain"
	"github.com/kirillkom/pdfchecker/internal/core/ports"
	"github.com/kirillkom/pdfchecker/internal/observability/metrics"
)

const (
	serviceName = "api"

	healthBanner = "PDF Checker Service is running"

	// multipartMemory bounds how much of a form is held in memory before
	// spilling file parts to disk.
	multipartMemory = 32 << 20
	// formOverheadBytes leaves room for rule fields and multipart framing.
	formOverheadBytes = 1 << 20
)

type Router struct {
	cfg      config.Config
	checker  ports.DocumentChecker
	exporter ports.ReportExporter
	metrics  *metrics.HTTPServerMetrics
	logger   *slog.Logger
}

func NewRouter(
	cfg config.Config,
	checker ports.DocumentChecker,
	exporter ports.ReportExporter,
	httpMetrics *metrics.HTTPServerMetrics,
	logger *slog.Logger,
) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		cfg:      cfg,
		checker:  checker,
		exporter: exporter,
		metrics:  httpMetrics,
		logger:   logger,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/pdf/health", rt.health)
	mux.HandleFunc("/v1/pdf/check", rt.checkDocument)
	mux.HandleFunc("/openapi.json", rt.openAPI)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(
		handler,
		rt.cfg.APIMaxInFlight,
		time.Duration(rt.cfg.APIOverloadWaitMS)*time.Millisecond,
		rt.recordRejected,
	)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst, rt.recordRejected)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(rt.logger, handler)
	handler = requestIDMiddleware(handler)
	return corsMiddleware(handler, rt.cfg.CORSAllowedOrigin)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed", "", nil)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, healthBanner)
}

func (rt *Router) checkDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed", "", nil)
		return
	}

	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	switch {
	case format == "" || format == "json":
	case format == "xlsx" && rt.exporter != nil:
	default:
		writeError(w, r, http.StatusBadRequest, "Validation failed", "", []string{"format must be json or xlsx"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, rt.maxBodyBytes())
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			rt.recordRejected("too_large")
			rt.writeCheckError(w, r, err)
			return
		}
		writeError(w, r, http.StatusBadRequest, "Validation failed", err.Error(),
			[]string{"multipart/form-data body with a file field is required"})
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	req := domain.CheckRequest{Rules: r.MultipartForm.Value["rules"]}
	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		writeError(w, r, http.StatusBadRequest, "Validation failed", err.Error(), []string{"file could not be read"})
		return
	default:
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			rt.writeCheckError(w, r, err)
			return
		}
		req.Document = data
		req.Filename = header.Filename
		if rt.metrics != nil {
			rt.metrics.RecordUpload(int64(len(data)))
		}
	}

	report, err := rt.checker.Check(r.Context(), req)
	if err != nil {
		rt.writeCheckError(w, r, err)
		return
	}

	if format == "xlsx" {
		rt.writeWorkbook(w, r, report)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (rt *Router) writeWorkbook(w http.ResponseWriter, r *http.Request, report *domain.CheckReport) {
	data, err := rt.exporter.Export(report)
	if err != nil {
		rt.writeCheckError(w, r, err)
		return
	}

	stem := strings.TrimSuffix(filepath.Base(report.FileName), filepath.Ext(report.FileName))
	if stem == "" || stem == "." {
		stem = "document"
	}
	w.Header().Set("Content-Type", rt.exporter.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": stem + "-report.xlsx",
	}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (rt *Router) maxBodyBytes() int64 {
	mb := rt.cfg.MaxFileSizeMB
	if mb <= 0 {
		mb = domain.DefaultMaxFileSizeMB
	}
	return int64(mb)*1024*1024 + formOverheadBytes
}

func (rt *Router) recordRejected(reason string) {
	if rt.metrics != nil {
		rt.metrics.RecordRejected(serviceName, reason)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
