package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kirillkom/pdfchecker/internal/core/domain"
)

// CheckMetrics records pipeline outcomes. It satisfies ports.CheckObserver.
type CheckMetrics struct {
	service string

	ruleTotal      *prometheus.CounterVec
	ruleDuration   *prometheus.HistogramVec
	reportTotal    *prometheus.CounterVec
	reportDuration prometheus.Histogram
	documentPages  prometheus.Histogram
	breakerState   *prometheus.GaugeVec
}

func NewCheckMetrics(service string, registerer prometheus.Registerer) *CheckMetrics {
	ruleTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "check",
			Name:      "rules_total",
			Help:      "Total checked rules by provider and status.",
		},
		[]string{"service", "provider", "status"},
	)
	ruleDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "check",
			Name:      "rule_duration_seconds",
			Help:      "Time spent judging one rule, provider call included.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
		},
		[]string{"service", "provider"},
	)
	reportTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "check",
			Name:      "reports_total",
			Help:      "Total produced reports by overall status.",
		},
		[]string{"service", "overall_status"},
	)
	reportDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "check",
			Name:        "report_duration_seconds",
			Help:        "End-to-end check duration in seconds.",
			Buckets:     []float64{0.5, 1, 2, 5, 10, 20, 40, 90, 180},
			ConstLabels: prometheus.Labels{"service": service},
		},
	)
	documentPages := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "check",
			Name:        "document_pages",
			Help:        "Page count of checked documents.",
			Buckets:     []float64{1, 2, 5, 10, 20, 30, 50},
			ConstLabels: prometheus.Labels{"service": service},
		},
	)
	breakerState := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "circuit_breaker_open",
			Help:      "1 when the provider circuit breaker is open, 0.5 half-open, 0 closed.",
		},
		[]string{"service", "operation"},
	)

	if registerer != nil {
		registerer.MustRegister(ruleTotal, ruleDuration, reportTotal, reportDuration, documentPages, breakerState)
	}

	return &CheckMetrics{
		service:        service,
		ruleTotal:      ruleTotal,
		ruleDuration:   ruleDuration,
		reportTotal:    reportTotal,
		reportDuration: reportDuration,
		documentPages:  documentPages,
		breakerState:   breakerState,
	}
}

func (m *CheckMetrics) ObserveRule(provider string, status domain.RuleStatus, duration time.Duration) {
	if provider == "" {
		provider = "unknown"
	}
	m.ruleTotal.WithLabelValues(m.service, provider, string(status)).Inc()
	m.ruleDuration.WithLabelValues(m.service, provider).Observe(duration.Seconds())
}

func (m *CheckMetrics) ObserveReport(status domain.OverallStatus, pages int, duration time.Duration) {
	m.reportTotal.WithLabelValues(m.service, string(status)).Inc()
	m.reportDuration.Observe(duration.Seconds())
	if pages > 0 {
		m.documentPages.Observe(float64(pages))
	}
}

// ObserveBreakerState matches resilience.Config.OnStateChange.
func (m *CheckMetrics) ObserveBreakerState(operation, _ string, to string) {
	value := 0.0
	switch to {
	case "open":
		value = 1
	case "half-open":
		value = 0.5
	}
	m.breakerState.WithLabelValues(m.service, operation).Set(value)
}
