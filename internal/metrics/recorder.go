// Package metrics exposes pipeline observations to Prometheus.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bist"

// Recorder implements contracts.MetricsRecorder using Prometheus
type Recorder struct {
	registry prometheus.Gatherer

	analyses          *prometheus.CounterVec
	indicatorFailures *prometheus.CounterVec
	macroDegraded     *prometheus.CounterVec
	hybridScore       *prometheus.GaugeVec
	latency           *prometheus.HistogramVec
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	jobRuns           *prometheus.CounterVec
}

// New creates a recorder registered on its own registry, with Go and process collectors
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg)
}

// NewWithRegistry creates a recorder on reg
func NewWithRegistry(reg *prometheus.Registry) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		analyses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "analyses_total",
				Help:      "Analyses by outcome (ok, input_error, config_error, data_quality_error, error)",
			},
			[]string{"outcome"},
		),
		indicatorFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "indicator_failures_total",
				Help:      "Indicators that could not be computed",
			},
			[]string{"indicator"},
		),
		macroDegraded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "macro_factor_degraded_total",
				Help:      "Macro factors scored neutral because their data was missing",
			},
			[]string{"factor"},
		),
		hybridScore: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "hybrid_score",
				Help:      "Last hybrid score per symbol (0-100)",
			},
			[]string{"symbol"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of pipeline operations in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"operation"},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"route", "method", "class"},
		),
		jobRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "job_runs_total",
				Help:      "Scheduled job runs by job and status",
			},
			[]string{"job", "status"},
		),
	}
}

// RecordAnalysis counts a finished analysis
func (r *Recorder) RecordAnalysis(outcome string) {
	r.analyses.WithLabelValues(outcome).Inc()
}

// RecordIndicatorFailure counts an indicator that failed
func (r *Recorder) RecordIndicatorFailure(indicator string) {
	r.indicatorFailures.WithLabelValues(indicator).Inc()
}

// RecordMacroDegraded counts a macro factor scored neutral
func (r *Recorder) RecordMacroDegraded(factor string) {
	r.macroDegraded.WithLabelValues(factor).Inc()
}

// RecordHybridScore sets the last hybrid score of symbol
func (r *Recorder) RecordHybridScore(symbol string, score float64) {
	r.hybridScore.WithLabelValues(symbol).Set(score)
}

// RecordLatency records operation latency in seconds
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordHTTP records one served request; route should be the route template
func (r *Recorder) RecordHTTP(route, method string, status int, seconds float64) {
	r.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(route, method, statusClass(status)).Observe(seconds)
}

// RecordJob counts a scheduled job run
func (r *Recorder) RecordJob(job, status string) {
	r.jobRuns.WithLabelValues(job, status).Inc()
}

// Handler serves the registry in the Prometheus text format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func statusClass(code int) string {
	switch {
	case code >= 100 && code < 200:
		return "1xx"
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
