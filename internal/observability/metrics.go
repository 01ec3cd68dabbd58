package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "caddie"

type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	llmRequests *prometheus.CounterVec
	llmLatency  *prometheus.HistogramVec
	llmTokens   *prometheus.CounterVec

	vectorOps     *prometheus.CounterVec
	vectorLatency *prometheus.HistogramVec

	retrievalCandidates prometheus.Histogram
	filterOutcomes      *prometheus.CounterVec
	agentSteps          prometheus.Histogram
	handicapUpdates     *prometheus.CounterVec
	feedbackEvents      *prometheus.CounterVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Current returns the process metrics, or nil when Init has not run.
func Current() *Metrics {
	return instance
}

// Init builds the process-wide metrics once.
func Init() *Metrics {
	initOnce.Do(func() {
		instance = NewMetrics(prometheus.NewRegistry())
	})
	return instance
}

// NewMetrics registers every collector on reg.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "http", Name: "inflight_requests",
			Help: "HTTP requests currently being served.",
		}),
		llmRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "llm", Name: "requests_total",
			Help: "LLM API calls by model, path and status.",
		}, []string{"model", "path", "status"}),
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "llm", Name: "request_duration_seconds",
			Help:    "LLM API latency including retries.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
		}, []string{"model", "path"}),
		llmTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "llm", Name: "tokens_total",
			Help: "LLM tokens by model and direction.",
		}, []string{"model", "direction"}),
		vectorOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "vector", Name: "operations_total",
			Help: "Vector store operations by provider, operation and status.",
		}, []string{"provider", "operation", "status"}),
		vectorLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "vector", Name: "operation_duration_seconds",
			Help:    "Vector store operation latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider", "operation"}),
		retrievalCandidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "memory", Name: "retrieval_candidates",
			Help:    "Similar shots returned by conditions search.",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
		}),
		filterOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "memory", Name: "filter_outcomes_total",
			Help: "Relevance filter results by outcome.",
		}, []string{"outcome"}),
		agentSteps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "agent", Name: "tool_steps",
			Help:    "Tool invocations per recommendation.",
			Buckets: []float64{0, 1, 2, 3, 4, 6, 8},
		}),
		handicapUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "handicap", Name: "updates_total",
			Help: "Handicap recomputations by outcome.",
		}, []string{"outcome"}),
		feedbackEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "memory", Name: "feedback_total",
			Help: "Shot feedback by polarity.",
		}, []string{"polarity"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.llmRequests, m.llmLatency, m.llmTokens,
		m.vectorOps, m.vectorLatency,
		m.retrievalCandidates, m.filterOutcomes, m.agentSteps,
		m.handicapUpdates, m.feedbackEvents,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ApiInflightInc() {
	if m != nil {
		m.apiInflight.Inc()
	}
}

func (m *Metrics) ApiInflightDec() {
	if m != nil {
		m.apiInflight.Dec()
	}
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route).Observe(dur.Seconds())
}

func (m *Metrics) ObserveLLMRequest(model, path, status string, dur time.Duration, inputTokens, outputTokens int) {
	if m == nil {
		return
	}
	if model == "" {
		model = "unknown"
	}
	m.llmRequests.WithLabelValues(model, path, status).Inc()
	m.llmLatency.WithLabelValues(model, path).Observe(dur.Seconds())
	if inputTokens > 0 {
		m.llmTokens.WithLabelValues(model, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		m.llmTokens.WithLabelValues(model, "output").Add(float64(outputTokens))
	}
}

func (m *Metrics) ObserveVectorOp(provider, operation, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.vectorOps.WithLabelValues(provider, operation, status).Inc()
	m.vectorLatency.WithLabelValues(provider, operation).Observe(dur.Seconds())
}

func (m *Metrics) ObserveRetrieval(candidates int) {
	if m != nil {
		m.retrievalCandidates.Observe(float64(candidates))
	}
}

func (m *Metrics) IncFilterOutcome(outcome string) {
	if m != nil {
		m.filterOutcomes.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) ObserveAgentSteps(n int) {
	if m != nil {
		m.agentSteps.Observe(float64(n))
	}
}

func (m *Metrics) IncHandicapUpdate(outcome string) {
	if m != nil {
		m.handicapUpdates.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncFeedback(liked bool) {
	if m == nil {
		return
	}
	polarity := "disliked"
	if liked {
		polarity = "liked"
	}
	m.feedbackEvents.WithLabelValues(polarity).Inc()
}
