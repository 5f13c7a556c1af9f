package metrics

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kirillkom/emotion-tutor/internal/core/domain"
	"github.com/kirillkom/emotion-tutor/internal/core/ports"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry
	service  string

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	uploadsTotal     *prometheus.CounterVec
	uploadPages      *prometheus.HistogramVec
	corpusBytes      prometheus.GaugeFunc
	emotionsTotal    *prometheus.CounterVec
	llmTokensTotal   *prometheus.CounterVec
	llmDuration      *prometheus.HistogramVec
	auditWritesTotal *prometheus.CounterVec
	breakerOpen      *prometheus.GaugeVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"service": service}

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "tutor",
			Subsystem:   "http",
			Name:        "requests_total",
			Help:        "Total HTTP requests processed.",
			ConstLabels: constLabels,
		},
		[]string{"method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   "tutor",
			Subsystem:   "http",
			Name:        "request_duration_seconds",
			Help:        "HTTP request duration in seconds.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		},
		[]string{"method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   "tutor",
			Subsystem:   "http",
			Name:        "in_flight_requests",
			Help:        "Number of in-flight HTTP requests.",
			ConstLabels: constLabels,
		},
	)
	uploadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "tutor",
			Subsystem:   "ingest",
			Name:        "uploads_total",
			Help:        "PDF uploads by outcome.",
			ConstLabels: constLabels,
		},
		[]string{"outcome"},
	)
	uploadPages := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   "tutor",
			Subsystem:   "ingest",
			Name:        "pages",
			Help:        "Pages per successful upload, split into extracted and skipped.",
			Buckets:     []float64{0, 1, 2, 5, 10, 20, 50, 100, 250},
			ConstLabels: constLabels,
		},
		[]string{"kind"},
	)
	emotionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "tutor",
			Subsystem:   "emotion",
			Name:        "detections_total",
			Help:        "Reported emotions by category.",
			ConstLabels: constLabels,
		},
		[]string{"emotion"},
	)
	llmTokensTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "tutor",
			Subsystem:   "llm",
			Name:        "tokens_total",
			Help:        "Token usage reported by the language model, by direction.",
			ConstLabels: constLabels,
		},
		[]string{"direction", "model"},
	)
	llmDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   "tutor",
			Subsystem:   "llm",
			Name:        "request_duration_seconds",
			Help:        "Chat completion latency in seconds by status.",
			Buckets:     []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
			ConstLabels: constLabels,
		},
		[]string{"status"},
	)
	auditWritesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "tutor",
			Subsystem:   "audit",
			Name:        "writes_total",
			Help:        "Background audit writes by sink, kind and status.",
			ConstLabels: constLabels,
		},
		[]string{"sink", "kind", "status"},
	)
	breakerOpen := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace:   "tutor",
			Subsystem:   "resilience",
			Name:        "breaker_open",
			Help:        "1 while the circuit breaker for an operation is not closed.",
			ConstLabels: constLabels,
		},
		[]string{"operation"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		uploadsTotal,
		uploadPages,
		emotionsTotal,
		llmTokensTotal,
		llmDuration,
		auditWritesTotal,
		breakerOpen,
	)

	return &HTTPServerMetrics{
		registry:         registry,
		service:          service,
		requestTotal:     requestTotal,
		requestDuration:  requestDuration,
		requestInFlight:  requestInFlight,
		uploadsTotal:     uploadsTotal,
		uploadPages:      uploadPages,
		emotionsTotal:    emotionsTotal,
		llmTokensTotal:   llmTokensTotal,
		llmDuration:      llmDuration,
		auditWritesTotal: auditWritesTotal,
		breakerOpen:      breakerOpen,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(r.Method, path, strconv.Itoa(recorder.statusCode)).Inc()
		m.requestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch path {
	case "/api/upload-pdf", "/api/detect-emotion", "/api/ask", "/api/openapi.json", "/healthz", "/metrics":
		return path
	default:
		return "other"
	}
}

// RecordUpload counts an upload; corpus is nil for failed uploads.
func (m *HTTPServerMetrics) RecordUpload(corpus *domain.Corpus, err error) {
	if err != nil || corpus == nil {
		m.uploadsTotal.WithLabelValues("error").Inc()
		return
	}
	outcome := "text"
	if corpus.Empty() {
		outcome = "empty"
	}
	m.uploadsTotal.WithLabelValues(outcome).Inc()
	m.uploadPages.WithLabelValues("extracted").Observe(float64(corpus.ExtractedPages))
	m.uploadPages.WithLabelValues("skipped").Observe(float64(corpus.TotalPages - corpus.ExtractedPages))
}

// TrackCorpus exports the size of the store's current corpus, read at scrape
// time under the store's own lock. Call it once per store.
func (m *HTTPServerMetrics) TrackCorpus(store ports.CorpusStore) {
	m.corpusBytes = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace:   "tutor",
			Subsystem:   "ingest",
			Name:        "corpus_bytes",
			Help:        "Size of the current corpus text in bytes.",
			ConstLabels: prometheus.Labels{"service": m.service},
		},
		func() float64 {
			corpus, ok, err := store.Current(context.Background())
			if err != nil || !ok {
				return 0
			}
			return float64(len(corpus.Text))
		},
	)
	m.registry.MustRegister(m.corpusBytes)
}

func (m *HTTPServerMetrics) RecordEmotion(emotion domain.Emotion) {
	m.emotionsTotal.WithLabelValues(string(emotion)).Inc()
}

func (m *HTTPServerMetrics) RecordTokenUsage(model string, promptTokens, completionTokens int) {
	if model == "" {
		model = "unknown"
	}
	if promptTokens > 0 {
		m.llmTokensTotal.WithLabelValues("in", model).Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		m.llmTokensTotal.WithLabelValues("out", model).Add(float64(completionTokens))
	}
}

func (m *HTTPServerMetrics) ObserveLLMCall(duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.llmDuration.WithLabelValues(status).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordAuditWrite(sink string, kind domain.AuditKind, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.auditWritesTotal.WithLabelValues(sink, string(kind), status).Inc()
}

func (m *HTTPServerMetrics) SetBreakerOpen(operation string, open bool) {
	value := 0.0
	if open {
		value = 1
	}
	m.breakerOpen.WithLabelValues(operation).Set(value)
}

// InstrumentCompleter wraps a chat completer with latency and token metrics.
func (m *HTTPServerMetrics) InstrumentCompleter(next ports.ChatCompleter) ports.ChatCompleter {
	return &instrumentedCompleter{next: next, metrics: m}
}

type instrumentedCompleter struct {
	next    ports.ChatCompleter
	metrics *HTTPServerMetrics
}

func (c *instrumentedCompleter) Complete(ctx context.Context, prompt string) (domain.Completion, error) {
	start := time.Now()
	completion, err := c.next.Complete(ctx, prompt)
	c.metrics.ObserveLLMCall(time.Since(start), err)
	if err == nil {
		c.metrics.RecordTokenUsage(completion.Model, completion.PromptTokens, completion.CompletionTokens)
	}
	return completion, err
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}
