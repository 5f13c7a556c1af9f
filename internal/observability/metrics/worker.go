package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kirillkom/emotion-tutor/internal/core/domain"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	recordsTotal    *prometheus.CounterVec
	recordDuration  *prometheus.HistogramVec
	recordsInFlight prometheus.Gauge
	deliveryLag     prometheus.Histogram
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"service": service}

	recordsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "tutor",
			Subsystem:   "audit_worker",
			Name:        "records_total",
			Help:        "Audit records persisted by kind and status.",
			ConstLabels: constLabels,
		},
		[]string{"kind", "status"},
	)
	recordDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   "tutor",
			Subsystem:   "audit_worker",
			Name:        "record_duration_seconds",
			Help:        "Time to persist one audit record.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		},
		[]string{"kind", "status"},
	)
	recordsInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   "tutor",
			Subsystem:   "audit_worker",
			Name:        "records_in_flight",
			Help:        "Audit records currently being persisted.",
			ConstLabels: constLabels,
		},
	)
	deliveryLag := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   "tutor",
			Subsystem:   "audit_worker",
			Name:        "delivery_lag_seconds",
			Help:        "Delay between record creation in the API and its persistence.",
			Buckets:     []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
			ConstLabels: constLabels,
		},
	)

	registry.MustRegister(recordsTotal, recordDuration, recordsInFlight, deliveryLag)

	return &WorkerMetrics{
		registry:        registry,
		recordsTotal:    recordsTotal,
		recordDuration:  recordDuration,
		recordsInFlight: recordsInFlight,
		deliveryLag:     deliveryLag,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartRecord(record domain.AuditRecord) {
	m.recordsInFlight.Inc()
	if !record.RecordedAt.IsZero() {
		if lag := time.Since(record.RecordedAt); lag >= 0 {
			m.deliveryLag.Observe(lag.Seconds())
		}
	}
}

func (m *WorkerMetrics) FinishRecord(kind domain.AuditKind, duration time.Duration, err error) {
	m.recordsInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}
	m.recordsTotal.WithLabelValues(string(kind), status).Inc()
	m.recordDuration.WithLabelValues(string(kind), status).Observe(duration.Seconds())
}
