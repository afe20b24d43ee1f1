package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WorkerMetrics covers the progress-event consumer.
type WorkerMetrics struct {
	registry *prometheus.Registry

	eventsTotal   *prometheus.CounterVec
	applyDuration *prometheus.HistogramVec
	eventLag      prometheus.Histogram
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	eventsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ragdocs",
			Subsystem: "worker",
			Name:      "progress_events_total",
			Help:      "Total consumed progress events by outcome.",
		},
		[]string{"service", "outcome"},
	)
	applyDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ragdocs",
			Subsystem: "worker",
			Name:      "progress_apply_duration_seconds",
			Help:      "Progress event application duration in seconds by outcome.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "outcome"},
	)
	eventLag := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "ragdocs",
			Subsystem: "worker",
			Name:      "progress_event_lag_seconds",
			Help:      "Delay between event emission and application.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(eventsTotal, applyDuration, eventLag)

	return &WorkerMetrics{
		registry:      registry,
		eventsTotal:   eventsTotal,
		applyDuration: applyDuration,
		eventLag:      eventLag,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) ObserveEvent(service string, duration time.Duration, err error) {
	outcome := "applied"
	if err != nil {
		outcome = "error"
	}
	m.eventsTotal.WithLabelValues(service, outcome).Inc()
	m.applyDuration.WithLabelValues(service, outcome).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveEventLag(lag time.Duration) {
	if lag < 0 {
		return
	}
	m.eventLag.Observe(lag.Seconds())
}
