package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and the
// bulk scheduler.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	scheduleRuns      prometheus.Counter
	scheduleDuration  prometheus.Histogram
	scheduledTotal    prometheus.Counter
	scheduleFailures  prometheus.Counter
	batchesPerRun     prometheus.Histogram
	emailsSent        prometheus.Counter
	emailsFailed      prometheus.Counter
}

// NewMetricsService registers the core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	scheduleRuns := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_runs_total",
		Help: "Total bulk scheduling runs",
	})

	scheduleDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schedule_run_duration_seconds",
		Help:    "Duration of bulk scheduling runs",
		Buckets: prometheus.DefBuckets,
	})

	scheduledTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_candidates_total",
		Help: "Total candidates scheduled across all runs",
	})

	scheduleFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_failures_total",
		Help: "Total per-candidate scheduling failures",
	})

	batchesPerRun := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schedule_batches_per_run",
		Help:    "Number of batches produced per scheduling run",
		Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
	})

	emailsSent := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "emails_sent_total",
		Help: "Total emails delivered",
	})

	emailsFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "emails_failed_total",
		Help: "Total email delivery failures",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, scheduleRuns, scheduleDuration,
		scheduledTotal, scheduleFailures, batchesPerRun, emailsSent, emailsFailed, goroutines)

	return &MetricsService{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		scheduleRuns:     scheduleRuns,
		scheduleDuration: scheduleDuration,
		scheduledTotal:   scheduledTotal,
		scheduleFailures: scheduleFailures,
		batchesPerRun:    batchesPerRun,
		emailsSent:       emailsSent,
		emailsFailed:     emailsFailed,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveScheduleRun records the outcome of one bulk scheduling run.
func (m *MetricsService) ObserveScheduleRun(scheduled, failed, batches int, duration time.Duration) {
	if m == nil {
		return
	}
	m.scheduleRuns.Inc()
	m.scheduleDuration.Observe(duration.Seconds())
	m.scheduledTotal.Add(float64(scheduled))
	m.scheduleFailures.Add(float64(failed))
	m.batchesPerRun.Observe(float64(batches))
}

// ObserveEmailDelivery records one email delivery attempt.
func (m *MetricsService) ObserveEmailDelivery(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.emailsSent.Inc()
	} else {
		m.emailsFailed.Inc()
	}
}
