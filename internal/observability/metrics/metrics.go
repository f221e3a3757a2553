package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "greenhouse_"

	resultSuccess = "success"
	resultError   = "error"
)

// Ingest result labels.
const (
	IngestResultSuccess = resultSuccess
	IngestResultError   = resultError
)

var (
	registerOnce sync.Once

	ingestRequests *prometheus.CounterVec
	ingestErrors   *prometheus.CounterVec
	ingestLatency  *prometheus.HistogramVec

	alertEvents   *prometheus.CounterVec
	notifyResults *prometheus.CounterVec
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		ingestRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ingest_requests_total",
				Help: "Total ingest requests by result",
			},
			[]string{"result"},
		)
		ingestErrors = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ingest_errors_total",
				Help: "Total ingest errors by reason",
			},
			[]string{"reason"},
		)
		ingestLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "ingest_latency_seconds",
				Help:    "Ingest latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		alertEvents = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "alert_events_total",
				Help: "Total alert lifecycle events by type",
			},
			[]string{"type"},
		)
		notifyResults = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "notify_results_total",
				Help: "Total notification outcomes by result",
			},
			[]string{"result"},
		)

		prometheus.MustRegister(
			ingestRequests,
			ingestErrors,
			ingestLatency,
			alertEvents,
			notifyResults,
		)
		registerDBMetrics(db, logger)
	})
}

// ObserveIngest records one ingest request with latency.
func ObserveIngest(result string, elapsed time.Duration) {
	if ingestRequests == nil || ingestLatency == nil {
		return
	}
	ingestRequests.WithLabelValues(result).Inc()
	ingestLatency.WithLabelValues(result).Observe(elapsed.Seconds())
}

// IncIngestError counts one ingest error by reason.
func IncIngestError(reason string) {
	if ingestErrors == nil {
		return
	}
	ingestErrors.WithLabelValues(reason).Inc()
}

// IncAlertEvent counts one alert lifecycle event.
func IncAlertEvent(eventType string) {
	if alertEvents == nil {
		return
	}
	alertEvents.WithLabelValues(eventType).Inc()
}

// IncNotifyResult counts one notification outcome.
func IncNotifyResult(result string) {
	if notifyResults == nil {
		return
	}
	notifyResults.WithLabelValues(result).Inc()
}
