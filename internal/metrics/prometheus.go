package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Report pipeline metrics
	ReportRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plutus_report_requests_total",
			Help: "Total number of report computations",
		},
		[]string{"mode", "status"}, // status: success|fetch_failed|stale
	)

	ReportDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "plutus_report_duration_seconds",
			Help:    "Report fetch+aggregate duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"mode"},
	)

	ReportCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plutus_report_cache_lookups_total",
			Help: "Report cache lookups by outcome",
		},
		[]string{"outcome"}, // outcome: hit|miss|error
	)

	ReportTradeCount = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "plutus_report_trade_count",
			Help:    "Number of trades aggregated per report",
			Buckets: []float64{0, 10, 50, 100, 500, 1000, 5000},
		},
		[]string{"mode"},
	)

	// Export metrics
	ExportRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plutus_export_requests_total",
			Help: "Total number of export requests",
		},
		[]string{"format", "status"}, // status: success|error|rate_limited
	)

	ExportDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "plutus_export_duration_seconds",
			Help:    "Export render duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"format"},
	)

	ExportSizeBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "plutus_export_size_bytes",
			Help:    "Size of rendered export artifacts",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		},
		[]string{"format"},
	)

	// Ingestion metrics
	TradesIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plutus_trades_ingested_total",
			Help: "Trade records consumed from Kafka",
		},
		[]string{"status"}, // status: stored|duplicate|malformed|error
	)

	KafkaMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plutus_kafka_messages_total",
			Help: "Total Kafka messages consumed",
		},
		[]string{"topic", "status"},
	)

	// Worker metrics
	WorkerExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plutus_worker_executions_total",
			Help: "Total number of worker executions",
		},
		[]string{"worker", "status"}, // status: success|error
	)

	WorkerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "plutus_worker_duration_seconds",
			Help:    "Worker execution duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"worker"},
	)

	WorkerLastRun = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "plutus_worker_last_run_timestamp",
			Help: "Unix timestamp of last worker execution",
		},
		[]string{"worker"},
	)

	// Database metrics
	DBQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plutus_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"database", "operation", "status"}, // database: postgres|clickhouse|redis
	)

	DBQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "plutus_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"database", "operation"},
	)
)

// Init registers all metrics with Prometheus
func Init() {
	prometheus.MustRegister(ReportRequests)
	prometheus.MustRegister(ReportDuration)
	prometheus.MustRegister(ReportCacheLookups)
	prometheus.MustRegister(ReportTradeCount)

	prometheus.MustRegister(ExportRequests)
	prometheus.MustRegister(ExportDuration)
	prometheus.MustRegister(ExportSizeBytes)

	prometheus.MustRegister(TradesIngested)
	prometheus.MustRegister(KafkaMessages)

	prometheus.MustRegister(WorkerExecutions)
	prometheus.MustRegister(WorkerDuration)
	prometheus.MustRegister(WorkerLastRun)

	prometheus.MustRegister(DBQueries)
	prometheus.MustRegister(DBQueryDuration)
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordReport records one report computation
func RecordReport(mode string, tradeCount int, duration time.Duration, status string) {
	ReportRequests.WithLabelValues(mode, status).Inc()
	ReportDuration.WithLabelValues(mode).Observe(duration.Seconds())
	ReportTradeCount.WithLabelValues(mode).Observe(float64(tradeCount))
}

// RecordCacheLookup records a report cache lookup outcome
func RecordCacheLookup(outcome string) {
	ReportCacheLookups.WithLabelValues(outcome).Inc()
}

// RecordExport records an export request
func RecordExport(format string, size int, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	ExportRequests.WithLabelValues(format, status).Inc()
	ExportDuration.WithLabelValues(format).Observe(duration.Seconds())

	if size > 0 {
		ExportSizeBytes.WithLabelValues(format).Observe(float64(size))
	}
}

// RecordIngestion records the outcome of one consumed trade message
func RecordIngestion(topic, status string) {
	TradesIngested.WithLabelValues(status).Inc()
	KafkaMessages.WithLabelValues(topic, status).Inc()
}

// RecordWorkerExecution records a worker execution
func RecordWorkerExecution(worker string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	WorkerExecutions.WithLabelValues(worker, status).Inc()
	WorkerDuration.WithLabelValues(worker).Observe(duration.Seconds())
	WorkerLastRun.WithLabelValues(worker).SetToCurrentTime()
}

// RecordDBQuery records a database query
func RecordDBQuery(database, operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	DBQueries.WithLabelValues(database, operation, status).Inc()
	DBQueryDuration.WithLabelValues(database, operation).Observe(duration.Seconds())
}
