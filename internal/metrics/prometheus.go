package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the sync worker

var (
	// API Call metrics
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fantamotogp_api_calls_total",
			Help: "Total number of MotoGP API calls",
		},
		[]string{"endpoint", "status"},
	)

	APICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fantamotogp_api_call_duration_seconds",
			Help:    "Duration of API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Sync metrics
	SyncOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fantamotogp_sync_operations_total",
			Help: "Total number of sync operations",
		},
		[]string{"type", "status"},
	)

	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fantamotogp_sync_duration_seconds",
			Help:    "Duration of sync operations in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"type"},
	)

	ResultsUpserted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fantamotogp_race_results_upserted_total",
			Help: "Total number of race result rows upserted",
		},
	)

	ScoresComputed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fantamotogp_team_scores_computed_total",
			Help: "Total number of team scores computed",
		},
	)

	NotificationsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fantamotogp_notifications_created_total",
			Help: "Total number of notification records created",
		},
	)

	RidersIngested = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fantamotogp_riders_ingested_total",
			Help: "Total number of riders in database",
		},
	)

	RacesIngested = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fantamotogp_races_ingested_total",
			Help: "Total number of races in database",
		},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fantamotogp_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fantamotogp_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)

	LastSuccessfulSync = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fantamotogp_last_successful_sync_timestamp",
			Help: "Timestamp of last successful sync operation",
		},
	)
)

// RecordAPICall records an API call metric
func RecordAPICall(endpoint, status string, duration float64) {
	APICallsTotal.WithLabelValues(endpoint, status).Inc()
	APICallDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordSync records a sync operation
func RecordSync(syncType, status string, duration float64) {
	SyncOperationsTotal.WithLabelValues(syncType, status).Inc()
	SyncDuration.WithLabelValues(syncType).Observe(duration)

	if status == "success" {
		LastSuccessfulSync.SetToCurrentTime()
	}
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// UpdateIngestionStats updates ingestion statistics
func UpdateIngestionStats(riders, races int64) {
	RidersIngested.Set(float64(riders))
	RacesIngested.Set(float64(races))
}
