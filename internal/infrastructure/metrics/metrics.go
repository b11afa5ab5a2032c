package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "simple_social"
	subsystem = "api"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_class", "caller"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "uploads_total",
			Help:      "Total post uploads",
		},
		[]string{"file_type", "status"},
	)

	UploadBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "upload_bytes_total",
			Help:      "Total bytes uploaded",
		},
		[]string{"file_type"},
	)

	// Media store calls, labelled by backend (imagekit, s3, local).
	MediaStoreOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "media_store_operations_total",
			Help:      "Total media store operations",
		},
		[]string{"backend", "operation", "status"},
	)

	MediaStoreDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "media_store_duration_seconds",
			Help:      "Media store operation duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"backend", "operation"},
	)

	PostDeletionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "post_deletions_total",
			Help:      "Post deletion attempts",
		},
		[]string{"status"},
	)

	AuthAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "auth_attempts_total",
			Help:      "Register and login attempts",
		},
		[]string{"operation", "status"},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, statusClass, caller string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, statusClass, caller).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordUpload records a post upload
func RecordUpload(fileType, status string, bytes int64) {
	UploadsTotal.WithLabelValues(fileType, status).Inc()
	if status == "success" {
		UploadBytesTotal.WithLabelValues(fileType).Add(float64(bytes))
	}
}

// RecordMediaStoreOperation records a call to the media store backend
func RecordMediaStoreOperation(backend, operation, status string, durationSec float64) {
	MediaStoreOperationsTotal.WithLabelValues(backend, operation, status).Inc()
	MediaStoreDuration.WithLabelValues(backend, operation).Observe(durationSec)
}

func RecordDeletion(status string) {
	PostDeletionsTotal.WithLabelValues(status).Inc()
}

func RecordAuthAttempt(operation, status string) {
	AuthAttemptsTotal.WithLabelValues(operation, status).Inc()
}
