package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var documentsUpserted = promauto.NewCounter(prometheus.CounterOpts{
	Name: "sync_documents_upserted_total",
	Help: "Chunk documents upserted into the search index",
})

var documentsDeleted = promauto.NewCounter(prometheus.CounterOpts{
	Name: "sync_parent_deletes_total",
	Help: "Delete-by-parent operations issued to the search index",
})

var recordsSkipped = promauto.NewCounter(prometheus.CounterOpts{
	Name: "sync_records_skipped_total",
	Help: "Records skipped after exhausting retries in a sync batch",
})

var activeSyncWorkers = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "sync_active_workers",
	Help: "Record workers currently processing a sync batch",
})

var syncBatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "sync_batch_duration_seconds",
	Help:    "Wall time of one sync batch.",
	Buckets: []float64{.5, 1, 5, 15, 30, 60, 120, 300},
}, []string{"status"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureSyncBatchMetrics(status string, timeElapsed time.Duration) {
	syncBatchDuration.WithLabelValues(status).Observe(timeElapsed.Seconds())
}

func AddDocumentsUpserted(n int) {
	documentsUpserted.Add(float64(n))
}

func IncrementParentDeletes() {
	documentsDeleted.Inc()
}

func IncrementRecordsSkipped() {
	recordsSkipped.Inc()
}

func IncrementActiveSyncWorkers() {
	activeSyncWorkers.Inc()
}

func DecrementActiveSyncWorkers() {
	activeSyncWorkers.Dec()
}
