// SPDX-License-Identifier: MIT

// Package metrics defines the Prometheus instrumentation of the bridge
// service. All collectors are registered with the default registry via
// promauto and exposed on the metrics listener.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Job lifecycle
	jobTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bridge_job_transitions_total",
		Help: "Job state transitions by target state",
	}, []string{"state"}) // state=queued|running|completed|failed|cancelled

	jobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bridge_job_duration_seconds",
		Help:    "Wall time of analysis jobs from lease to terminal state",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
	}, []string{"outcome"}) // outcome=completed|failed

	leaseWait = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bridge_job_lease_wait_seconds",
		Help:    "Time a worker lease request waited for a queued job",
		Buckets: prometheus.DefBuckets,
	})

	jobExpiries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bridge_job_expiries_total",
		Help: "Expired worker leases by resulting state",
	}, []string{"state"}) // state=queued (requeued) | failed

	// Model building
	modelBuilds = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bridge_model_builds_total",
		Help: "SCIA model builds by outcome",
	}, []string{"outcome"}) // outcome=success|invalid|error

	modelSize = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "bridge_model_objects",
		Help: "Object counts of the most recently built model",
	}, []string{"kind"}) // kind=nodes|beams|planes

	// Artifacts
	artifactBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bridge_artifact_bytes_written_total",
		Help: "Bytes written to the artifact store by extension",
	}, []string{"ext"})

	// Report rendering
	reportRender = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bridge_report_render_seconds",
		Help:    "Render time of report artifacts by format",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15},
	}, []string{"format"}) // format=pdf|markdown|json|xlsx|png

	// View cache
	cacheOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bridge_view_cache_requests_total",
		Help: "View cache lookups by outcome",
	}, []string{"outcome"}) // outcome=hit|miss

	// Worker client
	workerPolls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bridge_worker_polls_total",
		Help: "Worker lease polls by outcome",
	}, []string{"outcome"}) // outcome=job|empty|error

	// HTTP server
	httpInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bridge_http_requests_in_flight",
		Help: "HTTP requests currently being served",
	})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bridge_http_request_duration_seconds",
		Help:    "HTTP request latency by method and status class",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "status"})
)

// RecordJobTransition counts a job entering the given state.
func RecordJobTransition(state string) {
	jobTransitions.WithLabelValues(state).Inc()
}

// ObserveJobDuration records the wall time of a finished job.
func ObserveJobDuration(outcome string, seconds float64) {
	jobDuration.WithLabelValues(outcome).Observe(seconds)
}

// ObserveLeaseWait records how long a lease request waited.
func ObserveLeaseWait(seconds float64) {
	leaseWait.Observe(seconds)
}

// RecordJobExpiry counts an expired lease by its resulting state.
func RecordJobExpiry(state string) {
	jobExpiries.WithLabelValues(state).Inc()
}

// RecordModelBuild counts a model build and, on success, the object sizes.
func RecordModelBuild(outcome string, nodes, beams, planes int) {
	modelBuilds.WithLabelValues(outcome).Inc()
	if outcome == "success" {
		modelSize.WithLabelValues("nodes").Set(float64(nodes))
		modelSize.WithLabelValues("beams").Set(float64(beams))
		modelSize.WithLabelValues("planes").Set(float64(planes))
	}
}

// RecordArtifactWrite counts bytes written per file extension.
func RecordArtifactWrite(ext string, bytes int64) {
	artifactBytes.WithLabelValues(ext).Add(float64(bytes))
}

// ObserveReportRender records the render time of one report format.
func ObserveReportRender(format string, seconds float64) {
	reportRender.WithLabelValues(format).Observe(seconds)
}

// RecordCacheHit and RecordCacheMiss count view cache lookups.
func RecordCacheHit()  { cacheOps.WithLabelValues("hit").Inc() }
func RecordCacheMiss() { cacheOps.WithLabelValues("miss").Inc() }

// RecordWorkerPoll counts a worker lease poll outcome.
func RecordWorkerPoll(outcome string) {
	workerPolls.WithLabelValues(outcome).Inc()
}

// HTTPMiddleware instruments request count, latency and in-flight gauge.
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		class := strconv.Itoa(sw.status/100) + "xx"
		httpDuration.WithLabelValues(r.Method, class).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
