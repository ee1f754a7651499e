// Package metrics exposes Prometheus instruments for the scorebook services.
//
// A nil *Recorder is valid and records nothing, so tests and the offline CLI can pass nil.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "unoscore"

// Recorder owns a private registry and the instruments registered on it.
type Recorder struct {
	registry *prometheus.Registry

	mutations        *prometheus.CounterVec
	mutationDuration *prometheus.HistogramVec
	importedRecords  *prometheus.CounterVec
	skippedRows      *prometheus.CounterVec
	syncFailures     *prometheus.CounterVec
	commands         *prometheus.CounterVec
	rateLimited      prometheus.Counter
}

// NewRecorder creates a Recorder with Go runtime and process collectors attached.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Scorebook mutations by operation and result.",
		}, []string{"op", "result"}),
		mutationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "mutation_duration_seconds",
			Help:      "Time spent loading, applying and saving a mutation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		importedRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imported_records_total",
			Help:      "Game records added by bulk import.",
		}, []string{"format"}),
		skippedRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_skipped_rows_total",
			Help:      "Tabular import rows skipped as malformed or summary rows.",
		}, []string{"format"}),
		syncFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_failures_total",
			Help:      "Primary store failures served from the local snapshot.",
		}, []string{"op"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bot_commands_total",
			Help:      "Bot commands handled.",
		}, []string{"command"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bot_rate_limited_total",
			Help:      "Bot updates dropped by the per-user rate limit.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.mutations,
		r.mutationDuration,
		r.importedRecords,
		r.skippedRows,
		r.syncFailures,
		r.commands,
		r.rateLimited,
	)
	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveMutation records one mutation attempt.
func (r *Recorder) ObserveMutation(op string, err error, elapsed time.Duration) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.mutations.WithLabelValues(op, result).Inc()
	r.mutationDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// RecordImport counts added records and skipped rows of one import.
func (r *Recorder) RecordImport(format string, added, skipped int) {
	if r == nil {
		return
	}
	r.importedRecords.WithLabelValues(format).Add(float64(added))
	r.skippedRows.WithLabelValues(format).Add(float64(skipped))
}

// RecordSyncFailure counts a primary store failure for op ("load", "save", "resync" or "push").
func (r *Recorder) RecordSyncFailure(op string) {
	if r == nil {
		return
	}
	r.syncFailures.WithLabelValues(op).Inc()
}

// RecordCommand counts a handled bot command.
func (r *Recorder) RecordCommand(command string) {
	if r == nil {
		return
	}
	r.commands.WithLabelValues(command).Inc()
}

// RecordRateLimited counts a dropped update.
func (r *Recorder) RecordRateLimited() {
	if r == nil {
		return
	}
	r.rateLimited.Inc()
}
