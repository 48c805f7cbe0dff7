// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dativo-io/masker/internal/masker"
)

var (
	// masker_requests_total{operation,outcome}
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "masker_requests_total",
		Help: "Masking service calls by operation and outcome",
	}, []string{"operation", "outcome"})

	// masker_words_total{tenant}
	WordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "masker_words_total",
		Help: "Words inspected by the masker",
	}, []string{"tenant"})

	// masker_masked_total{tenant,category=name|geo|bad|misc|num|url}
	MaskedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "masker_masked_total",
		Help: "Words replaced by a placeholder, by category",
	}, []string{"tenant", "category"})

	// masker_template_errors_total{tenant}
	TemplateErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "masker_template_errors_total",
		Help: "Templates rejected because they did not compile or had no label",
	}, []string{"tenant"})

	// masker_diff_skipped_total{tenant}
	DiffSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "masker_diff_skipped_total",
		Help: "Placeholders whose original text could not be reconciled",
	}, []string{"tenant"})

	// masker_request_duration_seconds{operation}
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "masker_request_duration_seconds",
		Help:    "Masking service call latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// masker_batch_files_total{outcome=written|dropped|skipped}
	BatchFiles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "masker_batch_files_total",
		Help: "Dialog files handled by batch mode",
	}, []string{"outcome"})
)

// RecordRequest counts one service call.
func RecordRequest(operation string, failed bool) {
	outcome := "ok"
	if failed {
		outcome = "error"
	}
	RequestsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordCounts adds the word and per-category masked counts of one call.
func RecordCounts(tenant string, c masker.Counts) {
	WordsTotal.WithLabelValues(tenant).Add(float64(c.Words))
	for cat, n := range c.ByCategory() {
		if n > 0 {
			MaskedTotal.WithLabelValues(tenant, string(cat)).Add(float64(n))
		}
	}
}

// RecordTemplateErrors counts rejected templates.
func RecordTemplateErrors(tenant string, n int) {
	if n > 0 {
		TemplateErrors.WithLabelValues(tenant).Add(float64(n))
	}
}

// RecordDiffSkipped counts unreconciled placeholders.
func RecordDiffSkipped(tenant string, n int) {
	if n > 0 {
		DiffSkipped.WithLabelValues(tenant).Add(float64(n))
	}
}

// RecordBatchFile counts one batch file by outcome.
func RecordBatchFile(outcome string) {
	BatchFiles.WithLabelValues(outcome).Inc()
}
