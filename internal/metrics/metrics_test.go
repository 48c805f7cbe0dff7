package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/dativo-io/masker/internal/masker"
)

func TestRecordCounts(t *testing.T) {
	RecordCounts("metrics-test", masker.Counts{Words: 10, MaskedName: 2, MaskedURL: 1})

	assert.Equal(t, float64(10), testutil.ToFloat64(WordsTotal.WithLabelValues("metrics-test")))
	assert.Equal(t, float64(2), testutil.ToFloat64(MaskedTotal.WithLabelValues("metrics-test", "name")))
	assert.Equal(t, float64(1), testutil.ToFloat64(MaskedTotal.WithLabelValues("metrics-test", "url")))
}

func TestRecordRequest(t *testing.T) {
	before := testutil.ToFloat64(RequestsTotal.WithLabelValues("metrics_test_op", "error"))
	RecordRequest("metrics_test_op", true)
	assert.Equal(t, before+1, testutil.ToFloat64(RequestsTotal.WithLabelValues("metrics_test_op", "error")))
}

func TestRecordSkipsZero(t *testing.T) {
	before := testutil.CollectAndCount(DiffSkipped)
	RecordDiffSkipped("metrics-zero", 0)
	assert.Equal(t, before, testutil.CollectAndCount(DiffSkipped), "no series is created for zero")

	RecordTemplateErrors("metrics-zero", 3)
	assert.Equal(t, float64(3), testutil.ToFloat64(TemplateErrors.WithLabelValues("metrics-zero")))
}
