package otel

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/dativo-io/masker/internal/masker"
)

func resetCounters() {
	countersOnce = sync.Once{}
	countersAvailable = false
	wordsCounter = nil
	maskedCounter = nil
}

func sumOf(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", name)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestRecordCounts_InstrumentsCreatedOnce(t *testing.T) {
	prev := otel.GetMeterProvider()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(mp)
	resetCounters()
	t.Cleanup(func() {
		otel.SetMeterProvider(prev)
		resetCounters()
		_ = mp.Shutdown(context.Background())
	})

	ctx := context.Background()
	RecordCounts(ctx, "companyA", masker.Counts{Words: 4, MaskedName: 1, MaskedGeo: 1})
	require.True(t, countersAvailable)
	words, masked := wordsCounter, maskedCounter

	RecordCounts(ctx, "companyA", masker.Counts{Words: 3, MaskedName: 2})
	assert.Equal(t, words, wordsCounter)
	assert.Equal(t, masked, maskedCounter)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	assert.Equal(t, int64(7), sumOf(t, rm, "masker.words"))
	assert.Equal(t, int64(4), sumOf(t, rm, "masker.masked"))
}
