package otel

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/dativo-io/masker/internal/masker"
)

// Attribute keys shared by masking spans and metrics.
const (
	TenantID      = attribute.Key("masker.tenant_id")
	Lines         = attribute.Key("masker.lines")
	Words         = attribute.Key("masker.words")
	MaskedTotal   = attribute.Key("masker.masked")
	Category      = attribute.Key("masker.category")
	TemplateCount = attribute.Key("masker.templates")
	ErrorCount    = attribute.Key("masker.errors")
)

const meterName = "github.com/dativo-io/masker/internal/otel"

// CountsAttributes describes the outcome of a masking call.
func CountsAttributes(c masker.Counts) []attribute.KeyValue {
	return []attribute.KeyValue{
		Words.Int64(c.Words),
		MaskedTotal.Int64(c.Masked()),
	}
}

var (
	wordsCounter      metric.Int64Counter
	maskedCounter     metric.Int64Counter
	countersOnce      sync.Once
	countersAvailable bool
)

func initCounters() {
	meter := otel.Meter(meterName)
	var err error
	wordsCounter, err = meter.Int64Counter("masker.words", metric.WithDescription("Words inspected by the masker"))
	if err != nil {
		return
	}
	maskedCounter, err = meter.Int64Counter("masker.masked", metric.WithDescription("Words replaced by a placeholder"))
	if err != nil {
		return
	}
	countersAvailable = true
}

// RecordCounts adds c to the masker.words and masker.masked counters of the
// global meter provider. It is a no-op until Setup enables metrics.
func RecordCounts(ctx context.Context, tenantID string, c masker.Counts) {
	countersOnce.Do(initCounters)
	if !countersAvailable {
		return
	}
	wordsCounter.Add(ctx, c.Words, metric.WithAttributes(TenantID.String(tenantID)))
	for cat, n := range c.ByCategory() {
		if n == 0 {
			continue
		}
		maskedCounter.Add(ctx, n, metric.WithAttributes(TenantID.String(tenantID), Category.String(string(cat))))
	}
}
