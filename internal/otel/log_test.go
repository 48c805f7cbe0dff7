package otel

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestTraceContextFrom_NoSpan(t *testing.T) {
	traceID, spanID := TraceContextFrom(context.Background())
	assert.Empty(t, traceID)
	assert.Empty(t, spanID)
}

func TestLogTraceFields(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	logger.Warn().Func(LogTraceFields(context.Background())).Msg("diff_entry_skipped")
	assert.NotContains(t, buf.String(), "trace_id")

	buf.Reset()
	ctx, span := tp.Tracer("test").Start(context.Background(), "service.mask_message_content")
	defer span.End()
	logger.Warn().Func(LogTraceFields(ctx)).Msg("diff_entry_skipped")
	assert.Contains(t, buf.String(), `"trace_id":"`+span.SpanContext().TraceID().String()+`"`)
	assert.Contains(t, buf.String(), `"span_id":"`+span.SpanContext().SpanID().String()+`"`)
}
