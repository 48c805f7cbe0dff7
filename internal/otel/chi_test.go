package otel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return rec
}

func attr(span sdktrace.ReadOnlySpan, key string) attribute.Value {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value
		}
	}
	return attribute.Value{}
}

func TestMiddlewareWithStatus_RecordsRouteAndStatus(t *testing.T) {
	spans := recordSpans(t)

	r := chi.NewRouter()
	r.Use(MiddlewareWithStatus())
	r.Post("/v1/mask", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Patch("/v1/templates", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/v1/mask"},
		{http.MethodPatch, "/v1/templates"},
	} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
	}

	ended := spans.Ended()
	require.Len(t, ended, 2)

	assert.Equal(t, "/v1/mask", attr(ended[0], "http.route").AsString())
	assert.Equal(t, int64(http.StatusOK), attr(ended[0], "http.response.status_code").AsInt64())
	assert.NotEqual(t, codes.Error, ended[0].Status().Code)

	assert.Equal(t, "/v1/templates", attr(ended[1], "http.route").AsString())
	assert.Equal(t, int64(http.StatusInternalServerError), attr(ended[1], "http.response.status_code").AsInt64())
	assert.Equal(t, codes.Error, ended[1].Status().Code)
}

func TestMiddlewareWithStatus_WithoutRouter(t *testing.T) {
	spans := recordSpans(t)

	h := MiddlewareWithStatus()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/mask/messages", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	ended := spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "/v1/mask/messages", attr(ended[0], "http.route").AsString())
	assert.NotEqual(t, codes.Error, ended[0].Status().Code)
}
