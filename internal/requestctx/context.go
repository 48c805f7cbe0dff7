// Package requestctx provides request-scoped values (tenant_id, request_id)
// set by the HTTP middleware and read by the service layer.
package requestctx

import (
	"context"

	"github.com/rs/zerolog"
)

type contextKey struct{ name string }

var (
	tenantIDKey  = &contextKey{"tenant_id"}
	requestIDKey = &contextKey{"request_id"}
)

// SetTenantID stores tenant_id in the context.
func SetTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantIDKey, tenantID)
}

// TenantID returns the tenant_id from context, or "" if not set.
func TenantID(ctx context.Context) string {
	v, _ := ctx.Value(tenantIDKey).(string)
	return v
}

// SetRequestID stores request_id in the context.
func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestID returns the request_id from context, or "" if not set.
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

// LogFields returns a zerolog Func hook adding request_id when one is set.
func LogFields(ctx context.Context) func(e *zerolog.Event) {
	return func(e *zerolog.Event) {
		if id := RequestID(ctx); id != "" {
			e.Str("request_id", id)
		}
	}
}
