package server

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dativo-io/masker/internal/requestctx"
)

// Headers read by RequestContext.
const (
	HeaderTenantID  = "X-Tenant-ID"
	HeaderRequestID = "X-Request-ID"
)

// RequestContext stores the caller's X-Request-ID, or a fresh UUID, and the
// X-Tenant-ID header in the request context. The request id is echoed in the
// response header and becomes the requestId of the response body.
func RequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.New().String()
		}
		ctx = requestctx.SetRequestID(ctx, id)
		if tenantID := r.Header.Get(HeaderTenantID); tenantID != "" {
			ctx = requestctx.SetTenantID(ctx, tenantID)
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// tenantFor returns the body tenant id, falling back to X-Tenant-ID.
func tenantFor(r *http.Request, bodyTenantID string) string {
	if bodyTenantID != "" {
		return bodyTenantID
	}
	return requestctx.TenantID(r.Context())
}
