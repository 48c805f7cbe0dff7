package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dativo-io/masker/internal/masker"
	"github.com/dativo-io/masker/internal/requestctx"
	"github.com/dativo-io/masker/internal/service"
	"github.com/dativo-io/masker/internal/tenant"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": code, "message": message})
}

// decode reads a JSON body into v, writing a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body must be JSON: "+err.Error())
		return false
	}
	return true
}

// allow writes a 429 when tenantID has used its request budget.
func (s *Server) allow(w http.ResponseWriter, tenantID string) bool {
	err := s.svc.Registry().Allow(tenantID)
	if err == nil {
		return true
	}
	if errors.Is(err, tenant.ErrRateLimitExceeded) {
		w.Header().Set("Retry-After", "1")
		w.Header().Set("X-RateLimit-Remaining", "0")
		writeError(w, http.StatusTooManyRequests, "rate_limit_exceeded", err.Error())
		return false
	}
	writeError(w, http.StatusInternalServerError, "internal", err.Error())
	return false
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"uptime":         time.Since(s.startTime).String(),
		"tenants_loaded": len(s.svc.Registry().Loaded()),
	})
}

func (s *Server) handleMask(w http.ResponseWriter, r *http.Request) {
	var req service.MaskRequest
	if !decode(w, r, &req) {
		return
	}
	req.TenantID = tenantFor(r, req.TenantID)
	if !s.allow(w, req.TenantID) {
		return
	}
	resp, err := s.svc.MaskContent(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMaskMessages(w http.ResponseWriter, r *http.Request) {
	var req service.MessageRequest
	if !decode(w, r, &req) {
		return
	}
	req.TenantID = tenantFor(r, req.TenantID)
	if !s.allow(w, req.TenantID) {
		return
	}
	resp, err := s.svc.MaskMessageContent(r.Context(), req)
	if err != nil {
		code := "internal"
		if errors.Is(err, service.ErrCountMismatch) {
			code = string(masker.CodeInvariant)
		}
		log.Error().Err(err).Str("tenant_id", req.TenantID).Func(requestctx.LogFields(r.Context())).Msg("mask_messages_failed")
		writeError(w, http.StatusInternalServerError, code, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateTemplates(w http.ResponseWriter, r *http.Request) {
	var req service.TemplateUpdateRequest
	if !decode(w, r, &req) {
		return
	}
	req.TenantID = tenantFor(r, req.TenantID)
	if !s.allow(w, req.TenantID) {
		return
	}
	resp, err := s.svc.UpdateMaskTemplates(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTenants(w http.ResponseWriter, r *http.Request) {
	ids, err := s.svc.Registry().IDs()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tenants": ids,
		"loaded":  s.svc.Registry().Loaded(),
	})
}

func (s *Server) handleBlacklist(w http.ResponseWriter, r *http.Request) {
	entries := s.svc.Blacklist().Entries()
	total := len(entries)
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "invalid_request", "limit must be a non-negative integer")
			return
		}
		if limit < total {
			entries = entries[:limit]
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"total":   total,
	})
}

// handleClearBlacklist forgets all recorded words, typically after the
// reviewed words were added to a whitelist.
func (s *Server) handleClearBlacklist(w http.ResponseWriter, r *http.Request) {
	bl := s.svc.Blacklist()
	cleared := bl.Len()
	bl.Reset()
	log.Info().Int("cleared", cleared).Func(requestctx.LogFields(r.Context())).Msg("blacklist_cleared")
	writeJSON(w, http.StatusOK, map[string]int{"cleared": cleared})
}
