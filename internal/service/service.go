// Package service implements the masking operations offered to callers:
// masking lines, masking messages with reconciliation diffs, and editing a
// tenant's templates.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dativo-io/masker/internal/masker"
	"github.com/dativo-io/masker/internal/metrics"
	maskerotel "github.com/dativo-io/masker/internal/otel"
	"github.com/dativo-io/masker/internal/requestctx"
	"github.com/dativo-io/masker/internal/tenant"
)

var tracer = maskerotel.Tracer("github.com/dativo-io/masker/internal/service")

// ErrCountMismatch reports that masking produced a different number of
// lines than it was given. It indicates a bug, not bad input.
var ErrCountMismatch = errors.New("masked line count does not match message count")

// Service masks text for the tenants of a Registry and records every masked
// value in a Blacklist.
type Service struct {
	registry         *tenant.Registry
	blacklist        *masker.Blacklist
	persistTemplates bool
}

// Option configures a Service.
type Option func(*Service)

// WithPersistTemplates writes a tenant's template document back to its
// directory after every successful template update.
func WithPersistTemplates(persist bool) Option {
	return func(s *Service) { s.persistTemplates = persist }
}

// New creates a Service. A nil blacklist gets a fresh one.
func New(registry *tenant.Registry, blacklist *masker.Blacklist, opts ...Option) *Service {
	if blacklist == nil {
		blacklist = masker.NewBlacklist()
	}
	s := &Service{registry: registry, blacklist: blacklist}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Registry returns the tenant registry.
func (s *Service) Registry() *tenant.Registry { return s.registry }

// Blacklist returns the blacklist shared by all calls.
func (s *Service) Blacklist() *masker.Blacklist { return s.blacklist }

// Engine builds a masking engine for tenantID with request templates ahead
// of the tenant's templates. Invalid request templates are reported in errs.
// A nil engine comes with a configuration error as the only entry of errs.
func (s *Service) Engine(ctx context.Context, tenantID string, maskNumbers *bool, requestTemplates []masker.TemplateSpec) (*masker.Engine, []*masker.Error) {
	if tenantID == "" {
		return nil, []*masker.Error{masker.ConfigurationError("tenantID is missing.")}
	}
	t, err := s.registry.Get(ctx, tenantID)
	if err != nil {
		return nil, []*masker.Error{configurationError(tenantID, err)}
	}

	reqTemplates, errs := masker.CompileTemplates(requestTemplates)
	tenantTemplates, tenantMaskNumbers := t.Snapshot()
	if maskNumbers != nil {
		tenantMaskNumbers = *maskNumbers
	}
	templates := make([]masker.Template, 0, len(reqTemplates)+len(tenantTemplates))
	templates = append(templates, reqTemplates...)
	templates = append(templates, tenantTemplates...)

	e := masker.NewEngine(t.Lexicon,
		masker.WithTemplates(templates),
		masker.WithMaskNumbers(tenantMaskNumbers),
		masker.WithBlacklist(s.blacklist),
	)
	return e, errs
}

// MaskContent masks each line of req.Unmasked.
func (s *Service) MaskContent(ctx context.Context, req MaskRequest) (*MaskResponse, error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "service.mask_content")
	defer span.End()
	span.SetAttributes(maskerotel.TenantID.String(req.TenantID), maskerotel.Lines.Int(len(req.Unmasked)))

	resp := &MaskResponse{RequestID: requestID(ctx), Masked: []string{}, Errors: []*masker.Error{}}
	e, errs := s.Engine(ctx, req.TenantID, req.MaskNumbers, req.Templates)
	resp.Errors = append(resp.Errors, errs...)
	if e == nil {
		s.finish(ctx, span, "mask_content", req.TenantID, start, resp.Errors, masker.Counts{}, nil)
		return resp, nil
	}

	for _, line := range req.Unmasked {
		resp.Masked = append(resp.Masked, e.Mask(line, &resp.Counts))
	}
	s.finish(ctx, span, "mask_content", req.TenantID, start, resp.Errors, resp.Counts, nil)
	return resp, nil
}

// MaskMessageContent masks each message utterance and pairs every
// placeholder with the text it replaced.
func (s *Service) MaskMessageContent(ctx context.Context, req MessageRequest) (*MessageResponse, error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "service.mask_message_content")
	defer span.End()
	span.SetAttributes(maskerotel.TenantID.String(req.TenantID), maskerotel.Lines.Int(len(req.Messages)))

	resp := &MessageResponse{
		RequestID:      requestID(ctx),
		MaskedMessages: []Message{},
		Diffs:          [][]masker.MaskedToken{},
		Errors:         []*masker.Error{},
	}
	e, errs := s.Engine(ctx, req.TenantID, req.MaskNumbers, req.Templates)
	resp.Errors = append(resp.Errors, errs...)
	if e == nil {
		s.finish(ctx, span, "mask_message_content", req.TenantID, start, resp.Errors, masker.Counts{}, nil)
		return resp, nil
	}

	unmasked := make([]string, len(req.Messages))
	masked := make([]string, 0, len(req.Messages))
	for i, m := range req.Messages {
		unmasked[i] = strings.TrimSpace(masker.EscapeTildes(m.Utterance))
		masked = append(masked, e.MaskEscaped(unmasked[i], &resp.Counts))
	}
	if len(masked) != len(req.Messages) {
		err := fmt.Errorf("%w: %d masked, %d messages", ErrCountMismatch, len(masked), len(req.Messages))
		s.finish(ctx, span, "mask_message_content", req.TenantID, start, resp.Errors, resp.Counts, err)
		return nil, err
	}

	skipped := 0
	for i, m := range req.Messages {
		tokens, diffErrs := masker.Diff(unmasked[i], masked[i])
		for _, de := range diffErrs {
			skipped++
			log.Warn().
				Str("tenant_id", req.TenantID).
				Int("message", i).
				Str("error", de.Message).
				Func(maskerotel.LogTraceFields(ctx)).
				Func(requestctx.LogFields(ctx)).
				Msg("diff_entry_skipped")
		}
		if tokens == nil {
			tokens = []masker.MaskedToken{}
		}
		resp.Diffs = append(resp.Diffs, tokens)
		resp.MaskedMessages = append(resp.MaskedMessages, Message{
			Utterance: masker.RestoreTildes(masked[i]),
			Metadata:  m.Metadata,
		})
	}
	metrics.RecordDiffSkipped(req.TenantID, skipped)
	s.finish(ctx, span, "mask_message_content", req.TenantID, start, resp.Errors, resp.Counts, nil)
	return resp, nil
}

// UpdateMaskTemplates edits the tenant's template list.
func (s *Service) UpdateMaskTemplates(ctx context.Context, req TemplateUpdateRequest) (*TemplateUpdateResponse, error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "service.update_mask_templates")
	defer span.End()
	span.SetAttributes(
		maskerotel.TenantID.String(req.TenantID),
		attribute.Int("masker.updates", len(req.Updates)),
		attribute.Int("masker.removals", len(req.Removals)),
	)

	resp := &TemplateUpdateResponse{
		RequestID: requestID(ctx),
		Updated:   []masker.TemplateSpec{},
		Removed:   []masker.TemplateSpec{},
		Errors:    []*masker.Error{},
	}
	if req.TenantID == "" {
		resp.Errors = append(resp.Errors, masker.ConfigurationError("tenantID is missing."))
		s.finish(ctx, span, "update_mask_templates", req.TenantID, start, resp.Errors, masker.Counts{}, nil)
		return resp, nil
	}
	t, err := s.registry.Get(ctx, req.TenantID)
	if err != nil {
		resp.Errors = append(resp.Errors, configurationError(req.TenantID, err))
		s.finish(ctx, span, "update_mask_templates", req.TenantID, start, resp.Errors, masker.Counts{}, nil)
		return resp, nil
	}

	updated, removed, errs := t.UpdateTemplates(req.Updates, req.Removals)
	resp.Updated = append(resp.Updated, updated...)
	resp.Removed = append(resp.Removed, removed...)
	resp.Errors = append(resp.Errors, errs...)

	if s.persistTemplates && (len(updated) > 0 || len(removed) > 0) {
		if err := tenant.SaveTemplateDocument(t.Dir, t.Document()); err != nil {
			err = fmt.Errorf("saving templates for %s: %w", req.TenantID, err)
			s.finish(ctx, span, "update_mask_templates", req.TenantID, start, resp.Errors, masker.Counts{}, err)
			return nil, err
		}
	}
	log.Info().
		Str("tenant_id", req.TenantID).
		Int("updated", len(updated)).
		Int("removed", len(removed)).
		Int("errors", len(errs)).
		Func(maskerotel.LogTraceFields(ctx)).
		Func(requestctx.LogFields(ctx)).
		Msg("templates_updated")
	s.finish(ctx, span, "update_mask_templates", req.TenantID, start, resp.Errors, masker.Counts{}, nil)
	return resp, nil
}

// finish records metrics and span outcome for one call. Pattern errors are
// counted; a non-nil err marks the call failed.
func (s *Service) finish(ctx context.Context, span trace.Span, op, tenantID string, start time.Time, errs []*masker.Error, counts masker.Counts, err error) {
	patternErrs := 0
	for _, e := range errs {
		if e.Code == masker.CodePattern {
			patternErrs++
		}
	}
	metrics.RecordTemplateErrors(tenantID, patternErrs)
	metrics.RecordCounts(tenantID, counts)
	metrics.RecordRequest(op, err != nil)
	metrics.RequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	maskerotel.RecordCounts(ctx, tenantID, counts)

	span.SetAttributes(maskerotel.CountsAttributes(counts)...)
	span.SetAttributes(maskerotel.ErrorCount.Int(len(errs)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error().Err(err).Str("operation", op).Str("tenant_id", tenantID).Func(maskerotel.LogTraceFields(ctx)).Func(requestctx.LogFields(ctx)).Msg("mask_request_failed")
		return
	}
	span.SetStatus(codes.Ok, "")
}

// requestID returns the id set by the HTTP middleware, or a fresh UUID for
// callers outside a request.
func requestID(ctx context.Context) string {
	if id := requestctx.RequestID(ctx); id != "" {
		return id
	}
	return uuid.New().String()
}

func configurationError(tenantID string, err error) *masker.Error {
	switch {
	case errors.Is(err, tenant.ErrTenantNotFound):
		return masker.ConfigurationError("tenantID %q is not a known tenantID.", tenantID)
	case errors.Is(err, tenant.ErrInvalidTenantID):
		return masker.ConfigurationError("tenantID %q is not a valid tenantID.", tenantID)
	case errors.Is(err, tenant.ErrMissingResource):
		return masker.ConfigurationError("tenantID %q is missing a resource: %v", tenantID, err)
	}
	return masker.ConfigurationError("tenantID %q could not be loaded: %v", tenantID, err)
}
