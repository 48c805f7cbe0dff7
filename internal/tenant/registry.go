// Package tenant loads per-tenant masking resources from a properties
// directory and serializes updates to each tenant's template list.
package tenant

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"

	"github.com/dativo-io/masker/internal/masker"
	maskerotel "github.com/dativo-io/masker/internal/otel"
)

var tracer = maskerotel.Tracer("github.com/dativo-io/masker/internal/tenant")

var (
	ErrTenantNotFound    = errors.New("tenant not found")
	ErrInvalidTenantID   = errors.New("invalid tenant id")
	ErrMissingResource   = errors.New("missing tenant resource")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

var validID = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// ValidateID rejects ids that could escape the properties directory.
func ValidateID(id string) error {
	if id == "" || id == "." || id == ".." || !validID.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidTenantID, id)
	}
	return nil
}

// Tenant is one tenant's reference data and template list. The lexicon is
// read-only after load; the template list and maskNumbers flag change only
// through UpdateTemplates.
type Tenant struct {
	ID      string
	Dir     string
	Lexicon *masker.Lexicon

	mu          sync.RWMutex
	templates   []masker.Template
	maskNumbers bool
}

// Snapshot returns a copy of the template list and the tenant's default
// maskNumbers flag, safe to use after the lock is released.
func (t *Tenant) Snapshot() ([]masker.Template, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]masker.Template, len(t.templates))
	copy(out, t.templates)
	return out, t.maskNumbers
}

// UpdateTemplates applies removals then updates under the tenant's write lock.
func (t *Tenant) UpdateTemplates(updates []masker.TemplateSpec, removals []string) (updated, removed []masker.TemplateSpec, errs []*masker.Error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var next []masker.Template
	next, updated, removed, errs = masker.UpdateTemplates(t.templates, updates, removals)
	t.templates = next
	return updated, removed, errs
}

// Document returns the tenant's current templates in on-disk form.
func (t *Tenant) Document() *TemplateDocument {
	templates, maskNumbers := t.Snapshot()
	doc := &TemplateDocument{MaskNumbers: &maskNumbers, Templates: make([]masker.TemplateSpec, 0, len(templates))}
	for _, tmpl := range templates {
		doc.Templates = append(doc.Templates, tmpl.Spec())
	}
	return doc
}

// Registry resolves tenant ids to loaded tenants. Tenants are loaded from
// <dir>/<id>/ on first use and kept for the life of the process.
type Registry struct {
	dir       string
	rateLimit int

	mu       sync.RWMutex
	tenants  map[string]*Tenant
	limiters map[string]*rate.Limiter
}

// Option configures a Registry.
type Option func(*Registry)

// WithRateLimit limits each tenant to rps requests per second; 0 disables
// limiting.
func WithRateLimit(rps int) Option {
	return func(r *Registry) { r.rateLimit = rps }
}

// NewRegistry creates a registry over the properties directory dir.
func NewRegistry(dir string, opts ...Option) *Registry {
	r := &Registry{
		dir:      dir,
		tenants:  make(map[string]*Tenant),
		limiters: make(map[string]*rate.Limiter),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Get returns the tenant with the given id, loading it on first reference.
func (r *Registry) Get(ctx context.Context, id string) (*Tenant, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	r.mu.RLock()
	t, ok := r.tenants[id]
	r.mu.RUnlock()
	if ok {
		return t, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tenants[id]; ok {
		return t, nil
	}
	t, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}
	r.tenants[id] = t
	if r.rateLimit > 0 {
		r.limiters[id] = rate.NewLimiter(rate.Limit(r.rateLimit), r.rateLimit*2) // burst = 2s worth
	}
	return t, nil
}

func (r *Registry) load(ctx context.Context, id string) (*Tenant, error) {
	_, span := tracer.Start(ctx, "tenant.load")
	defer span.End()
	span.SetAttributes(maskerotel.TenantID.String(id))

	dir := filepath.Join(r.dir, id)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		span.SetStatus(codes.Error, "tenant not found")
		return nil, fmt.Errorf("%w: %s", ErrTenantNotFound, id)
	}
	t, patternErrs, err := Load(id, dir)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("loading tenant %s: %w", id, err)
	}
	for _, pe := range patternErrs {
		log.Warn().Str("tenant_id", id).Str("error", pe.Error()).Msg("tenant_template_skipped")
	}
	templates, maskNumbers := t.Snapshot()
	span.SetAttributes(
		maskerotel.TemplateCount.Int(len(templates)),
		attribute.Int("masker.whitelist_size", len(t.Lexicon.Whitelist)),
	)
	log.Info().
		Str("tenant_id", id).
		Int("whitelist", len(t.Lexicon.Whitelist)).
		Int("names", len(t.Lexicon.Names)).
		Int("geolocations", len(t.Lexicon.Geolocations)).
		Int("profanities", len(t.Lexicon.Profanities)).
		Int("templates", len(templates)).
		Bool("mask_numbers", maskNumbers).
		Msg("tenant_loaded")
	return t, nil
}

// IDs lists the tenant directories present under the properties directory.
func (r *Registry) IDs() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("listing tenants in %s: %w", r.dir, err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() && ValidateID(e.Name()) == nil {
			ids = append(ids, e.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Loaded returns the ids of tenants already loaded, sorted.
func (r *Registry) Loaded() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.tenants))
	for id := range r.tenants {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LoadAll loads every tenant directory, so configuration problems surface
// before traffic is served. Failures are joined; tenants that load
// successfully stay registered.
func (r *Registry) LoadAll(ctx context.Context) error {
	ids, err := r.IDs()
	if err != nil {
		return err
	}
	var errs []error
	for _, id := range ids {
		if _, err := r.Get(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Allow reports ErrRateLimitExceeded when the tenant has used its request
// budget for the current second.
func (r *Registry) Allow(id string) error {
	r.mu.RLock()
	lim := r.limiters[id]
	r.mu.RUnlock()
	if lim != nil && !lim.Allow() {
		return ErrRateLimitExceeded
	}
	return nil
}
