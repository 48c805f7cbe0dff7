// Package doctor provides preflight checks for masker configuration and
// tenant directories. Used by `masker doctor`.
package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dativo-io/masker/internal/config"
	"github.com/dativo-io/masker/internal/tenant"
)

// Check statuses.
const (
	StatusPass = "pass"
	StatusWarn = "warn"
	StatusFail = "fail"
)

// CheckResult is a single doctor check outcome.
type CheckResult struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Status   string `json:"status"` // pass, warn, fail
	Message  string `json:"message"`
	Fix      string `json:"fix,omitempty"`
}

// Summary tallies pass/warn/fail counts.
type Summary struct {
	Pass int `json:"pass"`
	Warn int `json:"warn"`
	Fail int `json:"fail"`
}

// Report is the complete doctor output.
type Report struct {
	Status  string        `json:"status"` // worst of all checks
	Checks  []CheckResult `json:"checks"`
	Summary Summary       `json:"summary"`
}

// Options controls which check categories to run.
type Options struct {
	SkipBatch bool // Skip input/output directory checks (serve-only deployments)
}

// Run executes all doctor checks against cfg and returns a report.
func Run(ctx context.Context, cfg *config.Config, opts Options) *Report {
	report := &Report{}

	report.Checks = append(report.Checks, checkTenants(ctx, cfg)...)
	if !opts.SkipBatch {
		report.Checks = append(report.Checks, checkInputDir(cfg), checkOutputDir(cfg))
	}

	for _, c := range report.Checks {
		switch c.Status {
		case StatusPass:
			report.Summary.Pass++
		case StatusWarn:
			report.Summary.Warn++
		case StatusFail:
			report.Summary.Fail++
		}
	}

	report.Status = StatusPass
	if report.Summary.Warn > 0 {
		report.Status = StatusWarn
	}
	if report.Summary.Fail > 0 {
		report.Status = StatusFail
	}
	return report
}

func checkTenants(ctx context.Context, cfg *config.Config) []CheckResult {
	if info, err := os.Stat(cfg.PropertiesDir); err != nil || !info.IsDir() {
		return []CheckResult{{
			Name: "properties_dir", Category: "tenants", Status: StatusFail,
			Message: fmt.Sprintf("%s: not a directory", cfg.PropertiesDir),
			Fix:     "Set MASKER_PROPERTIES_DIR or run 'masker init <tenant>'",
		}}
	}
	results := []CheckResult{{
		Name: "properties_dir", Category: "tenants", Status: StatusPass,
		Message: cfg.PropertiesDir,
	}}

	ids, err := tenant.NewRegistry(cfg.PropertiesDir).IDs()
	if err != nil {
		return append(results, CheckResult{
			Name: "tenants_listed", Category: "tenants", Status: StatusFail, Message: err.Error(),
		})
	}
	hasDefault := false
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		if id == cfg.DefaultTenant {
			hasDefault = true
		}
		results = append(results, checkTenant(id, filepath.Join(cfg.PropertiesDir, id)))
	}
	if !hasDefault {
		results = append(results, CheckResult{
			Name: "default_tenant", Category: "tenants", Status: StatusWarn,
			Message: fmt.Sprintf("%s not found in %s", cfg.DefaultTenant, cfg.PropertiesDir),
			Fix:     "Pass --tenant to each command or set MASKER_DEFAULT_TENANT",
		})
	} else {
		results = append(results, CheckResult{
			Name: "default_tenant", Category: "tenants", Status: StatusPass, Message: cfg.DefaultTenant,
		})
	}
	return results
}

func checkTenant(id, dir string) CheckResult {
	name := "tenant_" + id
	t, patternErrs, err := tenant.Load(id, dir)
	if err != nil {
		return CheckResult{
			Name: name, Category: "tenants", Status: StatusFail,
			Message: err.Error(),
			Fix:     fmt.Sprintf("Run 'masker init --force %s' or restore the missing file", id),
		}
	}
	if len(patternErrs) > 0 {
		return CheckResult{
			Name: name, Category: "tenants", Status: StatusWarn,
			Message: fmt.Sprintf("%d template(s) do not compile and are skipped", len(patternErrs)),
			Fix:     fmt.Sprintf("Run 'masker validate %s' for details", id),
		}
	}
	if len(t.Lexicon.Whitelist) == 0 {
		return CheckResult{
			Name: name, Category: "tenants", Status: StatusWarn,
			Message: "whitelist is empty, every word will be masked",
			Fix:     fmt.Sprintf("Run 'masker wordlists build --tenant %s'", id),
		}
	}
	return CheckResult{
		Name: name, Category: "tenants", Status: StatusPass,
		Message: fmt.Sprintf("%d whitelisted words", len(t.Lexicon.Whitelist)),
	}
}

func checkInputDir(cfg *config.Config) CheckResult {
	info, err := os.Stat(cfg.InputDir)
	if err != nil || !info.IsDir() {
		return CheckResult{
			Name: "input_dir", Category: "batch", Status: StatusWarn,
			Message: fmt.Sprintf("%s: not a directory", cfg.InputDir),
			Fix:     "Set MASKER_INPUT_DIR before running 'masker mask'",
		}
	}
	return CheckResult{Name: "input_dir", Category: "batch", Status: StatusPass, Message: cfg.InputDir}
}

func checkOutputDir(cfg *config.Config) CheckResult {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return CheckResult{
			Name: "output_dir_writable", Category: "batch", Status: StatusFail,
			Message: fmt.Sprintf("%s: %v", cfg.OutputDir, err),
			Fix:     "Ensure directory exists and is writable",
		}
	}
	testFile := filepath.Join(cfg.OutputDir, ".doctor-write-test")
	if err := os.WriteFile(testFile, []byte("ok"), 0o600); err != nil {
		return CheckResult{
			Name: "output_dir_writable", Category: "batch", Status: StatusFail,
			Message: fmt.Sprintf("%s not writable: %v", cfg.OutputDir, err),
		}
	}
	_ = os.Remove(testFile)
	return CheckResult{
		Name: "output_dir_writable", Category: "batch", Status: StatusPass,
		Message: fmt.Sprintf("%s (writable)", cfg.OutputDir),
	}
}
