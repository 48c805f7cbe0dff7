// Package testutil provides shared test fixtures for masker tests.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// DefaultTenant is the tenant id used by WriteTenant when none is given.
const DefaultTenant = "companyA"

// Template is one entry of a fixture's template document.
type Template struct {
	Template string `json:"template"`
	Mask     string `json:"mask"`
}

// TenantFixture describes the files of a tenant directory.
type TenantFixture struct {
	Whitelist           []string
	Names               []string
	Geolocations        []string
	Profanities         []string
	DomainPrefixes      []string
	DomainSuffixes      []string
	QueryStringContains []string
	Templates           []Template
	MaskNumbers         bool
}

// StandardFixture is a small tenant that knows a handful of names, places
// and words, enough to mask the sentences used across the test suite.
func StandardFixture() TenantFixture {
	return TenantFixture{
		Whitelist: []string{
			"hi", "hello", "my", "name", "is", "i", "live", "in", "call", "me", "at",
			"the", "see", "visit", "please", "thanks", "you", "your", "order", "account",
		},
		Names:               []string{"alice", "john", "smith", "jordan"},
		Geolocations:        []string{"paris", "jordan", "boston"},
		Profanities:         []string{"darn"},
		DomainPrefixes:      []string{"localhost"},
		DomainSuffixes:      []string{"bad.com"},
		QueryStringContains: []string{"token="},
		Templates:           []Template{{Template: `acct\d+`, Mask: "~acct~"}},
		MaskNumbers:         true,
	}
}

// WriteTenant writes f as tenant id under propertiesDir and returns the
// tenant directory.
func WriteTenant(t *testing.T, propertiesDir, id string, f TenantFixture) string {
	t.Helper()
	if id == "" {
		id = DefaultTenant
	}
	dir := filepath.Join(propertiesDir, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeSet(t, filepath.Join(dir, "whitelist-words.json"), f.Whitelist, "override")
	writeSet(t, filepath.Join(dir, "names.json"), f.Names, "first_name")
	writeSet(t, filepath.Join(dir, "geolocations.json"), f.Geolocations, "city")
	writeSet(t, filepath.Join(dir, "profanities.json"), f.Profanities, "profanity")
	writeList(t, filepath.Join(dir, "DomainPrefixes.txt"), f.DomainPrefixes)
	writeList(t, filepath.Join(dir, "DomainSuffixes.txt"), f.DomainSuffixes)
	writeList(t, filepath.Join(dir, "QueryStringContains.txt"), f.QueryStringContains)

	templates := f.Templates
	if templates == nil {
		templates = []Template{}
	}
	writeJSON(t, filepath.Join(dir, "maskTemplates.json"), map[string]any{
		"maskNumbers": f.MaskNumbers,
		"templates":   templates,
	})
	return dir
}

// NewPropertiesDir creates a temp properties directory holding one tenant
// built from StandardFixture.
func NewPropertiesDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	WriteTenant(t, dir, DefaultTenant, StandardFixture())
	return dir
}

func writeSet(t *testing.T, path string, words []string, provenance string) {
	t.Helper()
	obj := make(map[string]string, len(words))
	for _, w := range words {
		obj[w] = provenance
	}
	writeJSON(t, path, obj)
}

func writeList(t *testing.T, path string, lines []string) {
	t.Helper()
	content := "_ comment lines start with an underscore\n" + strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func writeJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
}
