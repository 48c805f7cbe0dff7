package tenant

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dativo-io/masker/internal/masker"
)

// Files that make up a tenant directory.
const (
	WhitelistFile           = "whitelist-words.json"
	NamesFile               = "names.json"
	GeolocationsFile        = "geolocations.json"
	ProfanitiesFile         = "profanities.json"
	DomainPrefixesFile      = "DomainPrefixes.txt"
	DomainSuffixesFile      = "DomainSuffixes.txt"
	QueryStringContainsFile = "QueryStringContains.txt"
	TemplatesFile           = "maskTemplates.json"
	TemplatesYAMLFile       = "maskTemplates.yaml"
)

// commentPrefix marks comment lines in text lists.
const commentPrefix = "_"

// TemplateDocument is the on-disk template file of a tenant.
type TemplateDocument struct {
	MaskNumbers *bool                 `json:"maskNumbers" yaml:"maskNumbers"`
	Templates   []masker.TemplateSpec `json:"templates" yaml:"templates"`
}

// LoadWordSet reads a JSON object whose keys are words. Values carry
// provenance and are ignored.
func LoadWordSet(path string) (masker.WordSet, error) {
	data, err := readResource(path)
	if err != nil {
		return nil, err
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	set := make(masker.WordSet, len(obj))
	for w := range obj {
		set.Add(w)
	}
	return set, nil
}

// LoadTextList reads one lower-cased entry per line, skipping blank lines and
// lines starting with "_".
func LoadTextList(path string) ([]string, error) {
	data, err := readResource(path)
	if err != nil {
		return nil, err
	}
	var out []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, commentPrefix) {
			continue
		}
		out = append(out, strings.ToLower(line))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return out, nil
}

// LoadTemplateDocument reads maskTemplates.json, or maskTemplates.yaml when
// the JSON document is absent.
func LoadTemplateDocument(dir string) (*TemplateDocument, error) {
	var doc TemplateDocument
	jsonPath := filepath.Join(dir, TemplatesFile)
	data, err := readResource(jsonPath)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", jsonPath, err)
		}
		return &doc, nil
	case !errors.Is(err, ErrMissingResource):
		return nil, err
	}

	yamlPath := filepath.Join(dir, TemplatesYAMLFile)
	data, err = readResource(yamlPath)
	if err != nil {
		return nil, fmt.Errorf("%w: neither %s nor %s", ErrMissingResource, TemplatesFile, TemplatesYAMLFile)
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", yamlPath, err)
	}
	return &doc, nil
}

// SaveTemplateDocument writes doc as maskTemplates.json in dir.
func SaveTemplateDocument(dir string, doc *TemplateDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, TemplatesFile), append(data, '\n'), 0o644)
}

// Load reads every resource of the tenant in dir. Templates that fail to
// compile are skipped and returned as pattern errors; any missing or
// unreadable resource fails the whole load.
func Load(id, dir string) (*Tenant, []*masker.Error, error) {
	lex := &masker.Lexicon{}
	sets := []struct {
		file string
		dst  *masker.WordSet
	}{
		{WhitelistFile, &lex.Whitelist},
		{NamesFile, &lex.Names},
		{GeolocationsFile, &lex.Geolocations},
		{ProfanitiesFile, &lex.Profanities},
	}
	for _, s := range sets {
		set, err := LoadWordSet(filepath.Join(dir, s.file))
		if err != nil {
			return nil, nil, err
		}
		*s.dst = set
	}

	lists := []struct {
		file string
		dst  *[]string
	}{
		{DomainPrefixesFile, &lex.DomainPrefixes},
		{DomainSuffixesFile, &lex.DomainSuffixes},
		{QueryStringContainsFile, &lex.QueryStringContains},
	}
	for _, l := range lists {
		list, err := LoadTextList(filepath.Join(dir, l.file))
		if err != nil {
			return nil, nil, err
		}
		*l.dst = list
	}

	doc, err := LoadTemplateDocument(dir)
	if err != nil {
		return nil, nil, err
	}
	templates, patternErrs := masker.CompileTemplates(doc.Templates)
	maskNumbers := true
	if doc.MaskNumbers != nil {
		maskNumbers = *doc.MaskNumbers
	}

	return &Tenant{
		ID:          id,
		Dir:         dir,
		Lexicon:     lex,
		templates:   templates,
		maskNumbers: maskNumbers,
	}, patternErrs, nil
}

func readResource(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingResource, path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}
