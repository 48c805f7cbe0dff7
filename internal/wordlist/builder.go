// Package wordlist regenerates a tenant's reference word sets from raw
// source lists: dictionary and workspace words become the whitelist, and
// names, places and profanities are collected into their own sets and
// removed from the whitelist.
package wordlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"

	"github.com/dativo-io/masker/internal/masker"
	maskerotel "github.com/dativo-io/masker/internal/otel"
	"github.com/dativo-io/masker/internal/tenant"
)

var tracer = maskerotel.Tracer("github.com/dativo-io/masker/internal/wordlist")

// Source files read from the source directory.
const (
	DictionaryFile     = "umich-words.txt"
	WorkspaceFile      = "workspace-words.json"
	WebsiteFile        = "website-words.json"
	CitiesFile         = "cities.txt"
	StatesFile         = "states.txt"
	CountriesFile      = "countries.txt"
	FirstNamesFile     = "first_names.all.txt"
	LastNamesFile      = "last_names.all.txt"
	DialogNamesFile    = "dialog_names.json"
	ProfanityFile      = "profanity_words.txt"
	OverrideFile       = "override-words.txt"
	EmojiOverridesFile = "emoji_overrides.json"
)

// Provenance values recorded against each word.
const (
	FromDictionary = "umich_word"
	FromWorkspace  = "workspace"
	FromWebsite    = "website"
	FromCity       = "city"
	FromState      = "state"
	FromCountry    = "country"
	FromFirstName  = "first_name"
	FromLastName   = "last_name"
	FromDialogName = "dialog_name"
	FromProfanity  = "profanity"
	FromOverride   = "override"
)

// Set maps a word to where it came from.
type Set map[string]string

// add records word under prov unless the word is already known.
func (s Set) add(word, prov string) bool {
	if _, ok := s[word]; ok {
		return false
	}
	s[word] = prov
	return true
}

// Report counts what a build produced.
type Report struct {
	Whitelist           int `json:"whitelist"`
	Names               int `json:"names"`
	Geolocations        int `json:"geolocations"`
	Profanities         int `json:"profanities"`
	NamesRemoved        int `json:"namesRemoved"`
	GeolocationsRemoved int `json:"geolocationsRemoved"`
	ProfanitiesRemoved  int `json:"profanitiesRemoved"`
	Overrides           int `json:"overrides"`
	Emojis              int `json:"emojis"`
}

// Result holds the built sets.
type Result struct {
	Whitelist    Set
	Names        Set
	Geolocations Set
	Profanities  Set
	Report       Report
}

// Build reads the source lists in srcDir. Missing source lists are logged
// and skipped.
func Build(ctx context.Context, srcDir string) (*Result, error) {
	_, span := tracer.Start(ctx, "wordlist.build")
	defer span.End()

	r := &Result{Whitelist: Set{}, Names: Set{}, Geolocations: Set{}, Profanities: Set{}}
	src := sourceDir(srcDir)

	steps := []struct {
		file  string
		load  func(string) ([]string, error)
		dst   Set
		prov  string
		clean bool
		parts bool
	}{
		{DictionaryFile, src.lines, r.Whitelist, FromDictionary, true, false},
		{WorkspaceFile, src.workspace, r.Whitelist, FromWorkspace, true, false},
		{WebsiteFile, src.keys, r.Whitelist, FromWebsite, true, false},
		{CitiesFile, src.lines, r.Geolocations, FromCity, false, true},
		{StatesFile, src.lines, r.Geolocations, FromState, false, true},
		{CountriesFile, src.lines, r.Geolocations, FromCountry, true, true},
		{FirstNamesFile, src.lines, r.Names, FromFirstName, false, false},
		{LastNamesFile, src.lines, r.Names, FromLastName, false, false},
		{DialogNamesFile, src.keys, r.Names, FromDialogName, false, false},
		{ProfanityFile, src.lines, r.Profanities, FromProfanity, false, false},
	}
	for _, st := range steps {
		words, err := st.load(st.file)
		if err != nil {
			return nil, err
		}
		add := addWords
		if st.parts {
			add = addParts
		}
		added := add(st.dst, words, st.prov, st.clean)
		log.Debug().Str("file", st.file).Int("added", added).Msg("wordlist_source_added")
	}

	r.Report.NamesRemoved = removeAll(r.Whitelist, r.Names)
	r.Report.GeolocationsRemoved = removeAll(r.Whitelist, r.Geolocations)
	r.Report.ProfanitiesRemoved = removeAll(r.Whitelist, r.Profanities)

	overrides, err := src.lines(OverrideFile)
	if err != nil {
		return nil, err
	}
	sort.Strings(overrides)
	for _, w := range overrides {
		if strings.Contains(w, "_") {
			continue
		}
		if r.Whitelist.add(w, FromOverride) {
			r.Report.Overrides++
		}
	}

	emojis, err := src.emojiOverrides()
	if err != nil {
		log.Warn().Err(err).Str("file", EmojiOverridesFile).Msg("emoji_overrides_skipped")
	}
	for value, label := range emojis {
		r.Whitelist[value] = label
		r.Report.Emojis++
	}

	r.Report.Whitelist = len(r.Whitelist)
	r.Report.Names = len(r.Names)
	r.Report.Geolocations = len(r.Geolocations)
	r.Report.Profanities = len(r.Profanities)
	return r, nil
}

// Save writes the four reference sets into dir as a tenant expects them.
func (r *Result) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	files := []struct {
		name string
		set  Set
	}{
		{tenant.WhitelistFile, r.Whitelist},
		{tenant.NamesFile, r.Names},
		{tenant.GeolocationsFile, r.Geolocations},
		{tenant.ProfanitiesFile, r.Profanities},
	}
	for _, f := range files {
		data, err := json.MarshalIndent(f.set, "", "  ")
		if err != nil {
			return err
		}
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		log.Info().Str("file", path).Int("entries", len(f.set)).Msg("wordlist_saved")
	}
	return nil
}

// addWords adds each word, lower-cased. Words containing "_" are skipped.
// With clean set the word is reduced to its core and filtered.
func addWords(dst Set, words []string, prov string, clean bool) int {
	added := 0
	for _, w := range words {
		if strings.Contains(w, "_") {
			continue
		}
		if w = normalize(w, clean); w != "" && dst.add(w, prov) {
			added++
		}
	}
	return added
}

// addParts adds each whitespace-separated part of each entry, so "new york"
// contributes "new" and "york".
func addParts(dst Set, entries []string, prov string, clean bool) int {
	added := 0
	for _, e := range entries {
		if strings.Contains(e, "_") {
			continue
		}
		for _, w := range strings.Fields(e) {
			if w = normalize(w, clean); w != "" && dst.add(w, prov) {
				added++
			}
		}
	}
	return added
}

func normalize(w string, clean bool) string {
	w = strings.ToLower(strings.TrimSpace(w))
	if !clean {
		return w
	}
	_, core, _ := masker.CleanWord(w)
	if filtered(core) {
		return ""
	}
	return core
}

// filtered rejects empty words, email addresses, URLs, and words that begin
// or end with a digit.
func filtered(w string) bool {
	w = strings.TrimSpace(w)
	if w == "" || strings.Contains(w, "@") || strings.Contains(strings.ToLower(w), "http") {
		return true
	}
	r := []rune(w)
	return unicode.IsDigit(r[0]) || unicode.IsDigit(r[len(r)-1])
}

func removeAll(from, remove Set) int {
	n := 0
	for w := range remove {
		if _, ok := from[w]; ok {
			delete(from, w)
			n++
		}
	}
	return n
}

type sourceDir string

func (d sourceDir) path(name string) string { return filepath.Join(string(d), name) }

func (d sourceDir) lines(name string) ([]string, error) {
	words, err := tenant.LoadTextList(d.path(name))
	if errors.Is(err, tenant.ErrMissingResource) {
		log.Warn().Str("file", d.path(name)).Msg("wordlist_source_missing")
		return nil, nil
	}
	return words, err
}

func (d sourceDir) keys(name string) ([]string, error) {
	set, err := tenant.LoadWordSet(d.path(name))
	if errors.Is(err, tenant.ErrMissingResource) {
		log.Warn().Str("file", d.path(name)).Msg("wordlist_source_missing")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	words := make([]string, 0, len(set))
	for w := range set {
		words = append(words, w)
	}
	sort.Strings(words)
	return words, nil
}

// workspace reads the keys of the "whitelist" object of workspace-words.json.
func (d sourceDir) workspace(name string) ([]string, error) {
	var doc struct {
		Whitelist map[string]json.RawMessage `json:"whitelist"`
	}
	if ok, err := d.readJSON(name, &doc); !ok || err != nil {
		return nil, err
	}
	words := make([]string, 0, len(doc.Whitelist))
	for w := range doc.Whitelist {
		words = append(words, w)
	}
	sort.Strings(words)
	return words, nil
}

// emojiOverrides reads {"emoji_overrides": [{"label": "value"}]} and
// returns value → lower-cased label.
func (d sourceDir) emojiOverrides() (map[string]string, error) {
	var doc struct {
		Overrides []map[string]string `json:"emoji_overrides"`
	}
	if ok, err := d.readJSON(EmojiOverridesFile, &doc); !ok || err != nil {
		return nil, err
	}
	out := make(map[string]string)
	for _, o := range doc.Overrides {
		for label, value := range o {
			out[value] = strings.ToLower(label)
		}
	}
	return out, nil
}

func (d sourceDir) readJSON(name string, v any) (bool, error) {
	data, err := os.ReadFile(d.path(name))
	if errors.Is(err, os.ErrNotExist) {
		log.Warn().Str("file", d.path(name)).Msg("wordlist_source_missing")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parsing %s: %w", d.path(name), err)
	}
	return true, nil
}
