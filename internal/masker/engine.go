package masker

import (
	"strings"
)

// WordSet is a set of lower-cased words.
type WordSet map[string]struct{}

// NewWordSet builds a WordSet from words, lower-casing each one.
func NewWordSet(words ...string) WordSet {
	s := make(WordSet, len(words))
	for _, w := range words {
		s.Add(w)
	}
	return s
}

// Add inserts the lower-cased form of w.
func (s WordSet) Add(w string) {
	s[strings.ToLower(w)] = struct{}{}
}

// Has reports whether the lower-cased word w is present.
func (s WordSet) Has(w string) bool {
	_, ok := s[w]
	return ok
}

// Lexicon holds a tenant's reference data. Sets and lists are expected in
// lower case and are not modified by the engine.
type Lexicon struct {
	Whitelist    WordSet
	Names        WordSet
	Geolocations WordSet
	Profanities  WordSet

	DomainPrefixes      []string
	DomainSuffixes      []string
	QueryStringContains []string
}

// Classify returns the category a lower-cased word would be masked as,
// ignoring the whitelist. Precedence is names, geolocations, profanities,
// numbers, then misc.
func (l *Lexicon) Classify(word string) Category {
	switch {
	case l.Names.Has(word):
		return CategoryName
	case l.Geolocations.Has(word):
		return CategoryGeo
	case l.Profanities.Has(word):
		return CategoryBad
	case IsNumeric(word):
		return CategoryNum
	}
	return CategoryMisc
}

// IsAcceptableURL reports whether candidate is a URL the lexicon allows to
// stay unmasked.
func (l *Lexicon) IsAcceptableURL(candidate string) bool {
	return IsAcceptableURL(candidate, l.QueryStringContains, l.DomainPrefixes, l.DomainSuffixes)
}

// Engine masks lines of text against one Lexicon and an ordered list of
// templates. An Engine is immutable and safe for concurrent use; per-call
// state lives in the Counts passed to Mask.
type Engine struct {
	lex         *Lexicon
	templates   []Template
	labels      map[string]struct{}
	maskNumbers bool
	blacklist   *Blacklist
}

// Option configures an Engine.
type Option func(*Engine)

// WithTemplates sets the ordered templates applied before word masking.
// Request-scoped templates must precede tenant templates.
func WithTemplates(templates []Template) Option {
	return func(e *Engine) { e.templates = templates }
}

// WithMaskNumbers controls whether all-digit words become "~num~".
func WithMaskNumbers(mask bool) Option {
	return func(e *Engine) { e.maskNumbers = mask }
}

// WithBlacklist records every masked value in b.
func WithBlacklist(b *Blacklist) Option {
	return func(e *Engine) { e.blacklist = b }
}

// NewEngine creates an Engine. Numbers are masked unless disabled.
func NewEngine(lex *Lexicon, opts ...Option) *Engine {
	e := &Engine{lex: lex, maskNumbers: true}
	for _, o := range opts {
		o(e)
	}
	if e.lex == nil {
		e.lex = &Lexicon{}
	}
	e.labels = Labels(e.templates)
	return e
}

// Mask masks one line. Literal tildes in line survive unchanged in the
// output.
func (e *Engine) Mask(line string, counts *Counts) string {
	return RestoreTildes(e.MaskEscaped(EscapeTildes(line), counts))
}

// MaskEscaped masks a line whose literal tildes were already replaced by
// TildeSubstitute and leaves the substitute in place, which keeps the result
// comparable with the escaped input for Diff.
func (e *Engine) MaskEscaped(line string, counts *Counts) string {
	r := &run{e: e, counts: counts, buf: make([]byte, 0, len(line)+16)}
	r.words(Split(ApplyTemplates(line, e.templates), " "), " ")
	return strings.TrimSpace(string(r.buf))
}

// passes reports whether a lower-cased word is whitelisted or is itself a
// template label.
func (e *Engine) passes(word string) bool {
	if e.lex.Whitelist.Has(word) {
		return true
	}
	_, ok := e.labels[word]
	return ok
}

// run is the state of one MaskEscaped call. last is the category of the
// most recent placeholder and mark is the buffer length right after it; a
// placeholder of the same category separated from it only by a run of one
// delimiter is merged into it, erasing one copy of that delimiter.
type run struct {
	e      *Engine
	counts *Counts
	buf    []byte
	last   Category
	mark   int
}

func (r *run) emit(s string) {
	r.buf = append(r.buf, s...)
}

func (r *run) words(parts []string, delim string) {
	for i, w := range parts {
		if i > 0 {
			r.emit(delim)
			if delim == "\n" || delim == "\r" {
				r.last = CategoryNone
			}
		}
		if w == "" {
			continue
		}
		for _, seg := range segmentPlaceholders(w) {
			r.segment(seg)
		}
	}
}

func (r *run) segment(w string) {
	if IsPlaceholder(w) {
		r.counts.word()
		r.pass(w)
		return
	}
	prefix, core, suffix := CleanWord(w)
	if core == "" {
		r.counts.word()
		r.pass(w)
		return
	}
	r.emit(prefix)
	r.core(core)
	r.suffix(suffix)
}

func (r *run) core(core string) {
	lower := strings.ToLower(core)

	// a URL glued to a leading word, e.g. "meeting:https://zoom.us"
	if i := strings.Index(asciiLower(core), "http"); i > 0 {
		r.segment(core[:i])
		r.core(core[i:])
		return
	}
	if r.e.lex.IsAcceptableURL(lower) {
		r.counts.word()
		r.pass(core)
		return
	}
	if looksLikeURL(lower) {
		r.counts.word()
		if r.e.passes(lower) {
			r.pass(core)
			return
		}
		r.mask(CategoryURL, lower)
		return
	}
	if d, ok := firstDelimiter(core); ok {
		r.words(Split(core, d), d)
		return
	}

	r.counts.word()
	if r.e.passes(lower) {
		r.pass(core)
		return
	}
	cat := r.e.lex.Classify(lower)
	if cat == CategoryNum && !r.e.maskNumbers {
		r.pass(core)
		return
	}
	r.mask(cat, lower)
}

func (r *run) pass(s string) {
	r.emit(s)
	r.last = CategoryNone
}

func (r *run) mask(cat Category, value string) {
	r.e.blacklist.Record(value, r.e.maskNumbers)
	r.counts.masked(cat)
	if d, ok := r.delimiterRun(); ok && cat == r.last {
		r.buf = r.buf[:len(r.buf)-len(d)]
	} else {
		r.emit(cat.Placeholder())
	}
	r.mark = len(r.buf)
	r.last = cat
}

// delimiterRun reports whether only repetitions of one delimiter were
// emitted since the last placeholder, and returns that delimiter. Empty
// split elements leave runs such as "  " behind; the collapse erases one.
func (r *run) delimiterRun() (string, bool) {
	tail := string(r.buf[r.mark:])
	if tail == "" {
		return "", true
	}
	if repeats(tail, " ") {
		return " ", true
	}
	for _, d := range Delimiters {
		if repeats(tail, d) {
			return d, true
		}
	}
	return "", false
}

// repeats reports whether s is one or more copies of d.
func repeats(s, d string) bool {
	return len(s)%len(d) == 0 && strings.Repeat(d, len(s)/len(d)) == s
}

func (r *run) suffix(s string) {
	if s == "" {
		return
	}
	r.emit(s)
	if !isBlank(s) || strings.ContainsAny(s, "\r\n") {
		r.last = CategoryNone
	}
}

// asciiLower lower-cases ASCII letters only, keeping byte offsets intact.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
