package masker

import (
	"strings"
	"unicode/utf8"
)

// Category is the kind of content a placeholder replaces.
type Category string

// Built-in categories. Template labels act as additional categories.
const (
	CategoryNone Category = ""
	CategoryName Category = "name"
	CategoryGeo  Category = "geo"
	CategoryBad  Category = "bad"
	CategoryMisc Category = "misc"
	CategoryNum  Category = "num"
	CategoryURL  Category = "url"
)

// Placeholder returns the wrapped placeholder for c, e.g. "~name~".
func (c Category) Placeholder() string {
	return Placeholder(string(c))
}

// Unicode punctuation that is stripped from word edges in addition to ASCII
// punctuation.
var edgePunctuation = map[rune]struct{}{
	'\u2003': {}, // em space
	'\u2013': {}, // en dash
	'\u2018': {}, // left single quote
	'\u2019': {}, // right single quote
	'\u201C': {}, // left double quote
	'\u201D': {}, // right double quote
	'\u2022': {}, // bullet
	'\u2026': {}, // ellipsis
	'\u2028': {}, // line separator
	'\u202A': {}, // left-to-right embedding
	'\u202C': {}, // pop directional formatting
	'\u202F': {}, // narrow no-break space
}

// isWordRune reports whether r belongs to the core of a word: ASCII letters
// and digits, '@' (so e-mail addresses stay whole) and any non-ASCII rune
// outside the curated punctuation set.
func isWordRune(r rune) bool {
	switch {
	case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '@':
		return true
	case r < utf8.RuneSelf:
		return false
	}
	_, punct := edgePunctuation[r]
	return !punct
}

// CleanWord splits word into its leading non-word characters, its core and
// its trailing non-word characters. prefix+core+suffix always equals word.
// A word made only of non-word characters is returned entirely as prefix.
func CleanWord(word string) (prefix, core, suffix string) {
	start := 0
	for start < len(word) {
		r, size := utf8.DecodeRuneInString(word[start:])
		if isWordRune(r) {
			break
		}
		start += size
	}
	if start == len(word) {
		return word, "", ""
	}
	end := len(word)
	for end > start {
		r, size := utf8.DecodeLastRuneInString(word[start:end])
		if isWordRune(r) {
			break
		}
		end -= size
	}
	return word[:start], word[start:end], word[end:]
}

// IsNumeric reports whether s is non-empty and made only of ASCII digits.
func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// isBlank reports whether s holds only control characters and spaces.
func isBlank(s string) bool {
	return strings.TrimFunc(s, func(r rune) bool { return r <= ' ' }) == ""
}
