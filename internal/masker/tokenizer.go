// Package masker implements whitelist-driven masking of conversational text.
//
// A line is first rewritten by regex templates, then split on spaces into
// words. Each word is cleaned of leading and trailing punctuation and either
// passed through, split again on the first structural delimiter it contains,
// or classified against the tenant's reference sets and replaced by a
// placeholder such as "~name~". Adjacent words of the same category collapse
// into a single placeholder.
package masker

import (
	"regexp"
	"strings"
)

const (
	// MaskDelimiter wraps every placeholder on both sides.
	MaskDelimiter = "~"

	// TildeSubstitute stands in for literal tildes found in source text so
	// they cannot be mistaken for placeholder delimiters.
	TildeSubstitute = "\u223C"
)

// Delimiters is the fixed priority order used to re-split a word. Only the
// first delimiter contained in a word is applied at each level.
var Delimiters = []string{
	"\n", "\r", "\t", "/", ".", "-", "(", ":", "_", ">", ",", "+", ";", ")", "\\", "\u2014",
}

// placeholderRE matches a complete placeholder token.
var placeholderRE = regexp.MustCompile(`~[^~\s]+~`)

// Split splits text on every occurrence of delim. Joining the result with
// delim reproduces text exactly; splitting "" yields [""].
func Split(text, delim string) []string {
	return strings.Split(text, delim)
}

// Join is the inverse of Split.
func Join(parts []string, delim string) string {
	return strings.Join(parts, delim)
}

// Placeholder returns the wrapped form of a mask label.
func Placeholder(label string) string {
	return MaskDelimiter + label + MaskDelimiter
}

// IsPlaceholder reports whether token is exactly one delimiter-wrapped label.
func IsPlaceholder(token string) bool {
	loc := placeholderRE.FindStringIndex(token)
	return loc != nil && loc[0] == 0 && loc[1] == len(token)
}

// EscapeTildes replaces literal tildes with TildeSubstitute.
func EscapeTildes(s string) string {
	return strings.ReplaceAll(s, MaskDelimiter, TildeSubstitute)
}

// RestoreTildes reverses EscapeTildes.
func RestoreTildes(s string) string {
	return strings.ReplaceAll(s, TildeSubstitute, MaskDelimiter)
}

// firstDelimiter returns the highest priority delimiter contained in s.
func firstDelimiter(s string) (string, bool) {
	for _, d := range Delimiters {
		if strings.Contains(s, d) {
			return d, true
		}
	}
	return "", false
}

// segmentPlaceholders cuts a word around the placeholders it contains so each
// placeholder becomes its own token, e.g. "~acct~x" -> ["~acct~", "x"].
// Words without an embedded placeholder come back unchanged as one segment.
func segmentPlaceholders(word string) []string {
	if !strings.Contains(word, MaskDelimiter) {
		return []string{word}
	}
	locs := placeholderRE.FindAllStringIndex(word, -1)
	if len(locs) == 0 {
		return []string{word}
	}
	segments := make([]string, 0, 2*len(locs)+1)
	prev := 0
	for _, loc := range locs {
		if loc[0] > prev {
			segments = append(segments, word[prev:loc[0]])
		}
		segments = append(segments, word[loc[0]:loc[1]])
		prev = loc[1]
	}
	if prev < len(word) {
		segments = append(segments, word[prev:])
	}
	return segments
}
