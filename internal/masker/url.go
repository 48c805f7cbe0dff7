package masker

import (
	"regexp"
	"strings"
)

var schemeRE = regexp.MustCompile(`https?://`)

// IsAcceptableURL reports whether candidate references a URL whose domain is
// allowed to stay unmasked. It returns false when candidate is not a URL,
// when it references more than one URL, when its query string contains any
// of queryStringContains, or when its domain starts with one of
// domainPrefixes or ends with one of domainSuffixes. All list entries are
// expected in lower case.
func IsAcceptableURL(candidate string, queryStringContains, domainPrefixes, domainSuffixes []string) bool {
	parts := schemeRE.Split(strings.ToLower(candidate), -1)
	// trailing empty parts do not count as references
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	if len(parts) < 2 {
		return false
	}
	if len(parts) > 2 {
		// A URL embedding another URL is rejected until the nested reference
		// can be reconstructed and checked on its own.
		return false
	}

	domain := parts[1]
	slash := strings.Index(domain, "/")
	if slash != -1 && slash < len(domain)-1 {
		query := domain[slash+1:]
		for _, s := range queryStringContains {
			if strings.Contains(query, s) {
				return false
			}
		}
	}
	if cut := strings.IndexAny(domain, ":/"); cut != -1 {
		domain = domain[:cut]
	}
	for _, s := range domainSuffixes {
		if strings.HasSuffix(domain, s) {
			return false
		}
	}
	for _, p := range domainPrefixes {
		if strings.HasPrefix(domain, p) {
			return false
		}
	}
	return true
}

// looksLikeURL reports whether a lower-cased core starts a URL reference.
func looksLikeURL(lower string) bool {
	return strings.HasPrefix(lower, "http") || strings.HasPrefix(lower, "file_http")
}
