package masker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAcceptableURL(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		query     []string
		prefixes  []string
		suffixes  []string
		want      bool
	}{
		{name: "blocked suffix", candidate: "http://good.example.com/page", suffixes: []string{"example.com"}, want: false},
		{name: "other suffix", candidate: "http://good.example.com/page", suffixes: []string{"other.com"}, want: true},
		{name: "not a url", candidate: "good.example.com", want: false},
		{name: "scheme only", candidate: "http://", want: false},
		{name: "url referencing url", candidate: "http://a.com/?u=http://b.com", want: false},
		{name: "query string filter", candidate: "https://site.com/path?token=abc", query: []string{"token="}, want: false},
		{name: "query string clean", candidate: "https://site.com/path?page=2", query: []string{"token="}, want: true},
		{name: "blocked prefix with port", candidate: "http://localhost:8080/x", prefixes: []string{"localhost"}, want: false},
		{name: "case insensitive", candidate: "HTTPS://Good.Com", suffixes: []string{"bad.com"}, want: true},
		{name: "suffix checked on domain only", candidate: "https://good.org/bad.com", suffixes: []string{"bad.com"}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAcceptableURL(tt.candidate, tt.query, tt.prefixes, tt.suffixes))
		})
	}
}
