package masker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitJoinLossless(t *testing.T) {
	texts := []string{"", "a b", " a ", "a  b", "\n", "x/y/", "one\ttwo\tthree", "trailing.", "—lead"}
	delims := append([]string{" "}, Delimiters...)
	for _, text := range texts {
		for _, d := range delims {
			assert.Equal(t, text, Join(Split(text, d), d), "text %q delim %q", text, d)
		}
	}
}

func TestSplitEdges(t *testing.T) {
	assert.Equal(t, []string{""}, Split("", " "))
	assert.Equal(t, []string{"", "a"}, Split(" a", " "))
	assert.Equal(t, []string{"a", "", "b"}, Split("a  b", " "))
	assert.Equal(t, []string{"a", ""}, Split("a.", "."))
}

func TestIsPlaceholder(t *testing.T) {
	tests := []struct {
		token string
		want  bool
	}{
		{"~name~", true},
		{"~acct_no~", true},
		{"~name~x", false},
		{"x~name~", false},
		{"~~", false},
		{"~a b~", false},
		{"name", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsPlaceholder(tt.token), tt.token)
	}
}

func TestSegmentPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"~acct~", "x"}, segmentPlaceholders("~acct~x"))
	assert.Equal(t, []string{"(", "~name~", ")"}, segmentPlaceholders("(~name~)"))
	assert.Equal(t, []string{"~x~", "~y~"}, segmentPlaceholders("~x~~y~"))
	assert.Equal(t, []string{"plain"}, segmentPlaceholders("plain"))
}

func TestTildeEscaping(t *testing.T) {
	escaped := EscapeTildes("a~b~c")
	assert.NotContains(t, escaped, MaskDelimiter)
	assert.Equal(t, "a~b~c", RestoreTildes(escaped))
}

func TestFirstDelimiterPriority(t *testing.T) {
	d, ok := firstDelimiter("host:8080.local")
	assert.True(t, ok)
	assert.Equal(t, ".", d, "period outranks colon")

	d, ok = firstDelimiter("a-b/c")
	assert.True(t, ok)
	assert.Equal(t, "/", d)

	_, ok = firstDelimiter("plain")
	assert.False(t, ok)
}
