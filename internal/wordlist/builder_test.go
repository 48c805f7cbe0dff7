package wordlist

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dativo-io/masker/internal/tenant"
)

func writeSources(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		DictionaryFile:     "Hello\nworld\nparis\n2nd\nfoo@bar\nice_cream\njohn\n",
		WorkspaceFile:      `{"whitelist": {"Billing": "intent", "hello": "entity"}}`,
		WebsiteFile:        `{"pricing": 3}`,
		CitiesFile:         "New York\nParis\n",
		StatesFile:         "Texas\n",
		CountriesFile:      "France.\n",
		FirstNamesFile:     "John\n",
		LastNamesFile:      "Smith\n",
		DialogNamesFile:    `{"Jordan": 1}`,
		ProfanityFile:      "darn\n",
		OverrideFile:       "world\nzebra\n_ comment\n",
		EmojiOverridesFile: `{"emoji_overrides": [{"Smile": ":)"}]}`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	return dir
}

func TestBuild(t *testing.T) {
	r, err := Build(context.Background(), writeSources(t))
	require.NoError(t, err)

	assert.Equal(t, Set{
		"hello":   FromDictionary,
		"world":   FromDictionary,
		"billing": FromWorkspace,
		"pricing": FromWebsite,
		"zebra":   FromOverride,
		":)":      "smile",
	}, r.Whitelist)
	assert.Equal(t, Set{"john": FromFirstName, "smith": FromLastName, "jordan": FromDialogName}, r.Names)
	assert.Equal(t, Set{
		"new":    FromCity,
		"york":   FromCity,
		"paris":  FromCity,
		"texas":  FromState,
		"france": FromCountry,
	}, r.Geolocations)
	assert.Equal(t, Set{"darn": FromProfanity}, r.Profanities)

	assert.Equal(t, Report{
		Whitelist:           6,
		Names:               3,
		Geolocations:        5,
		Profanities:         1,
		NamesRemoved:        1,
		GeolocationsRemoved: 1,
		Overrides:           1,
		Emojis:              1,
	}, r.Report)
}

func TestBuildSkipsMissingSources(t *testing.T) {
	r, err := Build(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, r.Whitelist)
	assert.Empty(t, r.Names)
}

func TestBuildRejectsMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, WorkspaceFile), []byte("{"), 0o600))
	_, err := Build(context.Background(), dir)
	require.Error(t, err)
}

func TestBuildIgnoresMalformedEmojiOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, EmojiOverridesFile), []byte("nope"), 0o600))
	r, err := Build(context.Background(), dir)
	require.NoError(t, err)
	assert.Zero(t, r.Report.Emojis)
}

func TestFiltered(t *testing.T) {
	for _, w := range []string{"", " ", "a@b", "HTTPS", "2nd", "mp3"} {
		assert.True(t, filtered(w), w)
	}
	for _, w := range []string{"hello", "o'clock", "a2b"} {
		assert.False(t, filtered(w), w)
	}
}

func TestSaveWritesLoadableSets(t *testing.T) {
	r, err := Build(context.Background(), writeSources(t))
	require.NoError(t, err)
	out := filepath.Join(t.TempDir(), "companyA")
	require.NoError(t, r.Save(out))

	wl, err := tenant.LoadWordSet(filepath.Join(out, tenant.WhitelistFile))
	require.NoError(t, err)
	assert.True(t, wl.Has("zebra"))
	assert.False(t, wl.Has("john"))

	names, err := tenant.LoadWordSet(filepath.Join(out, tenant.NamesFile))
	require.NoError(t, err)
	assert.True(t, names.Has("jordan"))

	for _, f := range []string{tenant.GeolocationsFile, tenant.ProfanitiesFile} {
		assert.FileExists(t, filepath.Join(out, f))
	}
}
