package tenant

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dativo-io/masker/internal/masker"
	"github.com/dativo-io/masker/internal/testutil"
)

func TestLoadTextList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.txt")
	require.NoError(t, os.WriteFile(path, []byte("_ comment\nBad.COM\n\n  spaced.org  \n_ignored\n"), 0o600))

	list, err := LoadTextList(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"bad.com", "spaced.org"}, list)
}

func TestLoadWordSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "names.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Alice":"first_name","smith":"last_name"}`), 0o600))

	set, err := LoadWordSet(path)
	require.NoError(t, err)
	assert.True(t, set.Has("alice"))
	assert.True(t, set.Has("smith"))
	assert.Len(t, set, 2)

	_, err = LoadWordSet(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, ErrMissingResource)
}

func TestLoadWordSet_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`["not","an","object"]`), 0o600))
	_, err := LoadWordSet(path)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissingResource)
}

func TestLoadTemplateDocument_YAML(t *testing.T) {
	dir := t.TempDir()
	yamlDoc := `maskNumbers: false
templates:
  - template: 'acct\d+'
    mask: acct
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, TemplatesYAMLFile), []byte(yamlDoc), 0o600))

	doc, err := LoadTemplateDocument(dir)
	require.NoError(t, err)
	require.NotNil(t, doc.MaskNumbers)
	assert.False(t, *doc.MaskNumbers)
	require.Len(t, doc.Templates, 1)
	assert.Equal(t, `acct\d+`, *doc.Templates[0].Template)
}

func TestLoadTemplateDocument_Missing(t *testing.T) {
	_, err := LoadTemplateDocument(t.TempDir())
	assert.ErrorIs(t, err, ErrMissingResource)
}

func TestLoad_SkipsBadTemplates(t *testing.T) {
	props := t.TempDir()
	f := testutil.StandardFixture()
	f.MaskNumbers = false
	f.Templates = append(f.Templates, testutil.Template{Template: "(", Mask: "paren"}, testutil.Template{Template: "x", Mask: "~~"})
	dir := testutil.WriteTenant(t, props, "t1", f)

	ten, errs, err := Load("t1", dir)
	require.NoError(t, err)
	assert.Len(t, errs, 2)
	for _, e := range errs {
		assert.Equal(t, masker.CodePattern, e.Code)
	}
	templates, maskNumbers := ten.Snapshot()
	assert.Len(t, templates, 1)
	assert.False(t, maskNumbers)
}

func TestSaveTemplateDocument_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	yes := true
	doc := &TemplateDocument{MaskNumbers: &yes, Templates: []masker.TemplateSpec{masker.Spec("a+", "as")}}
	require.NoError(t, SaveTemplateDocument(dir, doc))

	got, err := LoadTemplateDocument(dir)
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}
