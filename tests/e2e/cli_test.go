//go:build e2e

package e2e

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dativo-io/masker/internal/testutil"
)

func TestE2E_InitAndValidate(t *testing.T) {
	dir := t.TempDir()
	stdout, stderr, code := RunMasker(t, dir, "", "init", "acme")
	require.Zero(t, code, "init failed: %s", stderr)
	assert.Contains(t, stdout, "Created tenant acme")

	stdout, stderr, code = RunMasker(t, dir, "", "validate", "acme")
	require.Zero(t, code, "validate failed: %s", stderr)
	assert.Contains(t, stdout, "✓ acme")
}

func TestE2E_ValidateMissingTenant(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "properties"), 0o755))
	_, _, code := RunMasker(t, dir, "", "validate", "ghost")
	assert.NotZero(t, code)
}

func TestE2E_TextFromStdin(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTenant(t, filepath.Join(dir, "properties"), testutil.DefaultTenant, testutil.StandardFixture())

	stdout, stderr, code := RunMasker(t, dir, "Hi my name is Alice\nI live in Boston\n", "text")
	require.Zero(t, code, "text failed: %s", stderr)
	assert.Equal(t, []string{"Hi my name is ~name~", "I live in ~geo~"}, strings.Split(strings.TrimSpace(stdout), "\n"))
}

func TestE2E_MaskDirectory(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTenant(t, filepath.Join(dir, "properties"), testutil.DefaultTenant, testutil.StandardFixture())
	in := filepath.Join(dir, "Dialogs")
	require.NoError(t, os.MkdirAll(in, 0o755))
	testutil.WriteDialogFile(t, in, "export_2020-01-15.json", 5)

	stdout, stderr, code := RunMasker(t, dir, "", "mask")
	require.Zero(t, code, "mask failed: %s", stderr)
	assert.Contains(t, stdout, "1 written")
	assert.FileExists(t, filepath.Join(dir, "Masked", "export_2020-01-15.json"))
	assert.FileExists(t, filepath.Join(dir, "Masked", "blacklist.txt"))
}
