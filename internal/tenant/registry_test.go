package tenant

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dativo-io/masker/internal/masker"
	"github.com/dativo-io/masker/internal/testutil"
)

func TestRegistry_Get_LoadsLazily(t *testing.T) {
	r := NewRegistry(testutil.NewPropertiesDir(t))
	assert.Empty(t, r.Loaded())

	ten, err := r.Get(context.Background(), testutil.DefaultTenant)
	require.NoError(t, err)
	assert.Equal(t, testutil.DefaultTenant, ten.ID)
	assert.True(t, ten.Lexicon.Names.Has("alice"))
	assert.Equal(t, []string{"bad.com"}, ten.Lexicon.DomainSuffixes)
	assert.Equal(t, []string{testutil.DefaultTenant}, r.Loaded())

	again, err := r.Get(context.Background(), testutil.DefaultTenant)
	require.NoError(t, err)
	assert.Same(t, ten, again)
}

func TestRegistry_Get_TenantNotFound(t *testing.T) {
	r := NewRegistry(testutil.NewPropertiesDir(t))
	_, err := r.Get(context.Background(), "other")
	assert.ErrorIs(t, err, ErrTenantNotFound)
}

func TestRegistry_Get_InvalidID(t *testing.T) {
	r := NewRegistry(testutil.NewPropertiesDir(t))
	for _, id := range []string{"", "..", "a/b", "x y"} {
		_, err := r.Get(context.Background(), id)
		assert.ErrorIs(t, err, ErrInvalidTenantID, id)
	}
}

func TestRegistry_Get_MissingResource(t *testing.T) {
	dir := testutil.NewPropertiesDir(t)
	require.NoError(t, os.Remove(filepath.Join(dir, testutil.DefaultTenant, NamesFile)))

	_, err := NewRegistry(dir).Get(context.Background(), testutil.DefaultTenant)
	assert.ErrorIs(t, err, ErrMissingResource)
}

func TestRegistry_Get_Concurrent(t *testing.T) {
	r := NewRegistry(testutil.NewPropertiesDir(t))
	var wg sync.WaitGroup
	results := make([]*Tenant, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ten, err := r.Get(context.Background(), testutil.DefaultTenant)
			assert.NoError(t, err)
			results[i] = ten
		}(i)
	}
	wg.Wait()
	for _, ten := range results {
		assert.Same(t, results[0], ten)
	}
}

func TestRegistry_LoadAllAndIDs(t *testing.T) {
	dir := testutil.NewPropertiesDir(t)
	testutil.WriteTenant(t, dir, "companyB", testutil.StandardFixture())
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "broken"), 0o755))

	r := NewRegistry(dir)
	ids, err := r.IDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"broken", "companyA", "companyB"}, ids)

	err = r.LoadAll(context.Background())
	assert.ErrorIs(t, err, ErrMissingResource)
	assert.Equal(t, []string{"companyA", "companyB"}, r.Loaded())
}

func TestRegistry_Allow(t *testing.T) {
	r := NewRegistry(testutil.NewPropertiesDir(t), WithRateLimit(1))
	_, err := r.Get(context.Background(), testutil.DefaultTenant)
	require.NoError(t, err)

	// burst is two requests
	assert.NoError(t, r.Allow(testutil.DefaultTenant))
	assert.NoError(t, r.Allow(testutil.DefaultTenant))
	assert.ErrorIs(t, r.Allow(testutil.DefaultTenant), ErrRateLimitExceeded)

	unlimited := NewRegistry(testutil.NewPropertiesDir(t))
	for i := 0; i < 10; i++ {
		assert.NoError(t, unlimited.Allow(testutil.DefaultTenant))
	}
}

func TestTenant_UpdateTemplates(t *testing.T) {
	r := NewRegistry(testutil.NewPropertiesDir(t))
	ten, err := r.Get(context.Background(), testutil.DefaultTenant)
	require.NoError(t, err)

	updated, removed, errs := ten.UpdateTemplates(
		[]masker.TemplateSpec{masker.Spec(`\d{3}-\d{4}`, "phone")},
		[]string{`acct\d+`},
	)
	assert.Len(t, updated, 1)
	assert.Len(t, removed, 1)
	assert.Empty(t, errs)

	templates, maskNumbers := ten.Snapshot()
	require.Len(t, templates, 1)
	assert.Equal(t, "phone", templates[0].Label)
	assert.True(t, maskNumbers)

	doc := ten.Document()
	require.Len(t, doc.Templates, 1)
	assert.Equal(t, `\d{3}-\d{4}`, *doc.Templates[0].Template)
}

func TestTenant_SnapshotIsACopy(t *testing.T) {
	r := NewRegistry(testutil.NewPropertiesDir(t))
	ten, err := r.Get(context.Background(), testutil.DefaultTenant)
	require.NoError(t, err)

	snap, _ := ten.Snapshot()
	ten.UpdateTemplates(nil, []string{`acct\d+`})
	assert.Len(t, snap, 1)
	after, _ := ten.Snapshot()
	assert.Empty(t, after)
}
