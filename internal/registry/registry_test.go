package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/velora-dev/dbshift/pkg/dbshift"
)

func migration(app, name string) *dbshift.Migration {
	return &dbshift.Migration{AppLabel: app, Name: name, Atomic: true}
}

func TestNew_SeedsBuiltinMigrations(t *testing.T) {
	r := New(migration("auth", "0001_initial"), migration("auth", "0002_add_profile"))

	assert.Equal(t, 2, r.Len())
	m, ok := r.Get("auth", "0001_initial")
	require.True(t, ok)
	assert.Equal(t, "0001_initial", m.Name)
}

func TestAdd_PreservesRegistrationOrder(t *testing.T) {
	r := New()
	require.NoError(t, r.Add(migration("blog", "0002_posts")))
	require.NoError(t, r.Add(migration("auth", "0001_initial")))

	all, err := r.AllMigrations()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "0002_posts", all[0].Name)
	assert.Equal(t, "0001_initial", all[1].Name)
}

func TestAdd_RejectsDuplicates(t *testing.T) {
	r := New(migration("auth", "0001_initial"))
	err := r.Add(migration("auth", "0001_initial"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestAdd_RejectsInvalidMigration(t *testing.T) {
	r := New()
	err := r.Add(&dbshift.Migration{Name: "0001_initial"})
	require.Error(t, err)
	assert.ErrorIs(t, err, dbshift.ErrInvalidConfig)
}

func TestRegistry_ConcurrentAddAndRead(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = r.Add(&dbshift.Migration{AppLabel: "app", Name: names[n], Atomic: true})
		}(i)
		go func() {
			defer wg.Done()
			_, _ = r.AllMigrations()
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, r.Len())
}

var names = []string{
	"0001_a", "0002_b", "0003_c", "0004_d", "0005_e",
	"0006_f", "0007_g", "0008_h", "0009_i", "0010_j",
}

func TestMerge_ConcatenatesInOrder(t *testing.T) {
	compiled := New(migration("auth", "0001_initial"))
	runtime := New(migration("blog", "0001_initial"))

	all, err := Merge(compiled, runtime).AllMigrations()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "auth", all[0].AppLabel)
	assert.Equal(t, "blog", all[1].AppLabel)
}

func TestMerge_RejectsCrossSourceDuplicates(t *testing.T) {
	a := New(migration("auth", "0001_initial"))
	b := New(migration("auth", "0001_initial"))

	_, err := Merge(a, b).AllMigrations()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "more than one source")
}
