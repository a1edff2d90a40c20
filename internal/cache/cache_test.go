package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "builds.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestHashIsDeterministic(t *testing.T) {
	a := Hash("let x = 1")
	b := Hash("let x = 1")
	assert.Equal(t, a, b)
}

func TestHashDiffersOnDifferentSource(t *testing.T) {
	assert.NotEqual(t, Hash("let x = 1"), Hash("let x = 2"))
}

func TestLookupMissReturnsNotOk(t *testing.T) {
	s := openTestStore(t)
	_, ok, err := s.Lookup(Hash("anything"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreThenLookupRoundTrips(t *testing.T) {
	s := openTestStore(t)
	hash := Hash("1 + 1")
	require.NoError(t, s.Store(hash, "(module)"))

	module, ok, err := s.Lookup(hash)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "(module)", module)
}

func TestStoreOverwritesPriorEntry(t *testing.T) {
	s := openTestStore(t)
	hash := Hash("1 + 1")
	require.NoError(t, s.Store(hash, "(module v1)"))
	require.NoError(t, s.Store(hash, "(module v2)"))

	module, ok, err := s.Lookup(hash)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "(module v2)", module)
}
