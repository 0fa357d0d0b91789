package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewNameIsOpaqueAndUnique(t *testing.T) {
	a, b := NewName(), NewName()
	require.NotEqual(t, a, b)
	require.True(t, strings.HasSuffix(a, ".txt"))
	require.NotContains(t, a, "/")
}

func TestPutGetOverwrite(t *testing.T) {
	c := New(t.TempDir())
	name := NewName()

	require.False(t, c.Has(name))
	_, err := c.Get(name)
	require.Error(t, err)

	require.NoError(t, c.Put(name, []byte("v1\n")))
	require.True(t, c.Has(name))
	b, err := c.Get(name)
	require.NoError(t, err)
	require.Equal(t, "v1\n", string(b))

	require.NoError(t, c.Put(name, []byte("v2\n")))
	b, err = c.Get(name)
	require.NoError(t, err)
	require.Equal(t, "v2\n", string(b))
}

func TestRemove(t *testing.T) {
	c := New(t.TempDir())
	name := NewName()
	require.NoError(t, c.Put(name, []byte("x")))
	require.NoError(t, c.Remove(name))
	require.False(t, c.Has(name))
	require.NoError(t, c.Remove(name)) // already gone is fine
}
