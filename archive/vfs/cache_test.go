package vfs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFIFOCacheEvictsOldestOnOverflow(t *testing.T) {
	c := newFIFOCache[int, string](2)

	c.Put(1, "a")
	c.Put(2, "b")
	c.Put(3, "c") // evicts 1

	_, ok := c.Get(1)
	require.False(t, ok)

	v, ok := c.Get(2)
	require.True(t, ok)
	require.Equal(t, "b", v)

	v, ok = c.Get(3)
	require.True(t, ok)
	require.Equal(t, "c", v)
}

func TestFIFOCacheUnboundedWhenZero(t *testing.T) {
	c := newFIFOCache[int, string](0)
	for i := 0; i < 100; i++ {
		c.Put(i, "x")
	}
	_, ok := c.Get(0)
	require.True(t, ok)
}

func TestFIFOCachePutOverwritesExistingKey(t *testing.T) {
	c := newFIFOCache[int, string](2)
	c.Put(1, "a")
	c.Put(1, "b")

	v, ok := c.Get(1)
	require.True(t, ok)
	require.Equal(t, "b", v)
}

func TestReadCacheRefusesOversizedEntries(t *testing.T) {
	rc := newReadCache(10, 5)
	rc.Put(1, make([]byte, 20))

	_, ok := rc.Get(1)
	require.False(t, ok)
}

func TestReadCacheEvictsOldestOnCountOverflow(t *testing.T) {
	rc := newReadCache(1024, 2)
	rc.Put(1, []byte("a"))
	rc.Put(2, []byte("b"))
	rc.Put(3, []byte("c"))

	_, ok := rc.Get(1)
	require.False(t, ok)

	v, ok := rc.Get(3)
	require.True(t, ok)
	require.Equal(t, []byte("c"), v)
}
