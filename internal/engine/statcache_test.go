package engine

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatCache_HitsSkipFilesystem(t *testing.T) {
	cfs := newCountingFS(memTree(t, "/src", map[string]string{"a": "x"}))
	cache := NewStatCache(cfs, false)

	first, err := cache.Stat("/src/a")
	require.NoError(t, err)
	second, err := cache.Stat("/src/a")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, cfs.statCount("/src/a"))
	assert.Equal(t, 1, cache.Len())
}

func TestStatCache_CachesErrors(t *testing.T) {
	cfs := newCountingFS(memTree(t, "/src", nil))
	cache := NewStatCache(cfs, true)

	_, err1 := cache.Stat("/src/missing")
	require.ErrorIs(t, err1, fs.ErrNotExist)
	_, err2 := cache.Stat("/src/missing")

	assert.Equal(t, err1, err2)
	assert.Equal(t, 1, cfs.statCount("/src/missing"))
}
