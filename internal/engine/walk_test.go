package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/kopeer/internal/filter"
	"github.com/bamsammich/kopeer/internal/fsys"
)

func relPaths(entries []PathEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = filepath.ToSlash(e.RelPath)
	}
	return out
}

var walkFixture = map[string]string{
	"a":           "x",
	"dir/bar":     "y",
	"dir/sub/baz": "z",
	"skip/x":      "w",
}

func TestWalk_DepthFirstSorted(t *testing.T) {
	cache := NewStatCache(memTree(t, "/src", walkFixture), false)

	entries, err := Walk(context.Background(), cache, "/src", WalkOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "dir/bar", "dir/sub/baz", "skip/x"}, relPaths(entries))
	for _, e := range entries {
		assert.Equal(t, KindFile, e.Kind)
		assert.Equal(t, filepath.Join("/src", e.RelPath), e.Path)
	}
}

func TestWalk_FilterPrunesSubtree(t *testing.T) {
	cfs := newCountingFS(memTree(t, "/src", walkFixture))
	cache := NewStatCache(cfs, false)

	var mu sync.Mutex
	var seen []string
	entries, err := Walk(context.Background(), cache, "/src", WalkOptions{
		Filter: func(rel string) bool {
			mu.Lock()
			seen = append(seen, filepath.ToSlash(rel))
			mu.Unlock()
			return rel != "skip"
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "dir/bar", "dir/sub/baz"}, relPaths(entries))
	assert.NotContains(t, seen, "skip/x")
	assert.Zero(t, cfs.readdirCount("/src/skip"), "rejected directory must not be listed")
	assert.Zero(t, cfs.statCount("/src/skip"), "filter runs before stat")
}

func TestWalk_FilterOnLeafName(t *testing.T) {
	cache := NewStatCache(memTree(t, "/src", map[string]string{"a": "x", "dir/bar": "y"}), false)

	entries, err := Walk(context.Background(), cache, "/src", WalkOptions{
		Filter: func(rel string) bool { return !strings.HasSuffix(rel, "a") },
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"dir/bar"}, relPaths(entries))
}

func TestWalk_Rules(t *testing.T) {
	rules, err := filter.Ignore("**/*a", "sub/")
	require.NoError(t, err)
	cache := NewStatCache(memTree(t, "/src", map[string]string{
		"a":           "x",
		"dir/bar":     "y",
		"dir/sub/baz": "z",
		"dir/data":    "q",
	}), false)

	entries, err := Walk(context.Background(), cache, "/src", WalkOptions{Rules: rules})
	require.NoError(t, err)
	assert.Equal(t, []string{"dir/bar"}, relPaths(entries))
}

func TestWalk_RootMustBeDirectory(t *testing.T) {
	cache := NewStatCache(memTree(t, "/src", map[string]string{"a": "x"}), false)

	_, err := Walk(context.Background(), cache, "/src/a", WalkOptions{})
	require.ErrorIs(t, err, ErrExpectedDirectory)
}

func TestWalk_MissingRoot(t *testing.T) {
	cache := NewStatCache(memTree(t, "/src", nil), false)

	_, err := Walk(context.Background(), cache, "/nope", WalkOptions{})
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestWalk_Cancelled(t *testing.T) {
	cache := NewStatCache(memTree(t, "/src", walkFixture), false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Walk(ctx, cache, "/src", WalkOptions{})
	require.ErrorIs(t, err, context.Canceled)
}

// symlinkTree builds, on the host filesystem:
//
//	file.txt
//	dir/inner.txt
//	filelink -> file.txt
//	dirlink  -> dir
func symlinkTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "dir"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "file.txt"), []byte("file"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "dir", "inner.txt"), []byte("inner"), 0o644))
	require.NoError(t, os.Symlink("file.txt", filepath.Join(root, "filelink")))
	require.NoError(t, os.Symlink("dir", filepath.Join(root, "dirlink")))
	return root
}

func TestWalk_SymlinksAreLeaves(t *testing.T) {
	root := symlinkTree(t)
	cache := NewStatCache(fsys.NewOS(), false)

	entries, err := Walk(context.Background(), cache, root, WalkOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"dir/inner.txt", "dirlink", "file.txt", "filelink"}, relPaths(entries))
	assert.Equal(t, KindSymlink, entries[1].Kind)
	assert.Equal(t, KindSymlink, entries[3].Kind)
}

func TestWalk_DereferenceFollowsLinks(t *testing.T) {
	root := symlinkTree(t)
	cache := NewStatCache(fsys.NewOS(), true)

	entries, err := Walk(context.Background(), cache, root, WalkOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"dir/inner.txt", "dirlink/inner.txt", "file.txt", "filelink"}, relPaths(entries))
	for _, e := range entries {
		assert.Equal(t, KindFile, e.Kind, e.RelPath)
	}
}

func TestWalk_DereferenceCycle(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "dir"), 0o755))
	require.NoError(t, os.Symlink("..", filepath.Join(root, "dir", "loop")))

	_, err := Walk(context.Background(), NewStatCache(fsys.NewOS(), true), root, WalkOptions{})
	require.ErrorIs(t, err, ErrCycle)

	entries, err := Walk(context.Background(), NewStatCache(fsys.NewOS(), false), root, WalkOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"dir/loop"}, relPaths(entries))
}
