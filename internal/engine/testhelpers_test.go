package engine

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/kopeer/internal/fsys"
)

// memTree returns an in-memory filesystem holding files (relative path to
// content) below root.
func memTree(t *testing.T, root string, files map[string]string) *fsys.Afero {
	t.Helper()
	mfs := afero.NewMemMapFs()
	require.NoError(t, mfs.MkdirAll(root, 0o755))
	for rel, content := range files {
		p := filepath.Join(root, rel)
		require.NoError(t, mfs.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, afero.WriteFile(mfs, p, []byte(content), 0o644))
	}
	return fsys.New(mfs)
}

// countingFS records how often each path is stat'ed or listed.
type countingFS struct {
	fsys.FS

	mu      sync.Mutex
	stats   map[string]int
	readdir map[string]int
}

func newCountingFS(inner fsys.FS) *countingFS {
	return &countingFS{FS: inner, stats: map[string]int{}, readdir: map[string]int{}}
}

func (c *countingFS) Stat(name string) (os.FileInfo, error) {
	c.bump(c.stats, name)
	return c.FS.Stat(name)
}

func (c *countingFS) Lstat(name string) (os.FileInfo, error) {
	c.bump(c.stats, name)
	return c.FS.Lstat(name)
}

func (c *countingFS) ReadDirNames(name string) ([]string, error) {
	c.bump(c.readdir, name)
	return c.FS.ReadDirNames(name)
}

func (c *countingFS) bump(m map[string]int, name string) {
	c.mu.Lock()
	m[name]++
	c.mu.Unlock()
}

func (c *countingFS) statCount(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats[name]
}

func (c *countingFS) readdirCount(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readdir[name]
}

// faultFS injects errors into selected calls. A nil hook, or a hook returning
// nil, passes the call through.
type faultFS struct {
	fsys.FS

	mkdir    func(name string) error
	openFile func(name string) error
	// redirect makes Open read a different path.
	redirect map[string]string
}

func (f *faultFS) Mkdir(name string, perm os.FileMode) error {
	if f.mkdir != nil {
		if err := f.mkdir(name); err != nil {
			return err
		}
	}
	return f.FS.Mkdir(name, perm)
}

func (f *faultFS) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if f.openFile != nil {
		if err := f.openFile(name); err != nil {
			return nil, err
		}
	}
	return f.FS.OpenFile(name, flag, perm)
}

func (f *faultFS) Open(name string) (afero.File, error) {
	if to, ok := f.redirect[name]; ok {
		name = to
	}
	return f.FS.Open(name)
}

func readMem(t *testing.T, vfs fsys.FS, path string) string {
	t.Helper()
	f, err := vfs.Open(path)
	require.NoError(t, err)
	defer f.Close()
	data, err := afero.ReadAll(f)
	require.NoError(t, err)
	return string(data)
}
