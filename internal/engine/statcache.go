package engine

import (
	"os"
	"sync"

	"github.com/bamsammich/kopeer/internal/fsys"
)

type statResult struct {
	info os.FileInfo
	err  error
}

// StatCache memoizes path status lookups for one top-level operation.
// Failed lookups are cached as well and re-surface the same error.
// Concurrent first lookups of one path may both reach the filesystem.
type StatCache struct {
	fs     fsys.FS
	follow bool

	mu      sync.Mutex
	entries map[string]statResult
}

// NewStatCache returns a cache that uses Stat when follow is set and Lstat
// otherwise.
func NewStatCache(fs fsys.FS, follow bool) *StatCache {
	return &StatCache{fs: fs, follow: follow, entries: make(map[string]statResult)}
}

// Stat returns the cached status of path, looking it up on first use.
func (c *StatCache) Stat(path string) (os.FileInfo, error) {
	c.mu.Lock()
	r, ok := c.entries[path]
	c.mu.Unlock()
	if ok {
		return r.info, r.err
	}

	if c.follow {
		r.info, r.err = c.fs.Stat(path)
	} else {
		r.info, r.err = c.fs.Lstat(path)
	}

	c.mu.Lock()
	c.entries[path] = r
	c.mu.Unlock()
	return r.info, r.err
}

// Len returns the number of cached paths.
func (c *StatCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
