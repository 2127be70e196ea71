package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bamsammich/kopeer/internal/fsys"
)

const (
	dirPerm = 0o755
	// maxMkdirAttempts bounds retries when an ancestor disappears mid-creation.
	maxMkdirAttempts = 10
)

// EnsureDir creates dir and every missing ancestor, one prefix at a time from
// the root down. An existing prefix counts as created. A prefix that fails
// with not-exist restarts the fold from the root, at most maxMkdirAttempts
// times. It is safe to call concurrently for paths sharing prefixes.
func EnsureDir(ctx context.Context, vfs fsys.FS, dir string) error {
	prefixes := dirPrefixes(dir)

	var lastErr error
	for attempt := 1; attempt <= maxMkdirAttempts; attempt++ {
		lastErr = mkdirPrefixes(ctx, vfs, prefixes)
		if lastErr == nil || !errors.Is(lastErr, fs.ErrNotExist) {
			return lastErr
		}
	}
	return fmt.Errorf("mkdir %s: gave up after %d attempts: %w", dir, maxMkdirAttempts, lastErr)
}

func mkdirPrefixes(ctx context.Context, vfs fsys.FS, prefixes []string) error {
	for _, p := range prefixes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := vfs.Mkdir(p, dirPerm); err != nil && !errors.Is(err, fs.ErrExist) {
			return err
		}
	}
	return nil
}

// dirPrefixes returns every ancestor-or-self of dir below the filesystem
// root, shortest first: /a/b/c yields /a, /a/b, /a/b/c.
func dirPrefixes(dir string) []string {
	dir = filepath.Clean(dir)
	vol := filepath.VolumeName(dir)
	rest := dir[len(vol):]

	cur := vol
	if strings.HasPrefix(rest, string(filepath.Separator)) {
		cur += string(filepath.Separator)
	}

	var prefixes []string
	for _, seg := range strings.Split(rest, string(filepath.Separator)) {
		if seg == "" || seg == "." {
			continue
		}
		cur = filepath.Join(cur, seg)
		prefixes = append(prefixes, cur)
	}
	return prefixes
}
