package filter

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// compiledPattern is a validated doublestar glob plus the rsync-style
// anchoring and directory-only flags taken from its slashes.
type compiledPattern struct {
	glob     string
	original string
	anchored bool // leading / or an inner /: matched against the whole relative path
	dirOnly  bool // trailing /
}

func compilePattern(pattern string) (*compiledPattern, error) {
	cp := &compiledPattern{original: pattern}

	if strings.HasSuffix(pattern, "/") {
		cp.dirOnly = true
		pattern = strings.TrimSuffix(pattern, "/")
	}

	if strings.HasPrefix(pattern, "/") {
		cp.anchored = true
		pattern = strings.TrimPrefix(pattern, "/")
	} else if strings.Contains(pattern, "/") {
		cp.anchored = true
	}

	if pattern == "" {
		return nil, fmt.Errorf("empty pattern %q", cp.original)
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("pattern %q: %w", cp.original, doublestar.ErrBadPattern)
	}
	cp.glob = pattern
	return cp, nil
}

// match tests relPath, which may use the host separator. Unanchored patterns
// are tried against the base name, so they apply at any depth.
func (cp *compiledPattern) match(relPath string, isDir bool) bool {
	if cp.dirOnly && !isDir {
		return false
	}
	relPath = filepath.ToSlash(relPath)
	if !cp.anchored {
		relPath = path.Base(relPath)
	}
	ok, err := doublestar.Match(cp.glob, relPath)
	return err == nil && ok
}

func (cp *compiledPattern) String() string {
	return cp.original
}
