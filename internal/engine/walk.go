package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/bamsammich/kopeer/internal/filter"
	"github.com/bamsammich/kopeer/internal/fsys"
)

// WalkOptions controls which paths Walk reports.
type WalkOptions struct {
	// Filter is consulted with the relative path before the path is stat'ed.
	// A rejected directory is never listed.
	Filter func(relPath string) bool
	// Rules is consulted after the stat, when the kind and size are known.
	Rules *filter.Chain
	// OnSkip is called for special files, which are never returned.
	OnSkip func(PathEntry)
}

type walkNode struct {
	path      string
	rel       string
	ancestors []fsys.FileID // only tracked when following symlinks
}

// Walk lists every leaf below root in depth-first order, children sorted by
// name. Directories are descended into, never returned. Whether a symlink is
// a leaf or is resolved to its target follows the cache's mode.
func Walk(ctx context.Context, cache *StatCache, root string, opts WalkOptions) ([]PathEntry, error) {
	rootInfo, err := cache.Stat(root)
	if err != nil {
		return nil, err
	}
	if !rootInfo.IsDir() {
		return nil, fmt.Errorf("walk %s: %w", root, ErrExpectedDirectory)
	}

	stack, err := pushChildren(cache, nil, walkNode{path: root}, rootInfo)
	if err != nil {
		return nil, err
	}

	var entries []PathEntry
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if opts.Filter != nil && !opts.Filter(n.rel) {
			continue
		}

		info, err := cache.Stat(n.path)
		if err != nil {
			return nil, err
		}
		kind := kindOf(info)
		if !opts.Rules.Match(n.rel, kind == KindDir, info.Size()) {
			continue
		}

		entry := PathEntry{Path: n.path, RelPath: n.rel, Kind: kind, Info: info}
		switch kind {
		case KindDir:
			if stack, err = pushChildren(cache, stack, n, info); err != nil {
				return nil, err
			}
		case KindOther:
			if opts.OnSkip != nil {
				opts.OnSkip(entry)
			}
		default:
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// pushChildren pushes dir's children in reverse name order so they pop in
// name order.
func pushChildren(cache *StatCache, stack []walkNode, dir walkNode, info os.FileInfo) ([]walkNode, error) {
	ancestors := dir.ancestors
	if cache.follow {
		if id, ok := fsys.FileIDOf(info); ok {
			if slices.Contains(ancestors, id) {
				return nil, fmt.Errorf("walk %s: %w", dir.path, ErrCycle)
			}
			ancestors = append(slices.Clip(ancestors), id)
		}
	}

	names, err := cache.fs.ReadDirNames(dir.path)
	if err != nil {
		return nil, err
	}
	for i := len(names) - 1; i >= 0; i-- {
		stack = append(stack, walkNode{
			path:      filepath.Join(dir.path, names[i]),
			rel:       filepath.Join(dir.rel, names[i]),
			ancestors: ancestors,
		})
	}
	return stack, nil
}
