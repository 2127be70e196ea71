// Package engine copies files, symlinks and directory trees with a bounded
// number of simultaneous filesystem operations.
//
// A directory copy runs in three steps: walk the source, create every
// destination directory, then write every file and symlink. Directory
// creation completes before the first write starts. Nothing is rolled back
// when a step fails.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/bamsammich/kopeer/internal/event"
	"github.com/bamsammich/kopeer/internal/filter"
	"github.com/bamsammich/kopeer/internal/fsys"
	"github.com/bamsammich/kopeer/internal/pool"
	"github.com/bamsammich/kopeer/internal/stats"
)

// DefaultLimit is the concurrency ceiling used when Options.Limit is zero.
const DefaultLimit = pool.DefaultLimit

// Options describes one copy operation.
type Options struct {
	// Limit caps simultaneous filesystem operations per phase. Zero means
	// DefaultLimit.
	Limit int
	// Dereference copies what symlinks point to instead of the links.
	Dereference bool
	// Filter receives each path relative to the source root before it is
	// stat'ed. Returning false skips it, and a skipped directory's subtree.
	Filter func(relPath string) bool
	// Rename maps each resolved destination path to the one actually written.
	Rename func(dst string) string
	// Ignore lists glob patterns excluded from a directory copy. Patterns
	// without a slash match base names at any depth.
	Ignore []string
	// Rules is an ordered include/exclude chain applied after Ignore.
	Rules *filter.Chain
	// Verify re-reads every copied file and compares BLAKE3 digests.
	Verify bool
	// BWLimit caps aggregate read throughput in bytes per second. Zero
	// means unlimited.
	BWLimit int64

	FS     fsys.FS
	Events chan<- event.Event
	// Stats receives the operation's counters. Nil means a fresh collector.
	Stats  *stats.Collector
	Logger *slog.Logger
}

func (o Options) withDefaults() (Options, error) {
	switch {
	case o.Limit < 0:
		return o, fmt.Errorf("limit must be at least 1, got %d", o.Limit)
	case o.Limit == 0:
		o.Limit = DefaultLimit
	}
	if o.BWLimit < 0 {
		return o, fmt.Errorf("bandwidth limit must not be negative, got %d", o.BWLimit)
	}
	if o.FS == nil {
		o.FS = fsys.NewOS()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Rename == nil {
		o.Rename = func(dst string) string { return dst }
	}
	if o.Stats == nil {
		o.Stats = stats.NewCollector()
	}
	return o, nil
}

// Result is the outcome of a copy operation.
type Result struct {
	Stats stats.Snapshot
	Err   error
}

// Copy copies src to dst, as a directory tree when src is a directory and
// as a single file or symlink otherwise.
func Copy(ctx context.Context, src, dst string, opts Options) Result {
	return run(ctx, opts, func(op *operation) error {
		abs, err := filepath.Abs(src)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", src, err)
		}
		info, err := op.cache.Stat(abs)
		if err != nil {
			return err
		}
		if info.IsDir() {
			return op.copyDirectory(ctx, abs, dst)
		}
		return op.copyFile(ctx, abs, dst)
	})
}

// CopyFile copies a single file or symlink. A dst ending in a path separator
// names a directory: the copy is written to dst/<base of src>.
func CopyFile(ctx context.Context, src, dst string, opts Options) Result {
	return run(ctx, opts, func(op *operation) error {
		return op.copyFile(ctx, src, dst)
	})
}

// CopyDirectory copies the tree rooted at src into dst.
func CopyDirectory(ctx context.Context, src, dst string, opts Options) Result {
	return run(ctx, opts, func(op *operation) error {
		return op.copyDirectory(ctx, src, dst)
	})
}

// operation is the state shared by every phase of one top-level call.
type operation struct {
	opts    Options
	fs      fsys.FS
	cache   *StatCache
	rules   *filter.Chain
	limiter *rate.Limiter
	stats   *stats.Collector
	logger  *slog.Logger
}

func run(ctx context.Context, opts Options, fn func(*operation) error) Result {
	op, err := newOperation(opts)
	if err != nil {
		return Result{Err: err}
	}
	err = fn(op)
	if err != nil {
		op.logger.Debug("copy failed", "error", err)
	}
	return Result{Stats: op.stats.Snapshot(), Err: err}
}

func newOperation(opts Options) (*operation, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	rules, err := filter.Ignore(opts.Ignore...)
	if err != nil {
		return nil, fmt.Errorf("ignore: %w", err)
	}
	rules.Extend(opts.Rules)

	op := &operation{
		opts:   opts,
		fs:     opts.FS,
		cache:  NewStatCache(opts.FS, opts.Dereference),
		rules:  rules,
		stats:  opts.Stats,
		logger: opts.Logger.With("op", uuid.NewString()),
	}
	if opts.BWLimit > 0 {
		op.limiter = NewBWLimiter(opts.BWLimit)
	}
	return op, nil
}

func (op *operation) copyFile(ctx context.Context, src, dst string) error {
	// a trailing separator is lost once dst is cleaned
	if strings.HasSuffix(dst, string(filepath.Separator)) || strings.HasSuffix(dst, "/") {
		dst = filepath.Join(dst, filepath.Base(src))
	}
	src, dst, err := absPaths(src, dst)
	if err != nil {
		return err
	}

	info, err := op.cache.Stat(src)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("copy %s: %w", src, ErrExpectedFile)
	}

	entry := PathEntry{Path: src, RelPath: filepath.Base(src), Kind: kindOf(info), Info: info}
	if entry.Kind == KindOther {
		return fmt.Errorf("copy %s: %s: %w", src, info.Mode().Type(), errors.ErrUnsupported)
	}

	if err := EnsureDir(ctx, op.fs, filepath.Dir(dst)); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	m := Mapping{Source: entry, Dst: dst}
	if _, err := pool.Throttled(ctx, []Mapping{m}, 1, op.copyEntry, pool.WithLogger(op.logger)); err != nil {
		return err
	}
	return op.verify(ctx, []Mapping{m})
}

func (op *operation) copyDirectory(ctx context.Context, src, dst string) error {
	src, dst, err := absPaths(src, dst)
	if err != nil {
		return err
	}

	info, err := op.cache.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("copy %s: %w", src, ErrExpectedDirectory)
	}

	op.logger.Debug("walking source", "src", src, "dereference", op.opts.Dereference)
	emitEvent(op.opts.Events, event.Event{Type: event.WalkStarted, Path: src})
	entries, err := Walk(ctx, op.cache, src, WalkOptions{
		Filter: op.opts.Filter,
		Rules:  op.rules,
		OnSkip: op.skip,
	})
	if err != nil {
		return fmt.Errorf("walk source: %w", err)
	}

	mappings, dirs := op.plan(entries, dst)

	op.logger.Debug("creating directories", "count", len(dirs))
	if _, err := pool.Chunked(ctx, dirs, op.opts.Limit, op.ensureDir, pool.WithLogger(op.logger)); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}

	op.logger.Debug("writing files", "count", len(mappings), "limit", op.opts.Limit)
	if _, err := pool.Throttled(ctx, mappings, op.opts.Limit, op.copyEntry, pool.WithLogger(op.logger)); err != nil {
		return fmt.Errorf("write files: %w", err)
	}

	return op.verify(ctx, mappings)
}

// absPaths resolves src and dst against the working directory. Cache keys,
// walk entries and the paths handed to Rename are all absolute.
func absPaths(src, dst string) (string, string, error) {
	absSrc, err := filepath.Abs(src)
	if err != nil {
		return "", "", fmt.Errorf("resolve %s: %w", src, err)
	}
	absDst, err := filepath.Abs(dst)
	if err != nil {
		return "", "", fmt.Errorf("resolve %s: %w", dst, err)
	}
	return absSrc, absDst, nil
}

// plan applies Rename to every entry and returns the mappings plus the
// distinct directories they need: dst itself and each mapping's parent, in
// first-seen order.
func (op *operation) plan(entries []PathEntry, dst string) ([]Mapping, []string) {
	mappings := make([]Mapping, len(entries))
	dirs := []string{dst}
	seen := map[string]bool{dst: true}
	var totalSize int64

	for i, e := range entries {
		m := Mapping{Source: e, Dst: op.opts.Rename(filepath.Join(dst, e.RelPath))}
		mappings[i] = m
		if e.Kind == KindFile {
			totalSize += e.Info.Size()
		}
		if parent := filepath.Dir(m.Dst); !seen[parent] {
			seen[parent] = true
			dirs = append(dirs, parent)
		}
	}

	op.stats.SetTotals(int64(len(mappings)), totalSize)
	emitEvent(op.opts.Events, event.Event{
		Type:      event.WalkComplete,
		Total:     int64(len(mappings)),
		TotalSize: totalSize,
	})
	return mappings, dirs
}

func (op *operation) ensureDir(ctx context.Context, dir string) (string, error) {
	if err := EnsureDir(ctx, op.fs, dir); err != nil {
		return "", err
	}
	op.stats.AddDirsCreated(1)
	emitEvent(op.opts.Events, event.Event{Type: event.DirCreated, Path: dir})
	return dir, nil
}

// copyEntry copies one mapping. With Dereference the cache never reports
// symlinks, so links are only recreated as links when not dereferencing.
func (op *operation) copyEntry(ctx context.Context, m Mapping) (Mapping, error) {
	switch m.Source.Kind {
	case KindSymlink:
		if err := copyLink(op.fs, m.Source.Path, m.Dst); err != nil {
			return m, op.failed(m, err)
		}
		op.stats.AddLinksCreated(1)
		emitEvent(op.opts.Events, event.Event{Type: event.LinkCreated, Path: m.Source.RelPath})
	default:
		n, err := copyFile(ctx, op.fs, m.Source.Path, m.Dst, m.Source.Info, op.limiter)
		if err != nil {
			return m, op.failed(m, err)
		}
		op.stats.AddFilesCopied(1)
		op.stats.AddBytesCopied(n)
		emitEvent(op.opts.Events, event.Event{Type: event.FileCompleted, Path: m.Source.RelPath, Size: n})
	}
	return m, nil
}

// failed records err unless the mapper is going to retry it.
func (op *operation) failed(m Mapping, err error) error {
	if pool.IsTransient(err) {
		return err
	}
	op.stats.AddFilesFailed(1)
	emitEvent(op.opts.Events, event.Event{Type: event.FileFailed, Path: m.Source.RelPath, Error: err})
	return err
}

func (op *operation) skip(e PathEntry) {
	op.logger.Debug("skipping special file", "path", e.Path, "mode", e.Info.Mode().String())
	op.stats.AddFilesSkipped(1)
	emitEvent(op.opts.Events, event.Event{Type: event.FileSkipped, Path: e.RelPath})
}

func (op *operation) verify(ctx context.Context, mappings []Mapping) error {
	if !op.opts.Verify {
		return nil
	}
	op.logger.Debug("verifying", "count", len(mappings))
	res, err := Verify(ctx, VerifyConfig{
		FS:     op.fs,
		Limit:  op.opts.Limit,
		Events: op.opts.Events,
		Stats:  op.stats,
		Logger: op.logger,
	}, mappings)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	if res.Failed > 0 {
		return fmt.Errorf("%w: %d file(s) differ, first %w", ErrVerify, res.Failed, res.Errors[0])
	}
	return nil
}
