package kopeer

import (
	"context"

	"github.com/spf13/afero"

	"github.com/bamsammich/kopeer/internal/engine"
	"github.com/bamsammich/kopeer/internal/event"
	"github.com/bamsammich/kopeer/internal/filter"
	"github.com/bamsammich/kopeer/internal/fsys"
	"github.com/bamsammich/kopeer/internal/stats"
)

type (
	// Options configures one copy operation. The zero value copies with
	// DefaultLimit concurrent operations on the host filesystem.
	Options = engine.Options
	// FS is the filesystem capability the copy runs against.
	FS = fsys.FS
	// Rules is an ordered include/exclude chain for Options.Rules.
	Rules = filter.Chain
	// Event reports progress on Options.Events.
	Event = event.Event
	// EventType identifies an Event.
	EventType = event.Type
	// Collector accumulates counters when set as Options.Stats.
	Collector = stats.Collector
	// Stats is a point-in-time copy of a Collector's counters.
	Stats = stats.Snapshot
	// VerifyError describes a destination whose digest differs from its source.
	VerifyError = engine.VerifyError
)

const DefaultLimit = engine.DefaultLimit

var (
	ErrExpectedFile      = engine.ErrExpectedFile
	ErrExpectedDirectory = engine.ErrExpectedDirectory
	ErrCycle             = engine.ErrCycle
	ErrVerify            = engine.ErrVerify
)

// NewFS adapts an afero filesystem for Options.FS.
func NewFS(fs afero.Fs) FS {
	return fsys.New(fs)
}

// NewRules returns an empty rule chain.
func NewRules() *Rules {
	return filter.NewChain()
}

// NewCollector returns a collector to share through Options.Stats.
func NewCollector() *Collector {
	return stats.NewCollector()
}

// Copy copies src to dst, recursing when src is a directory.
func Copy(ctx context.Context, src, dst string, opts Options) error {
	return engine.Copy(ctx, src, dst, opts).Err
}

// File copies a single file or symlink. When dst ends in a path separator
// the copy is written to dst/<base of src>.
func File(ctx context.Context, src, dst string, opts Options) error {
	return engine.CopyFile(ctx, src, dst, opts).Err
}

// Directory copies the tree rooted at src into dst.
func Directory(ctx context.Context, src, dst string, opts Options) error {
	return engine.CopyDirectory(ctx, src, dst, opts).Err
}

// CopyFunc runs Copy in a new goroutine and calls done with its error.
func CopyFunc(ctx context.Context, src, dst string, opts Options, done func(error)) {
	async(done, func() error { return Copy(ctx, src, dst, opts) })
}

// FileFunc runs File in a new goroutine and calls done with its error.
func FileFunc(ctx context.Context, src, dst string, opts Options, done func(error)) {
	async(done, func() error { return File(ctx, src, dst, opts) })
}

// DirectoryFunc runs Directory in a new goroutine and calls done with its error.
func DirectoryFunc(ctx context.Context, src, dst string, opts Options, done func(error)) {
	async(done, func() error { return Directory(ctx, src, dst, opts) })
}

func async(done func(error), fn func() error) {
	go func() {
		err := fn()
		if done != nil {
			done(err)
		}
	}()
}
