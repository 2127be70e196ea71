// Package ui renders copy progress and the completion summary.
package ui

import (
	"io"
	"os"

	"golang.org/x/term"

	"github.com/bamsammich/kopeer/internal/stats"
)

// Presenter consumes events and displays progress.
type Presenter interface {
	// Run consumes events until the channel closes. Blocks until done.
	Run(events <-chan Event) error
	// Summary returns the final summary line.
	Summary() string
}

// Config configures a Presenter.
type Config struct {
	Writer    io.Writer
	ErrWriter io.Writer
	Stats     *stats.Collector
	DstRoot   string
	Theme     Theme
	IsTTY     bool
	Quiet     bool
	Verbose   bool
}

// NewPresenter creates the presenter matching cfg.
//
//nolint:ireturn // factory function returns interface by design
func NewPresenter(cfg Config) Presenter {
	if cfg.Quiet {
		return &quietPresenter{}
	}
	p := &plainPresenter{
		w:       cfg.Writer,
		errW:    cfg.ErrWriter,
		stats:   cfg.Stats,
		dstRoot: cfg.DstRoot,
		verbose: cfg.Verbose,
	}
	if cfg.IsTTY {
		p.theme = &cfg.Theme
	}
	return p
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
