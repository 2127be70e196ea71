package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/bamsammich/kopeer/internal/stats"
)

const progressInterval = 5 * time.Second

// plainPresenter prints one line per finished entry to w and a periodic
// progress line to errW.
type plainPresenter struct {
	w       io.Writer
	errW    io.Writer
	stats   *stats.Collector
	theme   *Theme // nil: no styling
	dstRoot string
	verbose bool
}

func (p *plainPresenter) Run(events <-chan Event) error {
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if line, ok := p.line(ev); ok {
				fmt.Fprintln(p.w, line)
			}
		case <-ticker.C:
			p.printProgress()
		}
	}
}

// line renders ev, or reports false for events that only feed the counters.
func (p *plainPresenter) line(ev Event) (string, bool) {
	rel := StripRoot(p.dstRoot, ev.Path)
	switch ev.Type {
	case FileCompleted:
		return rel + "  " + size(ev.Size), true
	case LinkCreated:
		return rel + "  symlink", true
	case DirCreated:
		return "mkdir " + rel, p.verbose
	case FileSkipped:
		return rel + "  skipped", true
	case FileFailed:
		reason := "error"
		if ev.Error != nil {
			reason = ev.Error.Error()
		}
		return rel + "  " + reason, true
	case VerifyStarted:
		return "verifying...", true
	case VerifyFailed:
		return "MISMATCH: " + rel, true
	default:
		return "", false
	}
}

func (p *plainPresenter) printProgress() {
	if p.stats == nil || p.errW == nil {
		return
	}
	snap := p.stats.Snapshot()
	done := snap.FilesCopied + snap.LinksCreated
	if snap.BytesTotal == 0 {
		fmt.Fprintf(p.errW, "progress: %s copied %s files\n", size(snap.BytesCopied), count(done))
		return
	}
	rate := averageRate(snap)
	fmt.Fprintf(p.errW, "progress: %.0f%% %s/%s %s/%s files %s eta %s\n",
		float64(snap.BytesCopied)/float64(snap.BytesTotal)*100,
		size(snap.BytesCopied), size(snap.BytesTotal),
		count(done), count(snap.FilesTotal),
		throughput(rate),
		eta(snap.BytesTotal-snap.BytesCopied, rate),
	)
}

func (p *plainPresenter) Summary() string {
	if p.stats == nil {
		return ""
	}
	snap := p.stats.Snapshot()
	if p.theme != nil {
		return styledSummary(snap, *p.theme)
	}
	return completionSummary(snap)
}

// StripRoot returns path relative to root when path lies below it.
func StripRoot(root, path string) string {
	if root == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}
