package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bamsammich/kopeer/internal/event"
	"github.com/bamsammich/kopeer/internal/fsys"
	"github.com/bamsammich/kopeer/internal/pool"
	"github.com/bamsammich/kopeer/internal/stats"
)

// VerifyConfig controls the post-copy verification pass.
type VerifyConfig struct {
	FS     fsys.FS
	Limit  int
	Events chan<- event.Event
	Stats  *stats.Collector
	Logger *slog.Logger
}

// VerifyResult holds the outcome of a verification pass.
type VerifyResult struct {
	Verified int64
	Failed   int64
	Errors   []VerifyError
}

// VerifyError records a single checksum mismatch.
type VerifyError struct {
	Path    string
	SrcHash string
	DstHash string
}

func (e VerifyError) Error() string {
	return fmt.Sprintf("%s: source %s, destination %s", e.Path, e.SrcHash, e.DstHash)
}

type verifyOutcome struct {
	path             string
	srcHash, dstHash string
}

// Verify re-reads every regular-file mapping on both sides and compares
// BLAKE3 digests, at most cfg.Limit files at a time. A read error aborts the
// pass; mismatches are collected in the result.
func Verify(ctx context.Context, cfg VerifyConfig, mappings []Mapping) (VerifyResult, error) {
	if cfg.Stats == nil {
		cfg.Stats = stats.NewCollector()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	var files []Mapping
	for _, m := range mappings {
		if m.Source.Kind == KindFile {
			files = append(files, m)
		}
	}
	emitEvent(cfg.Events, event.Event{Type: event.VerifyStarted, Total: int64(len(files))})

	outcomes, err := pool.Throttled(ctx, files, cfg.Limit, func(_ context.Context, m Mapping) (verifyOutcome, error) {
		srcHash, err := HashFile(cfg.FS, m.Source.Path)
		if err != nil {
			return verifyOutcome{}, err
		}
		dstHash, err := HashFile(cfg.FS, m.Dst)
		if err != nil {
			return verifyOutcome{}, err
		}
		return verifyOutcome{path: m.Dst, srcHash: srcHash, dstHash: dstHash}, nil
	}, pool.WithLogger(cfg.Logger))
	if err != nil {
		return VerifyResult{}, err
	}

	var result VerifyResult
	for _, o := range outcomes {
		if o.srcHash == o.dstHash {
			result.Verified++
			cfg.Stats.AddFilesVerified(1)
			emitEvent(cfg.Events, event.Event{Type: event.VerifyOK, Path: o.path})
			continue
		}
		verr := VerifyError{Path: o.path, SrcHash: o.srcHash, DstHash: o.dstHash}
		result.Failed++
		result.Errors = append(result.Errors, verr)
		cfg.Stats.AddFilesVerifyFailed(1)
		emitEvent(cfg.Events, event.Event{Type: event.VerifyFailed, Path: o.path, Error: verr})
	}
	return result, nil
}

// emitEvent delivers e without blocking; events are dropped when ch is full.
func emitEvent(ch chan<- event.Event, e event.Event) {
	if ch == nil {
		return
	}
	e.Timestamp = time.Now()
	select {
	case ch <- e:
	default:
	}
}
