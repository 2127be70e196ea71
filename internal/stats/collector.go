package stats

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Collector tracks copy statistics using lock-free atomic counters.
type Collector struct {
	filesCopied       atomic.Int64
	linksCreated      atomic.Int64
	dirsCreated       atomic.Int64
	bytesCopied       atomic.Int64
	filesSkipped      atomic.Int64
	filesFailed       atomic.Int64
	filesVerified     atomic.Int64
	filesVerifyFailed atomic.Int64
	filesTotal        atomic.Int64
	bytesTotal        atomic.Int64
	startTime         time.Time
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// SetTotals records the planned work once the walk completes.
func (c *Collector) SetTotals(files, bytes int64) {
	c.filesTotal.Store(files)
	c.bytesTotal.Store(bytes)
}

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	FilesCopied       int64
	LinksCreated      int64
	DirsCreated       int64
	BytesCopied       int64
	FilesSkipped      int64
	FilesFailed       int64
	FilesVerified     int64
	FilesVerifyFailed int64
	FilesTotal        int64
	BytesTotal        int64
	Elapsed           time.Duration
}

func (c *Collector) AddFilesCopied(n int64)       { c.filesCopied.Add(n) }
func (c *Collector) AddLinksCreated(n int64)      { c.linksCreated.Add(n) }
func (c *Collector) AddDirsCreated(n int64)       { c.dirsCreated.Add(n) }
func (c *Collector) AddBytesCopied(n int64)       { c.bytesCopied.Add(n) }
func (c *Collector) AddFilesSkipped(n int64)      { c.filesSkipped.Add(n) }
func (c *Collector) AddFilesFailed(n int64)       { c.filesFailed.Add(n) }
func (c *Collector) AddFilesVerified(n int64)     { c.filesVerified.Add(n) }
func (c *Collector) AddFilesVerifyFailed(n int64) { c.filesVerifyFailed.Add(n) }

// Snapshot returns a point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		FilesCopied:       c.filesCopied.Load(),
		LinksCreated:      c.linksCreated.Load(),
		DirsCreated:       c.dirsCreated.Load(),
		BytesCopied:       c.bytesCopied.Load(),
		FilesSkipped:      c.filesSkipped.Load(),
		FilesFailed:       c.filesFailed.Load(),
		FilesVerified:     c.filesVerified.Load(),
		FilesVerifyFailed: c.filesVerifyFailed.Load(),
		FilesTotal:        c.filesTotal.Load(),
		BytesTotal:        c.bytesTotal.Load(),
		Elapsed:           c.Elapsed(),
	}
}

// Elapsed returns time since collector creation.
func (c *Collector) Elapsed() time.Duration {
	return time.Since(c.startTime)
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"copied=%d links=%d dirs=%d bytes=%d skipped=%d failed=%d",
		s.FilesCopied, s.LinksCreated, s.DirsCreated,
		s.BytesCopied, s.FilesSkipped, s.FilesFailed,
	)
}

// FormatBytes renders b in binary units with one decimal: "512 B", "1.5 MiB".
func FormatBytes(b int64) string {
	if b < 1024 {
		return fmt.Sprintf("%d B", b)
	}
	v, unit := float64(b), -1
	for v >= 1024 && unit < len("KMGTPE")-1 {
		v /= 1024
		unit++
	}
	return fmt.Sprintf("%.1f %ciB", v, "KMGTPE"[unit])
}
