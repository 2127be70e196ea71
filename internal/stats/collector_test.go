package stats

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// simulateCopy records what a worker reports for one copied entry.
func simulateCopy(c *Collector, i int) {
	switch i % 4 {
	case 0:
		c.AddLinksCreated(1)
	case 1:
		c.AddFilesFailed(1)
	default:
		c.AddFilesCopied(1)
		c.AddBytesCopied(int64(i))
		c.AddFilesVerified(1)
	}
}

func TestCollectorParallelWorkers(t *testing.T) {
	c := NewCollector()
	c.SetTotals(400, 0)

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := w * 50; i < (w+1)*50; i++ {
				simulateCopy(c, i)
			}
		}()
	}
	wg.Wait()

	var wantBytes int64
	for i := range 400 {
		if i%4 >= 2 {
			wantBytes += int64(i)
		}
	}
	s := c.Snapshot()
	assert.Equal(t, int64(100), s.LinksCreated)
	assert.Equal(t, int64(100), s.FilesFailed)
	assert.Equal(t, int64(200), s.FilesCopied)
	assert.Equal(t, int64(200), s.FilesVerified)
	assert.Equal(t, wantBytes, s.BytesCopied)
	assert.Equal(t, int64(400), s.FilesTotal)
}

func TestSnapshotIsACopy(t *testing.T) {
	c := NewCollector()
	c.AddDirsCreated(2)
	before := c.Snapshot()
	c.AddDirsCreated(5)
	c.AddFilesSkipped(1)
	c.AddFilesVerifyFailed(1)

	assert.Equal(t, int64(2), before.DirsCreated)
	after := c.Snapshot()
	assert.Equal(t, int64(7), after.DirsCreated)
	assert.Equal(t, int64(1), after.FilesSkipped)
	assert.Equal(t, int64(1), after.FilesVerifyFailed)
}

func TestSnapshotStringForLogs(t *testing.T) {
	s := Snapshot{FilesCopied: 3, LinksCreated: 1, DirsCreated: 2, BytesCopied: 10, FilesFailed: 1}
	assert.Equal(t, "copied=3 links=1 dirs=2 bytes=10 skipped=0 failed=1", s.String())
}

func TestFormatBytesUnits(t *testing.T) {
	assert.Equal(t, "0 B", FormatBytes(0))
	assert.Equal(t, "1023 B", FormatBytes(1023))
	assert.Equal(t, "1.0 KiB", FormatBytes(1<<10))
	assert.Equal(t, "2.5 MiB", FormatBytes(5<<19))
	assert.Equal(t, "3.0 GiB", FormatBytes(3<<30))
	assert.Equal(t, "1.0 TiB", FormatBytes(1<<40))
}

func TestElapsedAdvances(t *testing.T) {
	c := NewCollector()
	first := c.Elapsed()
	time.Sleep(5 * time.Millisecond)
	assert.Greater(t, c.Snapshot().Elapsed, first)
}
