package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bamsammich/kopeer/internal/stats"
)

func TestCount(t *testing.T) {
	cases := map[int64]string{
		0:          "0",
		7:          "7",
		999:        "999",
		1000:       "1,000",
		48917:      "48,917",
		123456:     "123,456",
		1234567890: "1,234,567,890",
		-1500:      "-1,500",
	}
	for n, want := range cases {
		assert.Equal(t, want, count(n), "count(%d)", n)
	}
}

func TestThroughput(t *testing.T) {
	assert.Equal(t, "0 B/s", throughput(0))
	assert.Equal(t, "0 B/s", throughput(-5))
	assert.Equal(t, "512 B/s", throughput(512))
	assert.Equal(t, "1.5 MiB/s", throughput(1.5*1024*1024))
}

func TestClock(t *testing.T) {
	assert.Equal(t, "0s", clock(0))
	assert.Equal(t, "0s", clock(-time.Minute))
	assert.Equal(t, "2s", clock(1600*time.Millisecond))
	assert.Equal(t, "3m 05s", clock(3*time.Minute+5*time.Second))
	assert.Equal(t, "1h 02m 03s", clock(time.Hour+2*time.Minute+3*time.Second))
}

func TestETA(t *testing.T) {
	assert.Equal(t, "--", eta(100, 0))
	assert.Equal(t, "--", eta(0, 100))
	assert.Equal(t, "10s", eta(1000, 100))
	assert.Equal(t, "1m 40s", eta(100*1024*1024, 1024*1024))
}

func TestAverageRate(t *testing.T) {
	assert.Zero(t, averageRate(stats.Snapshot{BytesCopied: 100}))
	assert.InDelta(t, 50.0, averageRate(stats.Snapshot{BytesCopied: 100, Elapsed: 2 * time.Second}), 0.001)
}
