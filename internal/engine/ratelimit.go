package engine

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// NewBWLimiter returns a limiter capping aggregate throughput at bytesPerSec.
// The burst allows one 1 MiB read through at a time, or the whole per-second
// budget when that is smaller.
func NewBWLimiter(bytesPerSec int64) *rate.Limiter {
	burst := 1 << 20
	if bytesPerSec < int64(burst) {
		burst = int(bytesPerSec)
	}
	return rate.NewLimiter(rate.Limit(bytesPerSec), burst)
}

// limitedReader charges every read against a limiter shared by all copies of
// one operation. Reads larger than the burst are split.
type limitedReader struct {
	ctx     context.Context
	r       io.Reader
	limiter *rate.Limiter
}

func newLimitedReader(ctx context.Context, r io.Reader, limiter *rate.Limiter) io.Reader {
	if limiter == nil {
		return r
	}
	return &limitedReader{ctx: ctx, r: r, limiter: limiter}
}

func (lr *limitedReader) Read(p []byte) (int, error) {
	if burst := lr.limiter.Burst(); len(p) > burst {
		p = p[:burst]
	}
	n, err := lr.r.Read(p)
	if n > 0 {
		if waitErr := lr.limiter.WaitN(lr.ctx, n); waitErr != nil {
			return n, waitErr
		}
	}
	return n, err
}
