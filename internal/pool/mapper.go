package pool

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Option configures a mapper.
type Option func(*mapConfig)

type mapConfig struct {
	limit   int
	recover RecoverFunc
	logger  *slog.Logger
}

// WithRecover replaces the default RetryTransient policy.
func WithRecover(fn RecoverFunc) Option {
	return func(c *mapConfig) { c.recover = fn }
}

// WithLogger sets the logger used for retry and teardown records.
func WithLogger(l *slog.Logger) Option {
	return func(c *mapConfig) { c.logger = l }
}

func newMapConfig(limit int, opts []Option) mapConfig {
	c := mapConfig{limit: limit, recover: RetryTransient}
	for _, opt := range opts {
		opt(&c)
	}
	if c.limit <= 0 {
		c.limit = DefaultLimit
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Chunked maps items in consecutive batches of limit. Every item of a batch
// runs concurrently and the next batch starts only once the whole batch has
// finished. Results are positionally aligned with items.
func Chunked[T, R any](ctx context.Context, items []T, limit int, fn Func[T, R], opts ...Option) ([]R, error) {
	cfg := newMapConfig(limit, opts)
	results := make([]R, len(items))

	for start := 0; start < len(items); start += cfg.limit {
		end := min(start+cfg.limit, len(items))
		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			g.Go(func() error {
				r, err := attempt(gctx, fn, items[i], cfg.recover, cfg.logger)
				if err != nil {
					return err
				}
				results[i] = r
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// Throttled maps items through a Pool of limit slots and returns the results
// in completion order.
func Throttled[T, R any](ctx context.Context, items []T, limit int, fn Func[T, R], opts ...Option) ([]R, error) {
	outcomes, err := throttle(ctx, items, limit, fn, opts)
	if err != nil {
		return nil, err
	}
	results := make([]R, len(outcomes))
	for i, o := range outcomes {
		results[i] = o.Value
	}
	return results, nil
}

// ThrottledOrdered is Throttled with results reassembled in input order.
func ThrottledOrdered[T, R any](ctx context.Context, items []T, limit int, fn Func[T, R], opts ...Option) ([]R, error) {
	outcomes, err := throttle(ctx, items, limit, fn, opts)
	if err != nil {
		return nil, err
	}
	results := make([]R, len(items))
	for _, o := range outcomes {
		results[o.Item.Index] = o.Value
	}
	return results, nil
}

func throttle[T, R any](ctx context.Context, items []T, limit int, fn Func[T, R], opts []Option) ([]Outcome[T, R], error) {
	cfg := newMapConfig(limit, opts)
	p := New(ctx, fn, Config{Limit: cfg.limit, Recover: cfg.recover, Logger: cfg.logger})
	defer p.Dispose()

	for _, v := range items {
		if err := p.Queue(v); err != nil {
			// torn down: Wait reports the cause
			break
		}
	}
	// Cancelling ctx stops dispatch through the pool; in-flight items are
	// still joined before returning.
	return p.Wait(context.Background())
}
