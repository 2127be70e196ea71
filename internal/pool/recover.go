package pool

import (
	"context"
	"log/slog"
)

// RetryTransient is the default recovery policy of the mappers: it retries
// transient descriptor exhaustion and gives up on everything else.
func RetryTransient(err error) bool {
	return IsTransient(err)
}

// attempt runs fn on v until it succeeds or recover declines a retry.
func attempt[T, R any](ctx context.Context, fn Func[T, R], v T, recover RecoverFunc, logger *slog.Logger) (R, error) {
	for n := 1; ; n++ {
		r, err := fn(ctx, v)
		if err == nil {
			return r, nil
		}
		if ctx.Err() != nil || recover == nil || !recover(err) {
			return r, err
		}
		logger.Debug("retrying item", "attempt", n, "error", err)
	}
}
