// Package pool runs work items with a hard ceiling on how many execute at once.
//
// A Pool owns up to Limit slots. Queue hands an item to an idle slot, opens a new
// slot while below the limit, or parks the item in a FIFO backlog. A failed item
// goes through the recovery policy: a retry re-runs it on the same slot, anything
// else tears the pool down. Wait is the single join point.
package pool

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// DefaultLimit is used when a non-positive limit is configured.
const DefaultLimit = 512

// ErrDisposed is returned by Queue and Wait once Dispose has been called.
var ErrDisposed = errors.New("pool disposed")

// Func processes one queued value.
type Func[T, R any] func(ctx context.Context, v T) (R, error)

// RecoverFunc decides whether a failed item is retried.
type RecoverFunc func(err error) (retry bool)

// Item is a queued value tagged with its queue position.
type Item[T any] struct {
	Value T
	Index int
}

// Outcome is the result of one item, recorded in completion order.
type Outcome[T, R any] struct {
	Item  Item[T]
	Value R
}

// Config controls a Pool.
type Config struct {
	Limit   int
	Recover RecoverFunc
	Logger  *slog.Logger
}

// State is a Pool lifecycle state.
type State int

const (
	Idle State = iota
	Running
	Draining
	Completed
	Failed
	Disposed
)

var stateNames = [...]string{
	Idle:      "Idle",
	Running:   "Running",
	Draining:  "Draining",
	Completed: "Completed",
	Failed:    "Failed",
	Disposed:  "Disposed",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "Unknown"
}

type slot struct {
	id   int
	busy bool
}

// Pool is a bounded scheduler for Func. The zero value is not usable; call New.
type Pool[T, R any] struct {
	fn      Func[T, R]
	limit   int
	recover RecoverFunc
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	idle     chan struct{} // closed while busy == 0
	slots    []*slot
	backlog  []Item[T]
	busy     int
	queued   int
	outcomes []Outcome[T, R]
	errs     []error
	failed   bool
	disposed bool
}

// New creates a pool whose items run under a context derived from ctx.
// Cancelling ctx stops dispatch of backlogged items.
func New[T, R any](ctx context.Context, fn Func[T, R], cfg Config) *Pool[T, R] {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	pctx, cancel := context.WithCancel(ctx)
	p := &Pool[T, R]{
		fn:      fn,
		limit:   cfg.Limit,
		recover: cfg.Recover,
		logger:  cfg.Logger,
		ctx:     pctx,
		cancel:  cancel,
	}
	p.idle = make(chan struct{})
	close(p.idle)
	return p
}

// Queue schedules v. It returns ErrDisposed after Dispose and the pool's
// context error after a teardown; in both cases v is dropped.
func (p *Pool[T, R]) Queue(v T) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.disposed {
		return ErrDisposed
	}
	if p.failed {
		return p.ctx.Err()
	}

	item := Item[T]{Value: v, Index: p.queued}
	p.queued++

	for _, s := range p.slots {
		if !s.busy {
			p.startLocked(s, item)
			return nil
		}
	}
	if len(p.slots) < p.limit {
		s := &slot{id: len(p.slots)}
		p.slots = append(p.slots, s)
		p.startLocked(s, item)
		return nil
	}
	p.backlog = append(p.backlog, item)
	return nil
}

// Wait blocks until no item is running, then returns the outcomes in
// completion order and the aggregate error. It returns early with ctx.Err()
// when ctx is cancelled first.
func (p *Pool[T, R]) Wait(ctx context.Context) ([]Outcome[T, R], error) {
	p.mu.Lock()
	idle := p.idle
	p.mu.Unlock()

	select {
	case <-idle:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.disposed {
		return nil, ErrDisposed
	}
	outcomes := make([]Outcome[T, R], len(p.outcomes))
	copy(outcomes, p.outcomes)
	return outcomes, p.errLocked()
}

// Dispose discards all slots and backlog and cancels in-flight items.
// A disposed pool ignores Queue. Dispose is idempotent.
func (p *Pool[T, R]) Dispose() {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return
	}
	p.disposed = true
	p.slots = nil
	p.backlog = nil
	p.mu.Unlock()
	p.cancel()
}

// State reports where the pool is in its lifecycle.
func (p *Pool[T, R]) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case p.disposed:
		return Disposed
	case p.failed:
		return Failed
	case p.busy == 0 && p.queued == 0:
		return Idle
	case p.busy == 0:
		return Completed
	case len(p.backlog) == 0:
		return Draining
	default:
		return Running
	}
}

func (p *Pool[T, R]) startLocked(s *slot, item Item[T]) {
	s.busy = true
	if p.busy == 0 {
		p.idle = make(chan struct{})
	}
	p.busy++
	go p.run(s, item)
}

// run executes item on s, then keeps pulling from the backlog until it is
// empty or the pool stops dispatching.
func (p *Pool[T, R]) run(s *slot, item Item[T]) {
	for {
		v, err := p.settle(s, item)

		p.mu.Lock()
		if err != nil {
			p.failLocked(err)
		} else if !p.disposed {
			p.outcomes = append(p.outcomes, Outcome[T, R]{Item: item, Value: v})
		}

		next, ok := p.nextLocked()
		if !ok {
			s.busy = false
			p.busy--
			if p.busy == 0 {
				close(p.idle)
			}
			p.mu.Unlock()
			return
		}
		p.mu.Unlock()
		item = next
	}
}

// settle runs item until it succeeds or the recovery policy gives up.
func (p *Pool[T, R]) settle(s *slot, item Item[T]) (R, error) {
	return attempt(p.ctx, p.fn, item.Value, p.recover,
		p.logger.With("slot", s.id, "index", item.Index))
}

func (p *Pool[T, R]) nextLocked() (Item[T], bool) {
	if p.disposed || p.failed {
		return Item[T]{}, false
	}
	if err := p.ctx.Err(); err != nil {
		p.failLocked(err)
		return Item[T]{}, false
	}
	if len(p.backlog) == 0 {
		return Item[T]{}, false
	}
	item := p.backlog[0]
	p.backlog[0] = Item[T]{}
	p.backlog = p.backlog[1:]
	return item, true
}

// failLocked records err and tears the pool down on the first failure.
// Cancellation errors from items interrupted by the teardown are not recorded.
func (p *Pool[T, R]) failLocked(err error) {
	if p.disposed {
		return
	}
	if p.failed && errors.Is(err, context.Canceled) {
		return
	}
	p.errs = append(p.errs, err)
	if p.failed {
		return
	}
	p.failed = true
	dropped := len(p.backlog)
	p.backlog = nil
	p.cancel()
	p.logger.Warn("pool torn down", "error", err, "in_flight", p.busy, "dropped", dropped)
}

func (p *Pool[T, R]) errLocked() error {
	switch len(p.errs) {
	case 0:
		return nil
	case 1:
		return p.errs[0]
	default:
		return errors.Join(p.errs...)
	}
}
