package crawl

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/fwojciec/sitepulse"
	"golang.org/x/sync/semaphore"
)

var _ sitepulse.Governor = (*Governor)(nil)

// DefaultGovernorCapacity is used when a non-positive capacity is requested.
const DefaultGovernorCapacity = 4

// Governor is a fixed-capacity admission gate shared by all workers.
// Waiters are not ordered by priority. It is safe for concurrent use.
type Governor struct {
	sem      *semaphore.Weighted
	capacity int
	inUse    atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
}

// NewGovernor creates a Governor admitting at most capacity holders at once.
func NewGovernor(capacity int) *Governor {
	if capacity <= 0 {
		capacity = DefaultGovernorCapacity
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Governor{
		sem:      semaphore.NewWeighted(int64(capacity)),
		capacity: capacity,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Acquire blocks until a permit is free. It fails with
// sitepulse.ErrGovernorClosed once the governor is closed, including for
// callers already waiting, or when ctx ends before a permit is granted.
func (g *Governor) Acquire(ctx context.Context) error {
	if g.ctx.Err() != nil {
		return sitepulse.ErrGovernorClosed
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(g.ctx, cancel)
	defer stop()

	if err := g.sem.Acquire(ctx, 1); err != nil {
		if g.ctx.Err() != nil {
			return sitepulse.ErrGovernorClosed
		}
		return fmt.Errorf("%w: %w", sitepulse.ErrGovernorClosed, err)
	}
	if g.ctx.Err() != nil {
		g.sem.Release(1)
		return sitepulse.ErrGovernorClosed
	}

	g.inUse.Add(1)
	return nil
}

// Release returns a permit obtained from Acquire.
func (g *Governor) Release() {
	g.inUse.Add(-1)
	g.sem.Release(1)
}

// Close stops admitting new holders. Permits already granted stay valid
// until released.
func (g *Governor) Close() {
	g.cancel()
}

// Capacity returns the maximum number of concurrent holders.
func (g *Governor) Capacity() int {
	return g.capacity
}

// InUse returns the number of permits currently held.
func (g *Governor) InUse() int {
	return int(g.inUse.Load())
}
