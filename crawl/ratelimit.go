package crawl

import (
	"context"
	"sync"

	"github.com/fwojciec/sitepulse"
	"golang.org/x/time/rate"
)

var _ sitepulse.Pacer = (*HostLimiter)(nil)

// HostLimiter is the shared report request quota. Workers pass the report
// endpoint host as the key, so every worker draws from one token bucket per
// endpoint no matter which site it is processing.
type HostLimiter struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// NewHostLimiter allows rps requests per second per host, with up to burst
// requests admitted back to back. A non-positive rps means no limit.
func NewHostLimiter(rps float64, burst int) *HostLimiter {
	l := &HostLimiter{
		limit:   rate.Limit(rps),
		burst:   max(burst, 1),
		buckets: make(map[string]*rate.Limiter),
	}
	if rps <= 0 {
		l.limit = rate.Inf
	}
	return l
}

// Wait blocks until host has a free token or ctx ends.
func (l *HostLimiter) Wait(ctx context.Context, host string) error {
	return l.bucket(host).Wait(ctx)
}

func (l *HostLimiter) bucket(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[host]
	if !ok {
		b = rate.NewLimiter(l.limit, l.burst)
		l.buckets[host] = b
	}
	return b
}
