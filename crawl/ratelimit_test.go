package crawl_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/sitepulse/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reportHost = "psi.example.com"

// waitAll calls Wait n times and returns the total time spent.
func waitAll(t *testing.T, l *crawl.HostLimiter, host string, n int) time.Duration {
	t.Helper()
	start := time.Now()
	for range n {
		require.NoError(t, l.Wait(context.Background(), host))
	}
	return time.Since(start)
}

func TestHostLimiter_Unlimited(t *testing.T) {
	t.Parallel()

	l := crawl.NewHostLimiter(0, 0)

	assert.Less(t, waitAll(t, l, reportHost, 50), 50*time.Millisecond)
}

func TestHostLimiter_Burst(t *testing.T) {
	t.Parallel()

	t.Run("burst requests pass without waiting", func(t *testing.T) {
		t.Parallel()

		l := crawl.NewHostLimiter(1, 3)

		assert.Less(t, waitAll(t, l, reportHost, 3), 50*time.Millisecond)
	})

	t.Run("request past the burst waits for a token", func(t *testing.T) {
		t.Parallel()

		l := crawl.NewHostLimiter(10, 2)
		waitAll(t, l, reportHost, 2)

		assert.GreaterOrEqual(t, waitAll(t, l, reportHost, 1), 80*time.Millisecond)
	})

	t.Run("non-positive burst admits one request", func(t *testing.T) {
		t.Parallel()

		l := crawl.NewHostLimiter(10, 0)
		waitAll(t, l, reportHost, 1)

		assert.GreaterOrEqual(t, waitAll(t, l, reportHost, 1), 80*time.Millisecond)
	})
}

func TestHostLimiter_SharedQuota(t *testing.T) {
	t.Parallel()

	t.Run("workers on one host share the bucket", func(t *testing.T) {
		t.Parallel()

		l := crawl.NewHostLimiter(20, 1)

		start := time.Now()
		var wg sync.WaitGroup
		for range 4 {
			wg.Go(func() {
				assert.NoError(t, l.Wait(context.Background(), reportHost))
			})
		}
		wg.Wait()

		// Four tokens at 20/s with burst 1: three of them are refills.
		assert.GreaterOrEqual(t, time.Since(start), 120*time.Millisecond)
	})

	t.Run("hosts are limited independently", func(t *testing.T) {
		t.Parallel()

		l := crawl.NewHostLimiter(1, 1)
		waitAll(t, l, reportHost, 1)

		assert.Less(t, waitAll(t, l, "other.example.com", 1), 50*time.Millisecond)
	})
}

func TestHostLimiter_ContextCancelled(t *testing.T) {
	t.Parallel()

	l := crawl.NewHostLimiter(1, 1)
	waitAll(t, l, reportHost, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.Error(t, l.Wait(ctx, reportHost))
}
