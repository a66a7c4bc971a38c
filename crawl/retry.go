package crawl

import (
	"context"
	"time"

	"github.com/fwojciec/sitepulse"
)

// DefaultRetryDelays returns the backoff delays for sitemap fetch retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// RetryDelays returns the first n delays of DefaultRetryDelays, doubling the
// last delay when n exceeds the defaults.
func RetryDelays(n int) []time.Duration {
	if n <= 0 {
		return nil
	}
	delays := DefaultRetryDelays()
	for len(delays) < n {
		delays = append(delays, delays[len(delays)-1]*2)
	}
	return delays[:n]
}

// fetchWithRetry fetches a sitemap document, retrying once per entry in
// delays. Report requests never go through here; they are not retried.
func fetchWithRetry(ctx context.Context, fetcher sitepulse.SitemapFetcher, url string, delays []time.Duration) (string, error) {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		doc, err := fetcher.FetchSitemap(ctx, url)
		if err == nil {
			return doc, nil
		}
		lastErr = err

		if attempt >= maxAttempts-1 {
			break
		}
		if err := sleep(ctx, delays[attempt]); err != nil {
			return "", err
		}
	}

	return "", lastErr
}

// sleep waits for d or until ctx ends, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
