package crawl

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fwojciec/sitepulse"
)

// DefaultInterval is the pause between consecutive report requests of one worker.
const DefaultInterval = 2 * time.Second

// Worker runs the per-site pipeline: it waits for a governor permit, crawls
// the site's sitemaps, then requests a report for each discovered URL in
// order and pushes every result to the sink. One Worker value may serve many
// sites concurrently; it holds configuration only.
type Worker struct {
	Crawler  sitepulse.SitemapCrawler
	Reports  sitepulse.ReportClient
	Governor sitepulse.Governor

	// Quota, when set, is waited on with QuotaKey before every report
	// request. It caps the combined request rate of all workers.
	Quota    sitepulse.Pacer
	QuotaKey string

	// Interval is the pause between report requests. Zero disables pacing.
	Interval time.Duration

	Logger *slog.Logger
	Now    func() time.Time
}

// Run processes one site. It never returns an error: every failure is logged
// and ends the run, and the governor permit is released on every exit path.
func (w *Worker) Run(ctx context.Context, origin string, rules *sitepulse.RuleSet, sink sitepulse.Sink) {
	logger := w.logger().With("site", origin)

	if err := w.Governor.Acquire(ctx); err != nil {
		logger.Debug("worker not admitted", "error", err)
		return
	}
	defer w.Governor.Release()

	if subscriberGone(sink) {
		logger.Debug("subscriber gone before crawl")
		return
	}

	urls, err := w.Crawler.Crawl(ctx, origin, rules)
	if err != nil {
		logger.Error("failed to extract urls from sitemaps", "error", err)
		return
	}
	logger.Info("sitemap crawl complete", "urls", len(urls))

	for i, u := range urls {
		if w.Quota != nil {
			if err := w.Quota.Wait(ctx, w.QuotaKey); err != nil {
				logger.Warn("report quota wait aborted", "url", u, "error", err)
				return
			}
		}

		report, err := w.Reports.FetchReport(ctx, u)
		if err != nil {
			logger.Error("report request failed", "url", u, "error", err)
			return
		}

		evt := sitepulse.NewReportEvent(origin, u, report, w.now())
		if err := sink.Push(ctx, evt); err != nil {
			if errors.Is(err, sitepulse.ErrDisconnected) {
				logger.Debug("subscriber gone, stopping", "remaining", len(urls)-i-1)
				return
			}
			logger.Warn("unable to deliver report", "url", u, "error", err)
			return
		}

		if i < len(urls)-1 {
			if err := sleep(ctx, w.Interval); err != nil {
				return
			}
		}
	}

	logger.Info("site complete", "reports", len(urls))
}

// subscriberGone reports whether a sink that exposes Done has already closed it.
func subscriberGone(sink sitepulse.Sink) bool {
	d, ok := sink.(interface{ Done() <-chan struct{} })
	if !ok {
		return false
	}
	select {
	case <-d.Done():
		return true
	default:
		return false
	}
}

func (w *Worker) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (w *Worker) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now().UTC()
}
