// Package slog provides logging decorators for sitepulse services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sitepulse"
)

// Ensure decorators implement their interfaces.
var (
	_ sitepulse.SitemapFetcher = (*LoggingSitemapFetcher)(nil)
	_ sitepulse.SitemapCrawler = (*LoggingSitemapCrawler)(nil)
)

// LoggingSitemapFetcher wraps a SitemapFetcher with debug logging.
type LoggingSitemapFetcher struct {
	next   sitepulse.SitemapFetcher
	logger *slog.Logger
}

// NewLoggingSitemapFetcher creates a new LoggingSitemapFetcher.
func NewLoggingSitemapFetcher(next sitepulse.SitemapFetcher, logger *slog.Logger) *LoggingSitemapFetcher {
	return &LoggingSitemapFetcher{next: next, logger: logger}
}

// FetchSitemap delegates to the wrapped fetcher and logs the operation.
func (f *LoggingSitemapFetcher) FetchSitemap(ctx context.Context, url string) (doc string, err error) {
	defer func(begin time.Time) {
		f.logger.Debug("sitemap fetch",
			"url", url,
			"bytes", len(doc),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.FetchSitemap(ctx, url)
}

// LoggingSitemapCrawler wraps a SitemapCrawler with logging.
type LoggingSitemapCrawler struct {
	next   sitepulse.SitemapCrawler
	logger *slog.Logger
}

// NewLoggingSitemapCrawler creates a new LoggingSitemapCrawler.
func NewLoggingSitemapCrawler(next sitepulse.SitemapCrawler, logger *slog.Logger) *LoggingSitemapCrawler {
	return &LoggingSitemapCrawler{next: next, logger: logger}
}

// Crawl delegates to the wrapped crawler and logs the operation.
func (c *LoggingSitemapCrawler) Crawl(ctx context.Context, origin string, rules *sitepulse.RuleSet) (urls []string, err error) {
	defer func(begin time.Time) {
		c.logger.Info("sitemap discovery",
			"url", origin,
			"count", len(urls),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.Crawl(ctx, origin, rules)
}
