package mock

import (
	"context"

	"github.com/fwojciec/sitepulse"
)

var (
	_ sitepulse.SitemapFetcher = (*SitemapFetcher)(nil)
	_ sitepulse.SitemapCrawler = (*SitemapCrawler)(nil)
)

// SitemapFetcher is a mock implementation of sitepulse.SitemapFetcher.
type SitemapFetcher struct {
	FetchSitemapFn func(ctx context.Context, url string) (string, error)
}

func (f *SitemapFetcher) FetchSitemap(ctx context.Context, url string) (string, error) {
	return f.FetchSitemapFn(ctx, url)
}

// SitemapCrawler is a mock implementation of sitepulse.SitemapCrawler.
type SitemapCrawler struct {
	CrawlFn func(ctx context.Context, origin string, rules *sitepulse.RuleSet) ([]string, error)
}

func (c *SitemapCrawler) Crawl(ctx context.Context, origin string, rules *sitepulse.RuleSet) ([]string, error) {
	return c.CrawlFn(ctx, origin, rules)
}
