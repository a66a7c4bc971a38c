package http

import (
	"context"
	"net/http"

	"github.com/fwojciec/sitepulse"
)

// Ensure SitemapFetcher implements sitepulse.SitemapFetcher.
var _ sitepulse.SitemapFetcher = (*SitemapFetcher)(nil)

// SitemapFetcher retrieves raw sitemap documents over HTTP.
type SitemapFetcher struct {
	client *http.Client
}

// NewSitemapFetcher creates a new SitemapFetcher.
func NewSitemapFetcher(opts ...Option) *SitemapFetcher {
	return &SitemapFetcher{client: newClient(opts)}
}

// FetchSitemap performs one GET for url. Any failure is reported as EFETCH.
func (f *SitemapFetcher) FetchSitemap(ctx context.Context, url string) (string, error) {
	body, err := get(ctx, f.client, url)
	if err != nil {
		return "", sitepulse.WrapError(sitepulse.EFETCH, err, "unable to fetch sitemap %s", url)
	}
	return string(body), nil
}
