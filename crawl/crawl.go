// Package crawl provides sitemap discovery and the bounded report pipeline.
// It expands each site's sitemap index into content URLs, then drives one
// worker per site that requests a report for every URL and pushes the result
// to a subscriber sink.
package crawl

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/sitepulse"
)

// Compile-time interface verification.
var _ sitepulse.SitemapCrawler = (*Crawler)(nil)

// Crawler expands a site's sitemap index into a flat list of content URLs.
// It is safe for concurrent use; all traversal state is local to one Crawl call.
type Crawler struct {
	Sitemaps sitepulse.SitemapFetcher

	// SkipFailedNested makes a failed nested sitemap fetch skip that branch
	// instead of aborting the whole crawl. The root index always aborts.
	SkipFailedNested bool

	// RetryDelays lists the waits between attempts of a failed sitemap fetch.
	// Nil means a single attempt.
	RetryDelays []time.Duration
}

// NewCrawler creates a Crawler that fetches documents with fetcher.
func NewCrawler(fetcher sitepulse.SitemapFetcher) *Crawler {
	return &Crawler{Sitemaps: fetcher}
}

// crawlState is owned by a single Crawl invocation.
type crawlState struct {
	rules    *sitepulse.RuleSet
	visited  map[string]struct{}
	patterns map[string]struct{}
	emitted  map[string]struct{}
	urls     []string
}

// Crawl returns the content URLs of the site at origin in discovery order.
func (c *Crawler) Crawl(ctx context.Context, origin string, rules *sitepulse.RuleSet) ([]string, error) {
	indexURL, err := sitepulse.IndexURL(origin)
	if err != nil {
		return nil, err
	}

	st := &crawlState{
		rules:    rules,
		visited:  make(map[string]struct{}),
		patterns: make(map[string]struct{}),
		emitted:  make(map[string]struct{}),
		urls:     []string{},
	}
	if err := c.visit(ctx, st, indexURL, true); err != nil {
		return nil, err
	}
	return st.urls, nil
}

// visit fetches one sitemap document and processes its locations depth-first.
// The visited set is updated before fetching, so cyclic references terminate.
func (c *Crawler) visit(ctx context.Context, st *crawlState, sitemapURL string, root bool) error {
	if _, ok := st.visited[sitemapURL]; ok {
		return nil
	}
	st.visited[sitemapURL] = struct{}{}

	doc, err := fetchWithRetry(ctx, c.Sitemaps, sitemapURL, c.RetryDelays)
	if err != nil {
		if !root && c.SkipFailedNested {
			return nil
		}
		if sitepulse.ErrorCode(err) == sitepulse.EFETCH {
			return err
		}
		return sitepulse.WrapError(sitepulse.EFETCH, err, "unable to fetch sitemap %s", sitemapURL)
	}

	for _, loc := range sitepulse.Dedupe(sitepulse.ExtractLocations(doc)) {
		path := locationPath(loc)

		// Ignore rules run first so an ignored URL never claims a pattern slot.
		if st.rules.Ignores(path) {
			continue
		}
		if template, ok := st.rules.Match(path); ok {
			if _, seen := st.patterns[template]; seen {
				continue
			}
			st.patterns[template] = struct{}{}
		}

		if strings.Contains(path, sitepulse.NestedSitemapMarker) {
			if err := c.visit(ctx, st, loc, false); err != nil {
				return err
			}
			continue
		}

		if _, ok := st.emitted[loc]; ok {
			continue
		}
		st.emitted[loc] = struct{}{}
		st.urls = append(st.urls, loc)
	}

	return nil
}

func locationPath(loc string) string {
	u, err := url.Parse(loc)
	if err != nil {
		return ""
	}
	return u.Path
}
