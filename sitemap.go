package sitepulse

import (
	"context"
	"net/url"
	"strings"

	"github.com/beevik/etree"
)

// SitemapIndexPath is appended to a site origin to locate its sitemap index.
const SitemapIndexPath = "sitemaps.xml"

// NestedSitemapMarker identifies a location that references another sitemap
// document rather than a content page.
const NestedSitemapMarker = "sitemaps/"

// SitemapFetcher retrieves raw sitemap documents.
type SitemapFetcher interface {
	// FetchSitemap performs a single GET for the sitemap at url.
	// A non-success status or a transport failure returns EFETCH.
	FetchSitemap(ctx context.Context, url string) (string, error)
}

// SitemapCrawler expands a site's sitemap graph into its content URLs.
type SitemapCrawler interface {
	// Crawl returns the deduplicated, filtered content URLs of the site at
	// origin, in discovery order. rules may be nil.
	// Returns EINVALID when no sitemap index URL can be built for origin and
	// EFETCH when any sitemap document cannot be fetched.
	Crawl(ctx context.Context, origin string, rules *RuleSet) ([]string, error)
}

// IndexURL returns the sitemap index URL for the given site origin.
func IndexURL(origin string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(origin))
	if err != nil {
		return "", Errorf(EINVALID, "invalid base url %q", origin)
	}
	if u.Opaque != "" || u.Scheme == "" || u.Host == "" {
		return "", Errorf(EINVALID, "invalid base url %q: cannot append path segments", origin)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.JoinPath(SitemapIndexPath).String(), nil
}

// ExtractLocations returns the text of every <loc> element in document order.
// Prefixed elements such as <image:loc> belong to sitemap extensions and are
// not locations. Entries that are not absolute URLs are skipped. A document that fails to
// parse part-way yields the entries read before the failure.
func ExtractLocations(document string) []string {
	doc := etree.NewDocument()
	doc.ReadSettings.Permissive = true
	// The tree is built incrementally, so a parse error still leaves every
	// element read up to that point attached to doc.
	_ = doc.ReadFromString(document)

	var locations []string
	for _, el := range doc.FindElements("//loc") {
		if el.Space != "" {
			continue
		}
		loc := strings.TrimSpace(el.Text())
		if !isAbsoluteURL(loc) {
			continue
		}
		locations = append(locations, loc)
	}
	return locations
}

// Dedupe removes exact duplicates, keeping the first occurrence of each value.
func Dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func isAbsoluteURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.IsAbs() && (u.Host != "" || u.Opaque != "")
}
