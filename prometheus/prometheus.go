// Package prometheus provides metrics decorators for sitepulse services.
package prometheus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fwojciec/sitepulse"
	prom "github.com/prometheus/client_golang/prometheus"
)

// Result label values.
const (
	resultOK    = "ok"
	resultError = "error"
)

// Metrics owns every sitepulse collector.
type Metrics struct {
	sitemapFetches *prom.CounterVec
	crawls         *prom.CounterVec
	discoveredURLs prom.Counter
	reportRequests *prom.CounterVec
	reportDuration prom.Histogram
}

// NewMetrics registers the collectors against reg. A nil reg uses the
// default registerer.
func NewMetrics(reg prom.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	m := &Metrics{
		sitemapFetches: prom.NewCounterVec(prom.CounterOpts{
			Name: "sitepulse_sitemap_fetches_total",
			Help: "Sitemap document fetches partitioned by result.",
		}, []string{"result"}),
		crawls: prom.NewCounterVec(prom.CounterOpts{
			Name: "sitepulse_crawls_total",
			Help: "Site crawls partitioned by result.",
		}, []string{"result"}),
		discoveredURLs: prom.NewCounter(prom.CounterOpts{
			Name: "sitepulse_discovered_urls_total",
			Help: "Content URLs returned by successful crawls.",
		}),
		reportRequests: prom.NewCounterVec(prom.CounterOpts{
			Name: "sitepulse_report_requests_total",
			Help: "Report API requests partitioned by result.",
		}, []string{"result"}),
		reportDuration: prom.NewHistogram(prom.HistogramOpts{
			Name:    "sitepulse_report_request_duration_seconds",
			Help:    "Report API request latency.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		}),
	}
	for _, collector := range []prom.Collector{
		m.sitemapFetches,
		m.crawls,
		m.discoveredURLs,
		m.reportRequests,
		m.reportDuration,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register sitepulse collector: %w", err)
		}
	}
	return m, nil
}

func result(err error) string {
	if err != nil {
		return resultError
	}
	return resultOK
}

// Ensure decorators implement their interfaces.
var (
	_ sitepulse.SitemapFetcher = (*SitemapFetcher)(nil)
	_ sitepulse.SitemapCrawler = (*SitemapCrawler)(nil)
	_ sitepulse.ReportClient   = (*ReportClient)(nil)
)

// SitemapFetcher counts sitemap fetches.
type SitemapFetcher struct {
	next    sitepulse.SitemapFetcher
	metrics *Metrics
}

// NewSitemapFetcher wraps next with fetch counting.
func NewSitemapFetcher(next sitepulse.SitemapFetcher, m *Metrics) *SitemapFetcher {
	return &SitemapFetcher{next: next, metrics: m}
}

func (f *SitemapFetcher) FetchSitemap(ctx context.Context, url string) (string, error) {
	doc, err := f.next.FetchSitemap(ctx, url)
	f.metrics.sitemapFetches.WithLabelValues(result(err)).Inc()
	return doc, err
}

// SitemapCrawler counts crawls and the URLs they discover.
type SitemapCrawler struct {
	next    sitepulse.SitemapCrawler
	metrics *Metrics
}

// NewSitemapCrawler wraps next with crawl counting.
func NewSitemapCrawler(next sitepulse.SitemapCrawler, m *Metrics) *SitemapCrawler {
	return &SitemapCrawler{next: next, metrics: m}
}

func (c *SitemapCrawler) Crawl(ctx context.Context, origin string, rules *sitepulse.RuleSet) ([]string, error) {
	urls, err := c.next.Crawl(ctx, origin, rules)
	c.metrics.crawls.WithLabelValues(result(err)).Inc()
	c.metrics.discoveredURLs.Add(float64(len(urls)))
	return urls, err
}

// ReportClient counts report requests and observes their latency.
type ReportClient struct {
	next    sitepulse.ReportClient
	metrics *Metrics
}

// NewReportClient wraps next with request metrics.
func NewReportClient(next sitepulse.ReportClient, m *Metrics) *ReportClient {
	return &ReportClient{next: next, metrics: m}
}

func (c *ReportClient) FetchReport(ctx context.Context, url string) (json.RawMessage, error) {
	begin := time.Now()
	report, err := c.next.FetchReport(ctx, url)
	c.metrics.reportDuration.Observe(time.Since(begin).Seconds())
	c.metrics.reportRequests.WithLabelValues(result(err)).Inc()
	return report, err
}

// Occupancy reports permits currently held.
type Occupancy interface {
	InUse() int
}

// RegisterGovernor exports the number of held governor permits as a gauge.
func RegisterGovernor(reg prom.Registerer, g Occupancy) error {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	gauge := prom.NewGaugeFunc(prom.GaugeOpts{
		Name: "sitepulse_governor_in_use",
		Help: "Worker permits currently held.",
	}, func() float64 {
		return float64(g.InUse())
	})
	if err := reg.Register(gauge); err != nil {
		return fmt.Errorf("register governor gauge: %w", err)
	}
	return nil
}
