package crawl_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/sitepulse"
	"github.com/fwojciec/sitepulse/crawl"
	"github.com/fwojciec/sitepulse/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sitesFor(origins ...string) []*sitepulse.Site {
	sites := make([]*sitepulse.Site, len(origins))
	for i, o := range origins {
		sites[i] = &sitepulse.Site{ID: o, Origin: o}
	}
	return sites
}

func okReports() *mock.ReportClient {
	return &mock.ReportClient{
		FetchReportFn: func(_ context.Context, url string) (json.RawMessage, error) {
			return json.RawMessage(`{"url":"` + url + `"}`), nil
		},
	}
}

func waitGroupDone(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("workers did not finish")
	}
}

func TestOrchestrator_Start(t *testing.T) {
	t.Parallel()

	t.Run("returns before workers finish", func(t *testing.T) {
		t.Parallel()

		unblock := make(chan struct{})
		var wg sync.WaitGroup
		wg.Add(1)
		o := &crawl.Orchestrator{
			Worker: &crawl.Worker{
				Crawler: &mock.SitemapCrawler{
					CrawlFn: func(context.Context, string, *sitepulse.RuleSet) ([]string, error) {
						<-unblock
						return nil, nil
					},
				},
				Reports:  okReports(),
				Governor: crawl.NewGovernor(1),
			},
			WorkerDone: func(string) { wg.Done() },
		}

		returned := make(chan struct{})
		go func() {
			o.Start(context.Background(), sitesFor(origin), nil, crawl.NewChannelSink(1))
			close(returned)
		}()

		select {
		case <-returned:
		case <-time.After(time.Second):
			t.Fatal("Start blocked on worker")
		}
		close(unblock)
		waitGroupDone(t, &wg)
	})

	t.Run("bounds concurrent workers by governor capacity", func(t *testing.T) {
		t.Parallel()

		var current, peak atomic.Int32
		origins := []string{"https://a.test", "https://b.test", "https://c.test", "https://d.test", "https://e.test"}
		var wg sync.WaitGroup
		wg.Add(len(origins))
		o := &crawl.Orchestrator{
			Worker: &crawl.Worker{
				Crawler: &mock.SitemapCrawler{
					CrawlFn: func(context.Context, string, *sitepulse.RuleSet) ([]string, error) {
						n := current.Add(1)
						for {
							p := peak.Load()
							if n <= p || peak.CompareAndSwap(p, n) {
								break
							}
						}
						time.Sleep(10 * time.Millisecond)
						current.Add(-1)
						return nil, nil
					},
				},
				Reports:  okReports(),
				Governor: crawl.NewGovernor(2),
			},
			WorkerDone: func(string) { wg.Done() },
		}

		o.Start(context.Background(), sitesFor(origins...), nil, crawl.NewChannelSink(10))
		waitGroupDone(t, &wg)

		assert.LessOrEqual(t, peak.Load(), int32(2))
	})

	t.Run("failing site does not affect the others", func(t *testing.T) {
		t.Parallel()

		var wg sync.WaitGroup
		wg.Add(3)
		o := &crawl.Orchestrator{
			Worker: &crawl.Worker{
				Crawler: &mock.SitemapCrawler{
					CrawlFn: func(_ context.Context, o string, _ *sitepulse.RuleSet) ([]string, error) {
						if o == "https://broken.test" {
							return nil, sitepulse.Errorf(sitepulse.EFETCH, "HTTP 500")
						}
						return []string{o + "/page"}, nil
					},
				},
				Reports:  okReports(),
				Governor: crawl.NewGovernor(3),
			},
			WorkerDone: func(string) { wg.Done() },
		}
		sink := crawl.NewChannelSink(10)

		o.Start(context.Background(), sitesFor("https://a.test", "https://broken.test", "https://c.test"), nil, sink)
		waitGroupDone(t, &wg)

		var got []string
		for len(sink.Events()) > 0 {
			got = append(got, (<-sink.Events()).URL)
		}
		assert.ElementsMatch(t, []string{"https://a.test/page", "https://c.test/page"}, got)
	})

	t.Run("disconnect stops every worker", func(t *testing.T) {
		t.Parallel()

		var reports atomic.Int32
		many := make([]string, 100)
		for i := range many {
			many[i] = fmt.Sprintf("%s/page/%d", origin, i)
		}
		var wg sync.WaitGroup
		wg.Add(3)
		o := &crawl.Orchestrator{
			Worker: &crawl.Worker{
				Crawler: &mock.SitemapCrawler{
					CrawlFn: func(context.Context, string, *sitepulse.RuleSet) ([]string, error) {
						return many, nil
					},
				},
				Reports: &mock.ReportClient{
					FetchReportFn: func(context.Context, string) (json.RawMessage, error) {
						reports.Add(1)
						return json.RawMessage(`{}`), nil
					},
				},
				Governor: crawl.NewGovernor(3),
			},
			WorkerDone: func(string) { wg.Done() },
		}
		sink := crawl.NewChannelSink(2)

		o.Start(context.Background(), sitesFor("https://a.test", "https://b.test", "https://c.test"), nil, sink)

		<-sink.Events()
		sink.Disconnect()
		waitGroupDone(t, &wg)

		// Each worker may finish at most one report after its push fails,
		// plus whatever fit in the buffer before the disconnect.
		assert.Less(t, reports.Load(), int32(20))
	})

	t.Run("cancelled context releases waiting workers", func(t *testing.T) {
		t.Parallel()

		gov := crawl.NewGovernor(1)
		require.NoError(t, gov.Acquire(context.Background()))
		defer gov.Release()

		var wg sync.WaitGroup
		wg.Add(2)
		var crawled atomic.Bool
		o := &crawl.Orchestrator{
			Worker: &crawl.Worker{
				Crawler: &mock.SitemapCrawler{
					CrawlFn: func(context.Context, string, *sitepulse.RuleSet) ([]string, error) {
						crawled.Store(true)
						return nil, nil
					},
				},
				Reports:  okReports(),
				Governor: gov,
			},
			WorkerDone: func(string) { wg.Done() },
		}
		ctx, cancel := context.WithCancel(context.Background())

		o.Start(ctx, sitesFor("https://a.test", "https://b.test"), nil, crawl.NewChannelSink(1))
		cancel()
		waitGroupDone(t, &wg)

		assert.False(t, crawled.Load())
	})
}

func TestOrchestrator_Preview(t *testing.T) {
	t.Parallel()

	t.Run("returns per-site results in input order", func(t *testing.T) {
		t.Parallel()

		o := &crawl.Orchestrator{
			Worker: &crawl.Worker{
				Crawler: &mock.SitemapCrawler{
					CrawlFn: func(_ context.Context, o string, _ *sitepulse.RuleSet) ([]string, error) {
						if o == "https://broken.test" {
							return nil, sitepulse.Errorf(sitepulse.EFETCH, "HTTP 404")
						}
						return []string{o + "/x"}, nil
					},
				},
			},
			Concurrency: 2,
		}

		results, err := o.Preview(context.Background(), sitesFor("https://a.test", "https://broken.test", "https://c.test"), nil)

		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "https://a.test", results[0].Origin)
		assert.Equal(t, []string{"https://a.test/x"}, results[0].URLs)
		assert.Equal(t, sitepulse.EFETCH, sitepulse.ErrorCode(results[1].Err))
		assert.Equal(t, []string{"https://c.test/x"}, results[2].URLs)
	})

	t.Run("returns context error when cancelled", func(t *testing.T) {
		t.Parallel()

		o := &crawl.Orchestrator{
			Worker: &crawl.Worker{
				Crawler: staticCrawler(nil, nil),
			},
		}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := o.Preview(ctx, sitesFor("https://a.test"), nil)

		assert.ErrorIs(t, err, context.Canceled)
	})
}
