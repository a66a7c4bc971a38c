package crawl

import (
	"context"

	"github.com/fwojciec/sitepulse"
	"golang.org/x/sync/errgroup"
)

var _ sitepulse.Pipeline = (*Orchestrator)(nil)

// Orchestrator fans out one Worker per site.
type Orchestrator struct {
	Worker *Worker

	// WorkerDone, when set, is called after each worker finishes.
	WorkerDone func(origin string)

	// Concurrency bounds Preview. Defaults to DefaultGovernorCapacity.
	Concurrency int
}

// Start launches a detached worker for every site and returns immediately.
// Workers are not joined; they end on their own, on sink disconnect or when
// ctx is cancelled. All workers share the same rules and sink.
func (o *Orchestrator) Start(ctx context.Context, sites []*sitepulse.Site, rules *sitepulse.RuleSet, sink sitepulse.Sink) {
	for _, site := range sites {
		go func() {
			if o.WorkerDone != nil {
				defer o.WorkerDone(site.Origin)
			}
			o.Worker.Run(ctx, site.Origin, rules, sink)
		}()
	}
}

// PreviewResult is the crawl outcome of one site.
type PreviewResult struct {
	Origin string
	URLs   []string
	Err    error
}

// Preview crawls every site without requesting reports. A failing site is
// reported in its result and does not affect the others. Results keep the
// order of sites.
func (o *Orchestrator) Preview(ctx context.Context, sites []*sitepulse.Site, rules *sitepulse.RuleSet) ([]PreviewResult, error) {
	results := make([]PreviewResult, len(sites))

	concurrency := o.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultGovernorCapacity
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, site := range sites {
		g.Go(func() error {
			urls, err := o.Worker.Crawler.Crawl(gctx, site.Origin, rules)
			results[i] = PreviewResult{Origin: site.Origin, URLs: urls, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
