package mock

import (
	"context"
	"encoding/json"

	"github.com/fwojciec/sitepulse"
)

var (
	_ sitepulse.ReportClient = (*ReportClient)(nil)
	_ sitepulse.Sink         = (*Sink)(nil)
	_ sitepulse.Governor     = (*Governor)(nil)
	_ sitepulse.Pacer        = (*Pacer)(nil)
	_ sitepulse.Pipeline     = (*Pipeline)(nil)
)

// ReportClient is a mock implementation of sitepulse.ReportClient.
type ReportClient struct {
	FetchReportFn func(ctx context.Context, url string) (json.RawMessage, error)
}

func (c *ReportClient) FetchReport(ctx context.Context, url string) (json.RawMessage, error) {
	return c.FetchReportFn(ctx, url)
}

// Sink is a mock implementation of sitepulse.Sink.
type Sink struct {
	PushFn func(ctx context.Context, evt sitepulse.ReportEvent) error
}

func (s *Sink) Push(ctx context.Context, evt sitepulse.ReportEvent) error {
	return s.PushFn(ctx, evt)
}

// Governor is a mock implementation of sitepulse.Governor.
type Governor struct {
	AcquireFn func(ctx context.Context) error
	ReleaseFn func()
}

func (g *Governor) Acquire(ctx context.Context) error {
	return g.AcquireFn(ctx)
}

func (g *Governor) Release() {
	g.ReleaseFn()
}

// Pacer is a mock implementation of sitepulse.Pacer.
type Pacer struct {
	WaitFn func(ctx context.Context, key string) error
}

func (p *Pacer) Wait(ctx context.Context, key string) error {
	return p.WaitFn(ctx, key)
}

// Pipeline is a mock implementation of sitepulse.Pipeline.
type Pipeline struct {
	StartFn func(ctx context.Context, sites []*sitepulse.Site, rules *sitepulse.RuleSet, sink sitepulse.Sink)
}

func (p *Pipeline) Start(ctx context.Context, sites []*sitepulse.Site, rules *sitepulse.RuleSet, sink sitepulse.Sink) {
	p.StartFn(ctx, sites, rules, sink)
}
