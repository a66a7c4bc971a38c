package main

import (
	"fmt"

	"github.com/fwojciec/sitepulse"
	"github.com/fwojciec/sitepulse/crawl"
	sitepulsehttp "github.com/fwojciec/sitepulse/http"
	spprom "github.com/fwojciec/sitepulse/prometheus"
	spslog "github.com/fwojciec/sitepulse/slog"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run executes the serve command. It blocks until the context is cancelled,
// then stops the server and releases every worker waiting for a permit.
func (c *ServeCmd) Run(deps *Dependencies) error {
	client, err := sitepulsehttp.NewReportClient(c.PSIURL, c.PSIKey)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitepulse.ErrorMessage(err))
		return err
	}
	var reports sitepulse.ReportClient = client
	reports = spslog.NewLoggingReportClient(reports, deps.Logger)
	reports = spprom.NewReportClient(reports, deps.Metrics)

	governor := crawl.NewGovernor(deps.Config.Concurrency)
	if err := spprom.RegisterGovernor(deps.Registry, governor); err != nil {
		return err
	}

	orchestrator := &crawl.Orchestrator{
		Worker: &crawl.Worker{
			Crawler:  deps.Crawler,
			Reports:  reports,
			Governor: governor,
			Quota:    crawl.NewHostLimiter(c.ReportRPS, c.ReportBurst),
			QuotaKey: client.Host(),
			Interval: c.Interval,
			Logger:   deps.Logger,
		},
		Concurrency: deps.Config.Concurrency,
	}

	s := sitepulsehttp.NewServer()
	s.Addr = c.Addr
	s.Sites = deps.Sites
	s.SiteService = deps.SiteService
	s.Rules = deps.Rules
	s.Pipeline = orchestrator
	s.SinkSize = c.SinkSize
	s.KeepAlive = c.KeepAlive
	s.Metrics = promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})
	s.Logger = deps.Logger

	if err := s.Open(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	deps.Logger.Info("listening", "url", s.URL())

	<-deps.Ctx.Done()

	deps.Logger.Info("shutting down")
	err = s.Close()
	governor.Close()
	return err
}
