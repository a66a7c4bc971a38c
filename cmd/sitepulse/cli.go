package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/sitepulse"
	spprom "github.com/fwojciec/sitepulse/prometheus"
	prom "github.com/prometheus/client_golang/prometheus"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx         context.Context
	Stdout      io.Writer
	Stderr      io.Writer
	Config      *Config
	Logger      *slog.Logger
	Sites       sitepulse.SiteSource
	SiteService sitepulse.SiteService
	Rules       sitepulse.RuleSource
	Crawler     sitepulse.SitemapCrawler
	Metrics     *spprom.Metrics
	Registry    *prom.Registry
}

// Config holds the settings shared by every command.
type Config struct {
	DB               string `name:"db" env:"SITEPULSE_DB" help:"SQLite site registry; when unset sites are read from --sites-file"`
	SitesFile        string `name:"sites-file" env:"SITEPULSE_SITES_FILE" default:"sites.txt" help:"Newline-separated list of site origins"`
	Rules            string `name:"rules" env:"SITEPULSE_RULES" default:"config.toml" help:"TOML rule file with patterns and ignore_paths"`
	Concurrency      int    `name:"concurrency" default:"4" help:"Sites processed at the same time"`
	SitemapRetries   int    `name:"sitemap-retries" default:"0" help:"Retries of a failed sitemap fetch"`
	SkipFailedNested bool   `name:"skip-failed-nested" help:"Skip nested sitemaps that fail to fetch instead of aborting the site"`
	LogLevel         string `name:"log-level" default:"info" enum:"debug,info,warn,error" help:"Log level (debug, info, warn, error)"`
	LogJSON          bool   `name:"log-json" help:"Write logs as JSON"`
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config `embed:""`

	Serve ServeCmd `cmd:"" help:"Serve the report stream over HTTP"`
	Crawl CrawlCmd `cmd:"" help:"Discover URLs for every site without requesting reports"`
	Sites SitesCmd `cmd:"" help:"Manage the site registry (requires --db)"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr        string        `name:"addr" env:"SITEPULSE_ADDR" default:":8080" help:"Listen address"`
	PSIURL      string        `name:"psi-url" env:"PSI_URL" default:"https://www.googleapis.com/pagespeedonline/v5/runPagespeed" help:"Report API endpoint"`
	PSIKey      string        `name:"psi-key" env:"PSI_KEY" help:"Report API key"`
	Interval    time.Duration `name:"interval" default:"2s" help:"Pause between report requests of one site"`
	ReportRPS   float64       `name:"report-rps" default:"0" help:"Combined report request rate limit; 0 is unlimited"`
	ReportBurst int           `name:"report-burst" default:"1" help:"Report requests allowed back to back under --report-rps"`
	SinkSize    int           `name:"sink-size" default:"10" help:"Buffered events per subscriber"`
	KeepAlive   time.Duration `name:"keep-alive" default:"15s" help:"Idle interval between keep-alive frames"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	Output string `short:"o" type:"path" help:"Directory to write one URL list per site"`
	Quiet  bool   `short:"q" help:"Print only per-site counts"`
}

// SitesCmd groups the site registry subcommands.
type SitesCmd struct {
	Add    SitesAddCmd    `cmd:"" help:"Register a site"`
	List   SitesListCmd   `cmd:"" help:"List registered sites"`
	Delete SitesDeleteCmd `cmd:"" help:"Remove a site"`
}

// SitesAddCmd is the "sites add" subcommand.
type SitesAddCmd struct {
	Origin string `arg:"" help:"Site origin, e.g. https://example.com"`
}

// SitesListCmd is the "sites list" subcommand.
type SitesListCmd struct{}

// SitesDeleteCmd is the "sites delete" subcommand.
type SitesDeleteCmd struct {
	Origin string `arg:"" help:"Site origin or ID"`
	Force  bool   `help:"Confirm deletion"`
}
