package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/sitepulse"
	"github.com/fwojciec/sitepulse/crawl"
	"github.com/fwojciec/sitepulse/fs"
	sitepulsehttp "github.com/fwojciec/sitepulse/http"
	spprom "github.com/fwojciec/sitepulse/prometheus"
	spslog "github.com/fwojciec/sitepulse/slog"
	"github.com/fwojciec/sitepulse/sqlite"
	"github.com/fwojciec/sitepulse/toml"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// SQLite database, opened only when --db is set.
	DB *sqlite.DB

	// Registry collects the metrics served on /metrics.
	Registry *prom.Registry
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("sitepulse"),
		kong.Description("Discover site URLs from sitemaps and stream page reports"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'sitepulse --help' to see available commands")
	}

	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cfg := &cli.Config
	deps.Config = cfg

	logger, err := newLogger(stderr, cfg.LogLevel, cfg.LogJSON)
	if err != nil {
		return err
	}
	deps.Logger = logger

	if cfg.DB != "" {
		m.DB = sqlite.NewDB(cfg.DB)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(stderr, "Hint: Set SITEPULSE_DB to use a different database path\n")
			return fmt.Errorf("failed to open database at %q: %w", cfg.DB, err)
		}
		defer m.Close()

		svc := spslog.NewLoggingSiteService(sqlite.NewSiteService(m.DB), logger)
		deps.SiteService = svc
		deps.Sites = svc
	} else {
		deps.Sites = fs.NewSiteFile(cfg.SitesFile)
	}

	deps.Rules = toml.NewRuleFile(cfg.Rules, logger)

	m.Registry = prom.NewRegistry()
	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := spprom.NewMetrics(m.Registry)
	if err != nil {
		return err
	}
	deps.Registry = m.Registry
	deps.Metrics = metrics
	deps.Crawler = newCrawler(cfg, logger, metrics)

	return kongCtx.Run(deps)
}

// newCrawler builds the instrumented sitemap crawler.
func newCrawler(cfg *Config, logger *slog.Logger, metrics *spprom.Metrics) sitepulse.SitemapCrawler {
	var fetcher sitepulse.SitemapFetcher = sitepulsehttp.NewSitemapFetcher()
	fetcher = spslog.NewLoggingSitemapFetcher(fetcher, logger)
	fetcher = spprom.NewSitemapFetcher(fetcher, metrics)

	c := crawl.NewCrawler(fetcher)
	c.SkipFailedNested = cfg.SkipFailedNested
	c.RetryDelays = crawl.RetryDelays(cfg.SitemapRetries)

	var crawler sitepulse.SitemapCrawler = c
	crawler = spslog.NewLoggingSitemapCrawler(crawler, logger)
	return spprom.NewSitemapCrawler(crawler, metrics)
}

func newLogger(w io.Writer, level string, asJSON bool) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, sitepulse.Errorf(sitepulse.EINVALID, "invalid log level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if asJSON {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
