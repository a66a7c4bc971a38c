package main

import (
	"fmt"
	"path/filepath"

	"github.com/fwojciec/sitepulse"
	"github.com/fwojciec/sitepulse/crawl"
	"github.com/fwojciec/sitepulse/fs"
)

// Run executes the crawl command. Every site is crawled; failures are
// reported per site and make the command fail once all sites are done.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	sites, err := deps.Sites.Sites(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitepulse.ErrorMessage(err))
		return err
	}
	if len(sites) == 0 {
		fmt.Fprintln(deps.Stdout, "No sites configured.")
		return nil
	}

	rules, err := deps.Rules.LoadRules(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitepulse.ErrorMessage(err))
		return err
	}

	orchestrator := &crawl.Orchestrator{
		Worker:      &crawl.Worker{Crawler: deps.Crawler},
		Concurrency: deps.Config.Concurrency,
	}
	results, err := orchestrator.Preview(deps.Ctx, sites, rules)
	if err != nil {
		return err
	}

	var store *fs.URLStore
	if c.Output != "" {
		store = fs.NewURLStore(filepath.Dir(c.Output), filepath.Base(c.Output))
	}

	var failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(deps.Stderr, "%s: %s\n", r.Origin, sitepulse.ErrorMessage(r.Err))
			continue
		}
		fmt.Fprintf(deps.Stdout, "%s  %d URLs\n", r.Origin, len(r.URLs))
		if !c.Quiet {
			for _, u := range r.URLs {
				fmt.Fprintf(deps.Stdout, "  %s\n", u)
			}
		}
		if store != nil {
			if err := store.Save(r.Origin, r.URLs); err != nil {
				_ = store.Abort()
				return fmt.Errorf("failed to save URLs for %s: %w", r.Origin, err)
			}
		}
	}

	if store != nil {
		if err := store.Commit(); err != nil {
			return fmt.Errorf("failed to write %s: %w", c.Output, err)
		}
	}

	if failed > 0 {
		return sitepulse.Errorf(sitepulse.EFETCH, "%d of %d sites failed", failed, len(results))
	}
	return nil
}
