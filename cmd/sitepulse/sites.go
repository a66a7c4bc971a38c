package main

import (
	"fmt"

	"github.com/fwojciec/sitepulse"
)

func requireSiteService(deps *Dependencies) error {
	if deps.SiteService == nil {
		fmt.Fprintln(deps.Stderr, "error: site registry requires --db or SITEPULSE_DB")
		return sitepulse.Errorf(sitepulse.EINVALID, "site registry requires --db")
	}
	return nil
}

// Run executes the sites add command.
func (c *SitesAddCmd) Run(deps *Dependencies) error {
	if err := requireSiteService(deps); err != nil {
		return err
	}

	site := &sitepulse.Site{Origin: c.Origin}
	if err := deps.SiteService.CreateSite(deps.Ctx, site); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitepulse.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Added site %s (%s)\n", site.Origin, site.ID)
	return nil
}

// Run executes the sites list command.
func (c *SitesListCmd) Run(deps *Dependencies) error {
	if err := requireSiteService(deps); err != nil {
		return err
	}

	sites, err := deps.SiteService.FindSites(deps.Ctx, sitepulse.SiteFilter{})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitepulse.ErrorMessage(err))
		return err
	}

	if len(sites) == 0 {
		fmt.Fprintln(deps.Stdout, "No sites found. Use 'sitepulse sites add' to register one.")
		return nil
	}

	for _, s := range sites {
		fmt.Fprintf(deps.Stdout, "%s  %s  %s\n", s.ID, s.Origin, s.CreatedAt.Format("2006-01-02"))
	}
	return nil
}

// Run executes the sites delete command. The argument may be a site ID or
// an origin.
func (c *SitesDeleteCmd) Run(deps *Dependencies) error {
	if err := requireSiteService(deps); err != nil {
		return err
	}

	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return sitepulse.Errorf(sitepulse.EINVALID, "use --force to confirm deletion")
	}

	site, err := c.find(deps)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitepulse.ErrorMessage(err))
		return err
	}

	if err := deps.SiteService.DeleteSite(deps.Ctx, site.ID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitepulse.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted site %s\n", site.Origin)
	return nil
}

func (c *SitesDeleteCmd) find(deps *Dependencies) (*sitepulse.Site, error) {
	filter := sitepulse.SiteFilter{ID: &c.Origin}
	if origin, err := sitepulse.NormalizeOrigin(c.Origin); err == nil {
		filter = sitepulse.SiteFilter{Origin: &origin}
	}

	sites, err := deps.SiteService.FindSites(deps.Ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(sites) == 0 {
		return nil, sitepulse.Errorf(sitepulse.ENOTFOUND, "site %q not found. Use 'sitepulse sites list' to see registered sites", c.Origin)
	}
	return sites[0], nil
}
