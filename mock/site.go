package mock

import (
	"context"

	"github.com/fwojciec/sitepulse"
)

var (
	_ sitepulse.SiteService = (*SiteService)(nil)
	_ sitepulse.SiteSource  = (*SiteSource)(nil)
	_ sitepulse.RuleSource  = (*RuleSource)(nil)
)

// SiteService is a mock implementation of sitepulse.SiteService.
type SiteService struct {
	SitesFn        func(ctx context.Context) ([]*sitepulse.Site, error)
	CreateSiteFn   func(ctx context.Context, site *sitepulse.Site) error
	FindSiteByIDFn func(ctx context.Context, id string) (*sitepulse.Site, error)
	FindSitesFn    func(ctx context.Context, filter sitepulse.SiteFilter) ([]*sitepulse.Site, error)
	UpdateSiteFn   func(ctx context.Context, id string, upd sitepulse.SiteUpdate) (*sitepulse.Site, error)
	DeleteSiteFn   func(ctx context.Context, id string) error
}

func (s *SiteService) Sites(ctx context.Context) ([]*sitepulse.Site, error) {
	return s.SitesFn(ctx)
}

func (s *SiteService) CreateSite(ctx context.Context, site *sitepulse.Site) error {
	return s.CreateSiteFn(ctx, site)
}

func (s *SiteService) FindSiteByID(ctx context.Context, id string) (*sitepulse.Site, error) {
	return s.FindSiteByIDFn(ctx, id)
}

func (s *SiteService) FindSites(ctx context.Context, filter sitepulse.SiteFilter) ([]*sitepulse.Site, error) {
	return s.FindSitesFn(ctx, filter)
}

func (s *SiteService) UpdateSite(ctx context.Context, id string, upd sitepulse.SiteUpdate) (*sitepulse.Site, error) {
	return s.UpdateSiteFn(ctx, id, upd)
}

func (s *SiteService) DeleteSite(ctx context.Context, id string) error {
	return s.DeleteSiteFn(ctx, id)
}

// SiteSource is a mock implementation of sitepulse.SiteSource.
type SiteSource struct {
	SitesFn func(ctx context.Context) ([]*sitepulse.Site, error)
}

func (s *SiteSource) Sites(ctx context.Context) ([]*sitepulse.Site, error) {
	return s.SitesFn(ctx)
}

// RuleSource is a mock implementation of sitepulse.RuleSource.
type RuleSource struct {
	LoadRulesFn func(ctx context.Context) (*sitepulse.RuleSet, error)
}

func (s *RuleSource) LoadRules(ctx context.Context) (*sitepulse.RuleSet, error) {
	return s.LoadRulesFn(ctx)
}
