package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sitepulse"
)

// Ensure LoggingSiteService implements sitepulse.SiteService.
var _ sitepulse.SiteService = (*LoggingSiteService)(nil)

// LoggingSiteService wraps a SiteService with logging of mutations and lookups.
type LoggingSiteService struct {
	next   sitepulse.SiteService
	logger *slog.Logger
}

// NewLoggingSiteService creates a new LoggingSiteService.
func NewLoggingSiteService(next sitepulse.SiteService, logger *slog.Logger) *LoggingSiteService {
	return &LoggingSiteService{next: next, logger: logger}
}

func (s *LoggingSiteService) Sites(ctx context.Context) (sites []*sitepulse.Site, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("site list", "count", len(sites), "duration", time.Since(begin), "err", err)
	}(time.Now())
	return s.next.Sites(ctx)
}

func (s *LoggingSiteService) CreateSite(ctx context.Context, site *sitepulse.Site) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("site create", "origin", site.Origin, "id", site.ID, "duration", time.Since(begin), "err", err)
	}(time.Now())
	return s.next.CreateSite(ctx, site)
}

func (s *LoggingSiteService) FindSiteByID(ctx context.Context, id string) (site *sitepulse.Site, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("site find", "id", id, "duration", time.Since(begin), "err", err)
	}(time.Now())
	return s.next.FindSiteByID(ctx, id)
}

func (s *LoggingSiteService) FindSites(ctx context.Context, filter sitepulse.SiteFilter) (sites []*sitepulse.Site, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("site search", "count", len(sites), "duration", time.Since(begin), "err", err)
	}(time.Now())
	return s.next.FindSites(ctx, filter)
}

func (s *LoggingSiteService) UpdateSite(ctx context.Context, id string, upd sitepulse.SiteUpdate) (site *sitepulse.Site, err error) {
	defer func(begin time.Time) {
		s.logger.Info("site update", "id", id, "duration", time.Since(begin), "err", err)
	}(time.Now())
	return s.next.UpdateSite(ctx, id, upd)
}

func (s *LoggingSiteService) DeleteSite(ctx context.Context, id string) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("site delete", "id", id, "duration", time.Since(begin), "err", err)
	}(time.Now())
	return s.next.DeleteSite(ctx, id)
}
