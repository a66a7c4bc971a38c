package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/fwojciec/sitepulse"
	"github.com/google/uuid"
	"github.com/ncruces/go-sqlite3"
)

// Compile-time interface verification.
var _ sitepulse.SiteService = (*SiteService)(nil)

// SiteService implements sitepulse.SiteService using SQLite.
type SiteService struct {
	db *DB
}

// NewSiteService creates a new SiteService.
func NewSiteService(db *DB) *SiteService {
	return &SiteService{db: db}
}

// Sites returns every registered site in registration order.
func (s *SiteService) Sites(ctx context.Context) ([]*sitepulse.Site, error) {
	return s.FindSites(ctx, sitepulse.SiteFilter{})
}

// CreateSite registers a new site. The origin is stored in normalized form.
func (s *SiteService) CreateSite(ctx context.Context, site *sitepulse.Site) error {
	if err := site.Validate(); err != nil {
		return err
	}
	origin, err := sitepulse.NormalizeOrigin(site.Origin)
	if err != nil {
		return err
	}
	if err := s.ensureOriginFree(ctx, origin, ""); err != nil {
		return err
	}

	site.ID = uuid.New().String()
	site.Origin = origin
	now := s.db.now()
	site.CreatedAt = now
	site.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sites (id, origin, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, site.ID, site.Origin, formatTime(site.CreatedAt), formatTime(site.UpdatedAt))

	return originConflict(err, site.Origin)
}

// FindSiteByID retrieves a site by ID.
func (s *SiteService) FindSiteByID(ctx context.Context, id string) (*sitepulse.Site, error) {
	sites, err := s.FindSites(ctx, sitepulse.SiteFilter{ID: &id, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(sites) == 0 {
		return nil, sitepulse.Errorf(sitepulse.ENOTFOUND, "site not found")
	}
	return sites[0], nil
}

// FindSites retrieves sites matching the filter in registration order.
func (s *SiteService) FindSites(ctx context.Context, filter sitepulse.SiteFilter) ([]*sitepulse.Site, error) {
	var w where
	if filter.ID != nil {
		w.add("id = ?", *filter.ID)
	}
	if filter.Origin != nil {
		w.add("origin = ?", *filter.Origin)
	}

	var query strings.Builder
	query.WriteString("SELECT id, origin, created_at, updated_at FROM sites")
	w.writeTo(&query)
	query.WriteString(" ORDER BY created_at ASC, rowid ASC")
	args := page(&query, w.args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sites := []*sitepulse.Site{}
	for rows.Next() {
		var site sitepulse.Site
		var createdAt, updatedAt string

		if err := rows.Scan(&site.ID, &site.Origin, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		if site.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
			return nil, err
		}
		if site.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
			return nil, err
		}

		sites = append(sites, &site)
	}

	return sites, rows.Err()
}

// UpdateSite updates an existing site.
func (s *SiteService) UpdateSite(ctx context.Context, id string, upd sitepulse.SiteUpdate) (*sitepulse.Site, error) {
	site, err := s.FindSiteByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Origin != nil {
		site.Origin = *upd.Origin
	}
	if err := site.Validate(); err != nil {
		return nil, err
	}
	if site.Origin, err = sitepulse.NormalizeOrigin(site.Origin); err != nil {
		return nil, err
	}
	if err := s.ensureOriginFree(ctx, site.Origin, id); err != nil {
		return nil, err
	}

	site.UpdatedAt = s.db.now()

	_, err = s.db.ExecContext(ctx, `
		UPDATE sites
		SET origin = ?, updated_at = ?
		WHERE id = ?
	`, site.Origin, formatTime(site.UpdatedAt), id)
	if err != nil {
		return nil, originConflict(err, site.Origin)
	}

	return site, nil
}

// DeleteSite permanently removes a site.
func (s *SiteService) DeleteSite(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM sites WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return sitepulse.Errorf(sitepulse.ENOTFOUND, "site not found")
	}

	return nil
}

// ensureOriginFree returns EINVALID if origin belongs to a site other than exceptID.
func (s *SiteService) ensureOriginFree(ctx context.Context, origin, exceptID string) error {
	var id string
	err := s.db.QueryRowContext(ctx, "SELECT id FROM sites WHERE origin = ?", origin).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}
	if id == exceptID {
		return nil
	}
	return sitepulse.Errorf(sitepulse.EINVALID, "site %s already exists", origin)
}

// originConflict reports a UNIQUE violation on origin as EINVALID. It covers
// a concurrent write landing between ensureOriginFree and the statement.
func originConflict(err error, origin string) error {
	if errors.Is(err, sqlite3.CONSTRAINT_UNIQUE) {
		return sitepulse.Errorf(sitepulse.EINVALID, "site %s already exists", origin)
	}
	return err
}
