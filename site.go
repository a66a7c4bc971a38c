package sitepulse

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// Site represents one crawl target identified by its normalized origin.
type Site struct {
	ID        string    `json:"id"`
	Origin    string    `json:"origin"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate returns an error if the site contains invalid fields.
func (s *Site) Validate() error {
	if s.Origin == "" {
		return Errorf(EINVALID, "site origin required")
	}
	if _, err := NormalizeOrigin(s.Origin); err != nil {
		return err
	}
	return nil
}

// NormalizeOrigin parses raw as an absolute http(s) URL and returns its
// canonical form: lowercase scheme and host, no query or fragment, and no
// trailing slash.
func NormalizeOrigin(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", Errorf(EINVALID, "invalid site origin %q", raw)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", Errorf(EINVALID, "site origin %q must use http or https", raw)
	}
	if u.Opaque != "" || u.Host == "" {
		return "", Errorf(EINVALID, "site origin %q has no host", raw)
	}

	u.Scheme = scheme
	u.Host = strings.ToLower(u.Host)
	u.RawQuery = ""
	u.Fragment = ""
	u.RawFragment = ""
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	return u.String(), nil
}

// SiteSource provides the ordered list of sites for one crawl run.
type SiteSource interface {
	// Sites returns every configured site. A malformed entry fails the
	// whole load.
	Sites(ctx context.Context) ([]*Site, error)
}

// SiteService represents a service for managing sites.
type SiteService interface {
	SiteSource

	// CreateSite creates a new site.
	// Returns EINVALID if the origin is malformed.
	CreateSite(ctx context.Context, site *Site) error

	// FindSiteByID retrieves a site by ID.
	// Returns ENOTFOUND if site does not exist.
	FindSiteByID(ctx context.Context, id string) (*Site, error)

	// FindSites retrieves sites matching the filter.
	FindSites(ctx context.Context, filter SiteFilter) ([]*Site, error)

	// UpdateSite updates an existing site.
	// Returns ENOTFOUND if site does not exist.
	UpdateSite(ctx context.Context, id string, upd SiteUpdate) (*Site, error)

	// DeleteSite permanently removes a site.
	// Returns ENOTFOUND if site does not exist.
	DeleteSite(ctx context.Context, id string) error
}

// SiteFilter represents a filter for FindSites.
type SiteFilter struct {
	ID     *string `json:"id"`
	Origin *string `json:"origin"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// SiteUpdate represents fields that can be updated on a site.
type SiteUpdate struct {
	Origin *string `json:"origin"`
}
