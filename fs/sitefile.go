// Package fs provides file-based site lists and crawl output.
package fs

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fwojciec/sitepulse"
)

// DefaultSiteFile is the conventional site list file name.
const DefaultSiteFile = "sites.txt"

// Ensure SiteFile implements sitepulse.SiteSource at compile time.
var _ sitepulse.SiteSource = (*SiteFile)(nil)

// SiteFile reads the site list from a newline-delimited file of origins.
// Blank lines and lines starting with '#' are skipped. A site is identified by
// its normalized origin, so repeated entries load once.
type SiteFile struct {
	path string
}

// NewSiteFile creates a SiteFile reading from path.
func NewSiteFile(path string) *SiteFile {
	return &SiteFile{path: path}
}

// Sites reads and validates every entry. Any malformed entry fails the whole
// load with EINVALID, naming its line number.
func (f *SiteFile) Sites(ctx context.Context) ([]*sitepulse.Site, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("open site list: %w", err)
	}
	defer file.Close()

	sites := []*sitepulse.Site{}
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(file)
	for n := 1; scanner.Scan(); n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		origin, err := sitepulse.NormalizeOrigin(line)
		if err != nil {
			return nil, sitepulse.WrapError(sitepulse.EINVALID, err, "%s:%d: invalid site %q", f.path, n, line)
		}
		if _, ok := seen[origin]; ok {
			continue
		}
		seen[origin] = struct{}{}
		sites = append(sites, &sitepulse.Site{ID: origin, Origin: origin})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading site list: %w", err)
	}

	return sites, nil
}
