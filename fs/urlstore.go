package fs

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/sitepulse"
)

// URLStore writes discovered URL lists, one file per site, with atomic
// update semantics. Lists are saved to a temporary directory, then moved
// into place on Commit.
type URLStore struct {
	baseDir string
	name    string
}

// NewURLStore creates a new URLStore.
// baseDir is the parent directory, name is the output directory name.
// Files are saved to baseDir/name.tmp and moved to baseDir/name on Commit.
func NewURLStore(baseDir, name string) *URLStore {
	return &URLStore{
		baseDir: baseDir,
		name:    name,
	}
}

func (s *URLStore) tempDir() string {
	return filepath.Join(s.baseDir, s.name+".tmp")
}

func (s *URLStore) finalDir() string {
	return filepath.Join(s.baseDir, s.name)
}

// Save writes urls for the site at origin, one per line.
func (s *URLStore) Save(origin string, urls []string) error {
	name, err := OriginToPath(origin)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.tempDir(), 0755); err != nil {
		return err
	}

	var b strings.Builder
	for _, u := range urls {
		b.WriteString(u)
		b.WriteByte('\n')
	}
	return os.WriteFile(filepath.Join(s.tempDir(), name), []byte(b.String()), 0644)
}

// Commit replaces the output directory with everything saved so far.
func (s *URLStore) Commit() error {
	if err := os.MkdirAll(s.tempDir(), 0755); err != nil {
		return err
	}
	if err := os.RemoveAll(s.finalDir()); err != nil {
		return err
	}
	return os.Rename(s.tempDir(), s.finalDir())
}

// Abort discards everything saved since the last Commit.
func (s *URLStore) Abort() error {
	return os.RemoveAll(s.tempDir())
}

// OriginToPath converts a site origin to its URL list file name.
// Example: https://example.com:8080/shop → example.com_8080_shop.txt
func OriginToPath(origin string) (string, error) {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return "", sitepulse.Errorf(sitepulse.EINVALID, "invalid site origin %q", origin)
	}

	name := u.Host + strings.TrimRight(u.Path, "/")
	name = strings.NewReplacer(":", "_", "/", "_").Replace(name)
	return name + ".txt", nil
}
