package main_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fwojciec/sitepulse"
	main "github.com/fwojciec/sitepulse/cmd/sitepulse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSitemapServer serves a sitemap index with one nested sitemap.
func newSitemapServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/sitemaps.xml", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `<sitemapindex><sitemap><loc>%s/sitemaps/pages.xml</loc></sitemap></sitemapindex>`, srv.URL)
	})
	mux.HandleFunc("/sitemaps/pages.xml", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `<urlset>
  <url><loc>%[1]s/</loc></url>
  <url><loc>%[1]s/blog/first</loc></url>
  <url><loc>%[1]s/blog/second</loc></url>
  <url><loc>%[1]s/admin/login</loc></url>
</urlset>`, srv.URL)
	})
	return srv
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestMain_Run_CrawlFromSitesFile(t *testing.T) {
	t.Parallel()

	srv := newSitemapServer(t)
	sitesFile := writeFile(t, "sites.txt", "# monitored\n"+srv.URL+"\n")
	rulesFile := writeFile(t, "config.toml", `
patterns = ["/blog/:slug"]
ignore_paths = ["/admin"]
`)

	m := main.NewMain()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{
		"--sites-file", sitesFile,
		"--rules", rulesFile,
		"crawl",
	}, stdout, stderr)

	require.NoError(t, err, stderr.String())
	expected := srv.URL + "  2 URLs\n" +
		"  " + srv.URL + "/\n" +
		"  " + srv.URL + "/blog/first\n"
	assert.Equal(t, expected, stdout.String())
}

func TestMain_Run_MissingRulesFileFiltersNothing(t *testing.T) {
	t.Parallel()

	srv := newSitemapServer(t)
	sitesFile := writeFile(t, "sites.txt", srv.URL+"\n")

	m := main.NewMain()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{
		"--sites-file", sitesFile,
		"--rules", filepath.Join(t.TempDir(), "missing.toml"),
		"crawl", "--quiet",
	}, stdout, stderr)

	require.NoError(t, err)
	assert.Equal(t, srv.URL+"  4 URLs\n", stdout.String())
}

func TestMain_Run_SiteRegistry(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "sitepulse.db")
	run := func(args ...string) (string, error) {
		m := main.NewMain()
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		err := m.Run(context.Background(), append([]string{"--db", dbPath}, args...), stdout, stderr)
		return stdout.String(), err
	}

	out, err := run("sites", "add", "https://Example.com/")
	require.NoError(t, err)
	assert.Contains(t, out, "Added site https://example.com")

	_, err = run("sites", "add", "https://example.com")
	require.Error(t, err)
	assert.Equal(t, sitepulse.EINVALID, sitepulse.ErrorCode(err))

	out, err = run("sites", "list")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "https://example.com"))

	out, err = run("sites", "delete", "https://example.com", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted site https://example.com")

	out, err = run("sites", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No sites found")
}

func TestMain_Run_SitesWithoutDatabaseFails(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"--db", "", "sites", "list"}, stdout, stderr)

	require.Error(t, err)
	assert.Equal(t, sitepulse.EINVALID, sitepulse.ErrorCode(err))
}

func TestMain_Run_ServeStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := main.NewMain()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(ctx, []string{
		"--sites-file", writeFile(t, "sites.txt", ""),
		"serve", "--addr", "127.0.0.1:0", "--psi-url", "http://127.0.0.1:1/report",
	}, stdout, stderr)

	require.NoError(t, err)
	assert.Contains(t, stderr.String(), "shutting down")
}

func TestMain_Run_ServeRejectsInvalidEndpoint(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{
		"serve", "--addr", "127.0.0.1:0", "--psi-url", "not a url",
	}, stdout, stderr)

	require.Error(t, err)
	assert.Equal(t, sitepulse.EINVALID, sitepulse.ErrorCode(err))
}

func TestMain_Run_InvalidLogLevelFails(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"--log-level", "loud", "crawl"}, stdout, stderr)

	require.Error(t, err)
}
