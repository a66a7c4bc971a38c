package sitepulse_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/fwojciec/sitepulse"
	"github.com/stretchr/testify/assert"
)

func TestNewReportEvent(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	report := json.RawMessage(`{"score":0.9}`)

	evt := sitepulse.NewReportEvent("https://a.test", "https://a.test/page", report, at)

	assert.Equal(t, "https://a.test", evt.Site)
	assert.Equal(t, "https://a.test/page", evt.URL)
	assert.JSONEq(t, `{"score":0.9}`, string(evt.Report))
	assert.Equal(t, at, evt.FetchedAt)
	assert.NotEmpty(t, evt.Digest)

	t.Run("digest is stable for the same url and report", func(t *testing.T) {
		t.Parallel()

		again := sitepulse.NewReportEvent("https://a.test", "https://a.test/page", report, at.Add(time.Hour))

		assert.Equal(t, evt.Digest, again.Digest)
	})

	t.Run("digest changes with url or report", func(t *testing.T) {
		t.Parallel()

		otherURL := sitepulse.NewReportEvent("https://a.test", "https://a.test/other", report, at)
		otherReport := sitepulse.NewReportEvent("https://a.test", "https://a.test/page", json.RawMessage(`{"score":0.5}`), at)

		assert.NotEqual(t, evt.Digest, otherURL.Digest)
		assert.NotEqual(t, evt.Digest, otherReport.Digest)
	})
}
