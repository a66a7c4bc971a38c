package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/fwojciec/sitepulse"
)

// Ensure ReportClient implements sitepulse.ReportClient.
var _ sitepulse.ReportClient = (*ReportClient)(nil)

// ReportClient requests page analysis reports from a PageSpeed-style API:
// GET <endpoint>?url=<page>&key=<key>.
type ReportClient struct {
	endpoint *url.URL
	key      string
	client   *http.Client
}

// NewReportClient creates a ReportClient for endpoint. key may be empty.
func NewReportClient(endpoint, key string, opts ...Option) (*ReportClient, error) {
	u, err := url.Parse(endpoint)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return nil, sitepulse.Errorf(sitepulse.EINVALID, "invalid report endpoint %q", endpoint)
	}
	return &ReportClient{endpoint: u, key: key, client: newClient(opts)}, nil
}

// Host returns the host of the report endpoint.
func (c *ReportClient) Host() string {
	return c.endpoint.Host
}

// FetchReport requests the report for target. The response body must be
// valid JSON; it is returned unmodified.
func (c *ReportClient) FetchReport(ctx context.Context, target string) (json.RawMessage, error) {
	u := *c.endpoint
	q := u.Query()
	q.Set("url", target)
	if c.key != "" {
		q.Set("key", c.key)
	}
	u.RawQuery = q.Encode()

	body, err := get(ctx, c.client, u.String())
	if err != nil {
		return nil, sitepulse.WrapError(sitepulse.EREPORT, c.redact(err), "report request failed for %s", target)
	}
	if !json.Valid(body) {
		return nil, sitepulse.Errorf(sitepulse.EREPORT, "report for %s is not valid JSON", target)
	}
	return json.RawMessage(body), nil
}

// redact strips the API key from URLs carried by err.
func (c *ReportClient) redact(err error) error {
	if c.key == "" {
		return err
	}
	u := *c.endpoint
	u.RawQuery = ""
	var se *sitepulse.StatusError
	if errors.As(err, &se) {
		se.URL = u.String()
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		ue.URL = u.String()
	}
	return err
}
