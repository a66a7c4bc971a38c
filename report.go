package sitepulse

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
)

// ReportClient requests an analysis report for a content URL.
type ReportClient interface {
	// FetchReport returns the raw JSON report for url.
	// Any transport failure, non-success status, or non-JSON body
	// returns EREPORT. Implementations do not retry.
	FetchReport(ctx context.Context, url string) (json.RawMessage, error)
}

// ReportEvent carries one successful report downstream to the subscriber.
type ReportEvent struct {
	Site      string          `json:"site"`
	URL       string          `json:"url"`
	Report    json.RawMessage `json:"report"`
	Digest    string          `json:"digest"`
	FetchedAt time.Time       `json:"fetchedAt"`
}

// NewReportEvent builds an event for the report fetched for url.
// The digest identifies the exact (url, report) pair.
func NewReportEvent(site, url string, report json.RawMessage, fetchedAt time.Time) ReportEvent {
	d := xxhash.New()
	_, _ = d.WriteString(url)
	_, _ = d.Write([]byte{0})
	_, _ = d.Write(report)
	return ReportEvent{
		Site:      site,
		URL:       url,
		Report:    report,
		Digest:    strconv.FormatUint(d.Sum64(), 16),
		FetchedAt: fetchedAt,
	}
}

// Sink is the bounded hand-off between report producers and one subscriber.
type Sink interface {
	// Push delivers evt, blocking while the buffer is full.
	// Returns ErrDisconnected once the subscriber is gone.
	Push(ctx context.Context, evt ReportEvent) error
}

// Governor bounds how many workers may run concurrently.
type Governor interface {
	// Acquire blocks until a permit is available.
	// Returns ErrGovernorClosed if the governor is closed or ctx ends first.
	Acquire(ctx context.Context) error

	// Release returns a permit obtained from Acquire.
	Release()
}

// Pacer throttles outbound requests per key (typically a host).
type Pacer interface {
	// Wait blocks until a request for key is allowed.
	// Returns an error if the context is canceled before the wait completes.
	Wait(ctx context.Context, key string) error
}

// Pipeline starts the report workers for one subscription.
type Pipeline interface {
	// Start launches one worker per site and returns without waiting for
	// them. Results reach the subscriber only through sink.
	Start(ctx context.Context, sites []*Site, rules *RuleSet, sink Sink)
}
