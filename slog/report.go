package slog

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/fwojciec/sitepulse"
)

// Ensure LoggingReportClient implements sitepulse.ReportClient.
var _ sitepulse.ReportClient = (*LoggingReportClient)(nil)

// LoggingReportClient wraps a ReportClient with logging.
type LoggingReportClient struct {
	next   sitepulse.ReportClient
	logger *slog.Logger
}

// NewLoggingReportClient creates a new LoggingReportClient.
func NewLoggingReportClient(next sitepulse.ReportClient, logger *slog.Logger) *LoggingReportClient {
	return &LoggingReportClient{next: next, logger: logger}
}

// FetchReport delegates to the wrapped client and logs the operation.
func (c *LoggingReportClient) FetchReport(ctx context.Context, url string) (report json.RawMessage, err error) {
	defer func(begin time.Time) {
		c.logger.Info("report request",
			"url", url,
			"bytes", len(report),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.FetchReport(ctx, url)
}
