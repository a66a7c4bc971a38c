package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/fwojciec/sitepulse"
	"github.com/fwojciec/sitepulse/crawl"
	"github.com/google/uuid"
)

// DefaultKeepAlive is the idle interval between keep-alive frames.
const DefaultKeepAlive = 15 * time.Second

// Stream event names.
const (
	EventReport = "report"
	EventError  = "error"
)

// handleReportStream subscribes the caller to report events for every
// configured site. The stream only ends when the client goes away or the
// server shuts down.
func (s *Server) handleReportStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	if s.Sites == nil || s.Pipeline == nil {
		writeError(w, http.StatusServiceUnavailable, "report pipeline unavailable")
		return
	}

	ctx := r.Context()
	logger := s.logger().With("subscription", uuid.NewString())

	sites, err := s.Sites.Sites(ctx)
	if err != nil {
		logger.Error("unable to load site list", "error", err)
		s.Error(w, r, err)
		return
	}
	rules := s.loadRules(ctx, logger)

	sink := crawl.NewChannelSink(s.SinkSize)
	defer sink.Disconnect()

	setStreamHeaders(w)
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	logger.Info("subscriber connected", "sites", len(sites))
	s.Pipeline.Start(s.ctx, sites, rules, sink)

	keepAlive := s.KeepAlive
	if keepAlive <= 0 {
		keepAlive = DefaultKeepAlive
	}
	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	for {
		select {
		case evt := <-sink.Events():
			if err := writeReportFrame(w, evt); err != nil {
				logger.Debug("stream write failed", "error", err)
				return
			}
			flusher.Flush()
			ticker.Reset(keepAlive)
		case <-ticker.C:
			if _, err := io.WriteString(w, ": keep-alive\n\n"); err != nil {
				logger.Debug("keep-alive write failed", "error", err)
				return
			}
			flusher.Flush()
		case <-ctx.Done():
			logger.Info("subscriber disconnected")
			return
		case <-s.ctx.Done():
			logger.Info("server shutting down, closing stream")
			return
		}
	}
}

// loadRules returns the configured rule set, or an empty one when it cannot
// be loaded.
func (s *Server) loadRules(ctx context.Context, logger *slog.Logger) *sitepulse.RuleSet {
	if s.Rules == nil {
		return &sitepulse.RuleSet{}
	}
	rules, err := s.Rules.LoadRules(ctx)
	if err != nil || rules == nil {
		logger.Warn("unable to load rules, continuing without filters", "error", err)
		return &sitepulse.RuleSet{}
	}
	return rules
}

func setStreamHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
}

// writeReportFrame writes evt as one named frame. An event that cannot be
// encoded is replaced by an error frame so the stream stays usable.
func writeReportFrame(w io.Writer, evt sitepulse.ReportEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		msg, _ := json.Marshal(map[string]string{"url": evt.URL, "error": err.Error()})
		_, werr := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", EventError, msg)
		return werr
	}
	_, err = fmt.Fprintf(w, "event: %s\nid: %s\ndata: %s\n\n", EventReport, evt.Digest, data)
	return err
}
