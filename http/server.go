package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/fwojciec/sitepulse"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ShutdownTimeout is the time given for outstanding requests to finish before shutdown.
const ShutdownTimeout = 5 * time.Second

// Server exposes the report stream and site management over HTTP.
type Server struct {
	ln     net.Listener
	server *http.Server
	router chi.Router

	// Workers outlive the request that started them, so they run on the
	// server context instead. Close cancels it.
	ctx    context.Context
	cancel context.CancelFunc

	// Addr is the bind address for Open.
	Addr string

	// Sites provides the site list for each new subscription.
	Sites sitepulse.SiteSource

	// SiteService backs the /v1/sites routes. When nil they respond 503.
	SiteService sitepulse.SiteService

	Rules    sitepulse.RuleSource
	Pipeline sitepulse.Pipeline

	// SinkSize is the per-subscription event buffer.
	SinkSize int

	// KeepAlive is the idle interval between keep-alive frames.
	KeepAlive time.Duration

	// Metrics serves /metrics. Defaults to the default Prometheus registry.
	Metrics http.Handler

	Logger *slog.Logger
}

// NewServer returns a new instance of Server.
func NewServer() *Server {
	s := &Server{
		server: &http.Server{},
		router: chi.NewRouter(),
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.server.Handler = s.router

	s.router.Use(middleware.RequestID)
	s.router.Use(s.logRequests)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/metrics", s.handleMetrics)

	s.router.Route("/v1", func(r chi.Router) {
		r.Get("/reports", s.handleReportStream)
		s.registerSiteRoutes(r)
	})

	return s
}

// Open binds to Addr and starts serving in the background.
func (s *Server) Open() (err error) {
	if s.ln, err = net.Listen("tcp", s.Addr); err != nil {
		return err
	}
	go func() {
		if err := s.server.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger().Error("http server stopped", "error", err)
		}
	}()
	return nil
}

// Close stops all report streams and gracefully shuts down the server.
func (s *Server) Close() error {
	s.cancel()
	if s.ln == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// URL returns the base URL of the running server.
func (s *Server) URL() string {
	if s.ln == nil {
		return ""
	}
	return "http://" + s.ln.Addr().String()
}

// ServeHTTP routes a request. It lets the server be used with httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.Metrics != nil {
		s.Metrics.ServeHTTP(w, r)
		return
	}
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger().Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration", time.Since(start),
		)
	})
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Error writes err as a JSON error response with a status derived from its code.
func (s *Server) Error(w http.ResponseWriter, r *http.Request, err error) {
	code, message := sitepulse.ErrorCode(err), sitepulse.ErrorMessage(err)
	if code == sitepulse.EINTERNAL {
		s.logger().Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}
	writeError(w, ErrorStatusCode(code), message)
}

// ErrorStatusCode maps an application error code to an HTTP status.
func ErrorStatusCode(code string) int {
	switch code {
	case sitepulse.EINVALID:
		return http.StatusBadRequest
	case sitepulse.ENOTFOUND:
		return http.StatusNotFound
	case sitepulse.EFETCH, sitepulse.EREPORT:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Default().Error("write JSON failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
