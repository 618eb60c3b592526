// Package server exposes the quadtree pipeline over HTTP: flip,
// overlay and analyze endpoints that accept multipart image uploads
// and return processed PNG bytes with stats in response headers.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzhttp"

	"github.com/jpfielding/quadpix.go/pkg/history"
	"github.com/jpfielding/quadpix.go/pkg/logging"
)

// Server drives the build/transform/reconstruct pipeline per request.
// It holds no per-request state; concurrent requests run isolated
// pipelines on independently owned trees.
type Server struct {
	cfg     Config
	records history.Repository // nil disables the history endpoint
	version string
}

// New assembles a server. records may be nil.
func New(cfg Config, records history.Repository, version string) *Server {
	return &Server{cfg: cfg, records: records, version: version}
}

// Handler returns the routed handler with request-ID logging and
// transparent gzip response compression applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("POST /flip", s.handleFlip)
	mux.HandleFunc("POST /overlay", s.handleOverlay)
	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("GET /history", s.handleHistory)
	return gzhttp.GzipHandler(s.withRequestLog(mux))
}

// statusWriter remembers the status code for the request log.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := uuid.NewString()
		ctx := logging.AppendCtx(r.Context(), slog.String("request_id", id))
		w.Header().Set("X-Request-ID", id)

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r.WithContext(ctx))

		slog.InfoContext(ctx, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start).String(),
		)
	})
}
