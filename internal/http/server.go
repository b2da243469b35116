package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"railists/internal/core"
	"railists/internal/log"
	"railists/internal/metrics"
	"railists/internal/middleware/ratelimit"
	"railists/internal/middleware/security"
	"railists/internal/services"
	"railists/internal/storage"
)

// ReportProvider returns the reports of the current collection version.
type ReportProvider interface {
	Reports(ctx context.Context) (*services.Reports, error)
}

// Importer copies a collection file into the database.
type Importer interface {
	Import(ctx context.Context, path string) (storage.ImportRecord, error)
}

// WishListLoader loads the wish list on demand.
type WishListLoader func(ctx context.Context) (core.WishList, error)

// Options wires the server to its data. Reports is required; a nil
// WishList or Importer disables the matching endpoints.
type Options struct {
	Reports  ReportProvider
	WishList WishListLoader
	Importer Importer
	// ImportPath is the collection file POST /api/imports reads. Clients
	// never choose the path.
	ImportPath string

	Logger            *log.Logger
	RequestsPerMinute int
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
}

// Server is the report API.
type Server struct {
	http.Server

	opts         Options
	logger       *log.Logger
	limiter      *ratelimit.Limiter
	detector     *security.Detector
	started      time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 15 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 60 * time.Second
	}

	s := &Server{
		opts:     opts,
		logger:   logger.WithComponent(log.ComponentHTTP),
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RequestsPerMinute}),
		detector: security.NewDetector(),
		started:  time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	api := http.NewServeMux()
	api.HandleFunc("GET /api/collection", s.handleCollection)
	api.HandleFunc("GET /api/stats", s.handleStats)
	api.HandleFunc("GET /api/depot", s.handleDepot)
	api.HandleFunc("GET /api/export", s.handleExport)
	api.HandleFunc("GET /api/wishlist", s.handleWishList)
	api.HandleFunc("GET /api/wishlist/budget", s.handleBudget)
	api.HandleFunc("POST /api/imports", s.handleImport)

	onLimit := func(w http.ResponseWriter, r *http.Request) {
		metrics.IncSecurityEvent("rate_limited")
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded, retry later")
	}
	mux.Handle("/api/", s.limiter.Middleware(s.detector.ExtractClientIP, onLimit)(security.NoStore(api)))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.Server = http.Server{
		Addr:              addr,
		Handler:           log.Middleware(s.logger)(s.withDetection(headers.Middleware(mux))),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       opts.ReadTimeout,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       2 * time.Minute,
	}
	return s
}

// withDetection logs requests that look like scans. They are still served: the
// API is read only and the mux answers unknown paths with 404.
func (s *Server) withDetection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.IsSuspicious(r) {
			metrics.IncSecurityEvent("suspicious")
			log.FromContext(r.Context()).Warn("Suspicious request",
				log.FieldClientIP, s.detector.ExtractClientIP(r),
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown stops the limiter and drains in-flight requests. Only the first
// call has an effect.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
