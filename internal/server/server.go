// Package server exposes template storage and fit computation over HTTP.
//
// Routes:
//
//	GET    /healthz
//	GET    /templates
//	GET    /templates/{id}
//	PUT    /templates/{id}          body: template in any accepted shape
//	DELETE /templates/{id}
//	GET    /templates/{id}/preview  SVG wireframe
//	POST   /templates/migrate       body: template in any accepted shape
//	POST   /fit
//
// Errors are JSON objects {"error": CODE, "message": text}.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/robfig/cron/v3"

	"github.com/matzehuels/framecraft/pkg/cache"
	"github.com/matzehuels/framecraft/pkg/editor"
	"github.com/matzehuels/framecraft/pkg/store"
)

// Defaults.
const (
	DefaultMaxBody      = 4 << 20
	DefaultFetchTimeout = 30 * time.Second
	shutdownTimeout     = 10 * time.Second
)

// Pruner drops expired cache entries. cache.FileCache implements it.
type Pruner interface {
	Prune(ctx context.Context) (int, error)
}

// Options configures a Server.
type Options struct {
	// Store holds templates. Required.
	Store store.Store

	// Prober resolves image sizes for POST /fit requests that name a
	// source instead of a native size. Optional.
	Prober editor.Prober

	// Cache keeps rendered previews. Defaults to no caching.
	Cache cache.Cache
	Keyer cache.Keyer

	// Pruner and PruneSchedule enable periodic cache pruning. The schedule
	// is a cron expression such as "@hourly".
	Pruner        Pruner
	PruneSchedule string

	// FetchTimeout bounds a single probe.
	FetchTimeout time.Duration

	// MaxBody limits request bodies in bytes.
	MaxBody int64

	Logger *log.Logger
}

// SetDefaults fills zero-valued fields.
func (o *Options) SetDefaults() {
	if o.FetchTimeout == 0 {
		o.FetchTimeout = DefaultFetchTimeout
	}
	if o.MaxBody == 0 {
		o.MaxBody = DefaultMaxBody
	}
	if o.Cache == nil {
		o.Cache = cache.NewNullCache()
	}
	if o.Keyer == nil {
		o.Keyer = cache.NewDefaultKeyer()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Server is the HTTP API.
type Server struct {
	opts   Options
	router chi.Router
	cron   *cron.Cron
	logger *log.Logger
}

// New builds the router and, when configured, the prune schedule. The
// schedule does not run until Start.
func New(opts Options) (*Server, error) {
	opts.SetDefaults()
	if opts.Store == nil {
		return nil, fmt.Errorf("server: store is required")
	}

	s := &Server{opts: opts, logger: opts.Logger}
	s.router = s.routes()

	if opts.Pruner != nil && opts.PruneSchedule != "" {
		s.cron = cron.New()
		if _, err := s.cron.AddFunc(opts.PruneSchedule, s.prune); err != nil {
			return nil, fmt.Errorf("server: invalid prune schedule %q: %w", opts.PruneSchedule, err)
		}
	}
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/fit", s.handleFit)
	r.Route("/templates", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/migrate", s.handleMigrate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Put("/", s.handlePut)
			r.Delete("/", s.handleDelete)
			r.Get("/preview", s.handlePreview)
		})
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// Start begins scheduled jobs.
func (s *Server) Start() {
	if s.cron != nil {
		s.cron.Start()
		s.logger.Debug("cache pruning scheduled", "schedule", s.opts.PruneSchedule)
	}
}

// Stop halts scheduled jobs and waits for a running job to finish.
func (s *Server) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.Start()
	defer s.Stop()

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) prune() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	n, err := s.opts.Pruner.Prune(ctx)
	if err != nil {
		s.logger.Warn("cache prune failed", "error", err)
		return
	}
	s.logger.Debug("pruned cache", "removed", n)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
