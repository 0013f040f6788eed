// Package server exposes a docproc Processor over HTTP and MCP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/tsawler/docproc"
	"github.com/tsawler/docproc/extract"
	"github.com/tsawler/docproc/normalize"
	"github.com/tsawler/docproc/rag"
)

// Defaults are applied to requests that do not set an option.
type Defaults struct {
	Extract      extract.Options
	Clean        normalize.CleanOptions
	Chunk        rag.ChunkOptions
	ChunkSize    int
	ChunkOverlap int
}

// DefaultDefaults returns the library defaults with 1000-byte chunks and a
// 200-byte overlap.
func DefaultDefaults() Defaults {
	return Defaults{
		Extract:      extract.DefaultOptions(),
		Clean:        normalize.DefaultCleanOptions(),
		Chunk:        rag.DefaultChunkOptions(),
		ChunkSize:    1000,
		ChunkOverlap: 200,
	}
}

// Server serves document processing requests.
type Server struct {
	proc     *docproc.Processor
	defaults Defaults
	log      *zap.Logger
	version  string
}

// New returns a Server backed by proc. A nil log discards output.
func New(proc *docproc.Processor, defaults Defaults, log *zap.Logger, version string) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		proc:     proc,
		defaults: defaults,
		log:      log,
		version:  version,
	}
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	s.RegisterHTTP(r)
	return r
}

// RegisterHTTP mounts the /v1 endpoints on r.
func (s *Server) RegisterHTTP(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Get("/formats", s.handleFormats)
		r.Post("/parse", s.handleParse)
		r.Post("/metadata", s.handleMetadata)
		r.Post("/markdown", s.handleMarkdown)
		r.Post("/batch", s.handleBatch)
		r.Post("/clean", s.handleClean)
		r.Post("/chunk", s.handleChunk)
		r.Post("/language", s.handleLanguage)
	})
}

// Timeouts configures the HTTP listener.
type Timeouts struct {
	Read     time.Duration
	Write    time.Duration
	Shutdown time.Duration
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, t Timeouts) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadTimeout:       t.Read,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      t.Write,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", addr))
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

	s.log.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), t.Shutdown)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}
