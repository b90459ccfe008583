// Package api exposes the generation pipeline and history store over HTTP.
//
// The server is a thin JSON layer: requests are decoded into pipeline
// options, executed through the shared Runner, and persisted as history
// records. All validation lives in the pipeline and parameter packages;
// the API only maps structured error codes onto HTTP status codes.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ziggurat-io/ziggurat/pkg/history"
	"github.com/ziggurat-io/ziggurat/pkg/observability"
	"github.com/ziggurat-io/ziggurat/pkg/pipeline"
)

// Server wires the pipeline runner and history store into an HTTP API.
type Server struct {
	Runner *pipeline.Runner
	Store  history.Store
	Logger *log.Logger

	// DefaultDark is the theme applied when a request omits the flag.
	DefaultDark bool
}

// NewServer creates a server. A nil logger falls back to the default.
func NewServer(runner *pipeline.Runner, store history.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		Runner: runner,
		Store:  store,
		Logger: logger,
	}
}

// Routes builds the chi router with middleware and all endpoints.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1/renders", func(r chi.Router) {
		r.Post("/", s.handleCreateRender)
		r.Get("/", s.handleListRenders)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetRender)
			r.Get("/image", s.handleGetImage)
			r.Get("/thumbnail", s.handleGetThumbnail)
			r.Delete("/", s.handleDeleteRender)
		})
	})

	return r
}

// ListenAndServe runs the server on addr until ctx is canceled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// requestLogger logs one line per request with status and duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		observability.Server().OnRequest(r.Context(), r.Method, r.URL.Path)
		next.ServeHTTP(ww, r)
		observability.Server().OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), time.Since(start))
		s.Logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
