// Package server hosts the interactive graph over HTTP. REST endpoints
// read and export a shared view; each websocket session drives a view of
// its own.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"datarepublican/charitygraph/internal/config"
	"datarepublican/charitygraph/internal/db"
)

//go:embed static
var staticFiles embed.FS

// Searcher finds charities by keyword. *db.DB satisfies it.
type Searcher interface {
	SearchCharities(query string, limit int) ([]db.Charity, error)
}

// Option customizes a Server.
type Option func(*Server)

// WithMetrics exposes h on /metrics and records requests with rec.
func WithMetrics(rec Recorder, h http.Handler) Option {
	return func(s *Server) {
		s.rec = rec
		s.metrics = h
	}
}

// WithSearcher routes /api/search through a database instead of the loaded
// records.
func WithSearcher(search Searcher) Option {
	return func(s *Server) { s.search = search }
}

// Server is the HTTP host.
type Server struct {
	cfg      config.ServerConfig
	hub      *Hub
	rec      Recorder
	metrics  http.Handler
	search   Searcher
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// New creates a server for hub.
func New(cfg config.ServerConfig, hub *Hub, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = config.Default().Server.FrameInterval
	}
	s := &Server{
		cfg:    cfg,
		hub:    hub,
		rec:    nopRecorder{},
		logger: logger.Named("server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 16 * 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// checkOrigin accepts same-host requests, and any listed CORS origin.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || slices.Contains(s.cfg.CORSOrigins, "*") || slices.Contains(s.cfg.CORSOrigins, origin) {
		return true
	}
	return origin == "http://"+r.Host || origin == "https://"+r.Host
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(Logger(s.logger, s.rec))

	origins := s.cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:         300,
	}))

	router.Get("/healthz", s.healthCheck)
	if s.metrics != nil {
		router.Handle("/metrics", s.metrics)
	}
	router.Get("/ws", s.serveWS)

	router.Route("/api", func(r chi.Router) {
		r.Get("/scene", s.getScene)
		r.Get("/graph.svg", s.exportSVG)
		r.Get("/nodes/{nodeID}", s.getNode)
		r.Get("/search", s.searchNodes)
		r.Route("/selection", func(r chi.Router) {
			r.Get("/", s.getSelection)
			r.Post("/", s.postSelection)
			r.Delete("/", s.deleteSelection)
		})
	})

	static, _ := fs.Sub(staticFiles, "static")
	router.Handle("/*", http.FileServer(http.FS(static)))

	return router
}

// Run serves until ctx is done, then shuts down gracefully and closes
// every session.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Listening", zap.String("addr", s.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	s.logger.Info("Server stopped")
	return nil
}
