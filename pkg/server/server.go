package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/lo"

	"github.com/trackwaste/publicstats/pkg/icpe"
	"github.com/trackwaste/publicstats/pkg/snapshot"
)

// SnapshotReader is the slice of the snapshot store the API reads from.
type SnapshotReader interface {
	Computation(ctx context.Context, year int) (*snapshot.Computation, error)
	LayerMetrics(ctx context.Context, layer snapshot.Layer, year int, rubrique, code string) (map[string]snapshot.MetricRow, error)
	Ping(ctx context.Context) error
}

// Config configures the public statistics read API.
type Config struct {
	Logger *slog.Logger
	Store  SnapshotReader
	// Ready reports whether at least one snapshot build has completed.
	// Optional; the API serves persisted snapshots either way.
	Ready   func() bool
	Port    int
	Version string
}

func (cfg *Config) Validate() error {
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if cfg.Store == nil {
		return errors.New("store is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	return nil
}

// Server serves the persisted yearly snapshots over HTTP.
type Server struct {
	log    *slog.Logger
	cfg    Config
	router *chi.Mux
	http   *http.Server
}

func NewServer(cfg Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		log:    cfg.Logger,
		cfg:    cfg,
		router: chi.NewRouter(),
	}
	s.setupRoutes()

	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/readyz", s.handleReady)
	s.router.Get("/version", s.handleVersion)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/v1", func(r chi.Router) {
		r.Get("/stats/{year}", s.handleStats)
		r.Route("/icpe/{layer}/{year}/{rubrique}", func(r chi.Router) {
			r.Get("/", s.handleLayerMetrics)
			r.Get("/{code}", s.handleLayerMetrics)
		})
	})
}

// Start runs the HTTP server until it fails or Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("server: listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve http: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Ready != nil && !s.cfg.Ready() {
		s.writeError(w, http.StatusServiceUnavailable, "first build not finished")
		return
	}
	if err := s.cfg.Store.Ping(r.Context()); err != nil {
		s.log.Error("server: readiness ping failed", "error", err)
		s.writeError(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"version": s.cfg.Version})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	year, ok := s.yearParam(w, r)
	if !ok {
		return
	}

	c, err := s.cfg.Store.Computation(r.Context(), year)
	if errors.Is(err, snapshot.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("no snapshot for year %d", year))
		return
	}
	if err != nil {
		s.log.Error("server: failed to read computation", "year", year, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to read snapshot")
		return
	}
	s.writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleLayerMetrics(w http.ResponseWriter, r *http.Request) {
	layer, ok := snapshot.LayerByName(chi.URLParam(r, "layer"))
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("unknown layer %q", chi.URLParam(r, "layer")))
		return
	}
	year, ok := s.yearParam(w, r)
	if !ok {
		return
	}
	rubrique := chi.URLParam(r, "rubrique")
	if !lo.Contains(icpe.Rubriques, rubrique) {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("unknown rubrique %q", rubrique))
		return
	}
	code := chi.URLParam(r, "code")

	rows, err := s.cfg.Store.LayerMetrics(r.Context(), layer, year, rubrique, code)
	if err != nil {
		s.log.Error("server: failed to read layer metrics",
			"layer", layer.Name, "year", year, "rubrique", rubrique, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to read snapshot")
		return
	}
	if code != "" && len(rows) == 0 {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("no metrics for %q", code))
		return
	}
	s.writeJSON(w, http.StatusOK, rows)
}

func (s *Server) yearParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 2000 || year > 2100 {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid year %q", chi.URLParam(r, "year")))
		return 0, false
	}
	return year, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("server: failed to write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
