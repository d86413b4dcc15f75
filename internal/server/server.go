// Package server implements the pai relay service: it ingests hook event
// envelopes, archives them, streams them to websocket clients and serves a
// small HTML dashboard over the signal store.
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
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dotcommander/pai/internal/metrics"
	"github.com/dotcommander/pai/internal/models"
	"github.com/dotcommander/pai/internal/store"
	"github.com/dotcommander/pai/internal/synthesis"
	"github.com/dotcommander/pai/pkg/ringbuf"
)

const (
	// recentCapacity bounds the in-memory event buffer behind GET /events.
	recentCapacity = 100

	defaultEventsLimit = 50
	shutdownTimeout    = 5 * time.Second
	cacheTTL           = 5 * time.Minute
	cacheCleanup       = 10 * time.Minute
)

// Config wires the relay to its dependencies. Archive and Gatherer are optional.
type Config struct {
	Store    *store.Store
	Archive  *store.EventArchive
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	// Keywords is the pattern vocabulary for scheduled synthesis.
	Keywords []string
}

// Server is the relay HTTP service.
type Server struct {
	router  chi.Router
	store   *store.Store
	archive *store.EventArchive
	metrics *metrics.Metrics
	gather  prometheus.Gatherer
	recent  *ringbuf.Buffer[models.ArchivedEvent]
	hub     *hub
	cache   *cache.Cache
	synth   *synthesis.Synthesizer
	now     func() time.Time
}

// New creates a Server. A nil Metrics gets an unregistered set.
func New(cfg Config) *Server {
	m := cfg.Metrics
	if m == nil {
		m = metrics.New()
	}
	s := &Server{
		store:   cfg.Store,
		archive: cfg.Archive,
		metrics: m,
		gather:  cfg.Gatherer,
		recent:  ringbuf.New[models.ArchivedEvent](recentCapacity),
		hub:     newHub(m.WebsocketClients),
		cache:   cache.New(cacheTTL, cacheCleanup),
		synth:   synthesis.New(cfg.Store, cfg.Keywords),
		now:     time.Now,
	}
	s.router = s.buildRouter()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	r.Use(s.instrument)

	r.Get("/", s.handleDashboard)
	r.Get("/ws", s.handleWebsocket)
	r.Get("/api/v1/health", s.handleHealth)

	r.Post("/events", s.handlePostEvent)
	r.Get("/events", s.handleListEvents)
	r.Get("/events/history", s.handleHistory)
	r.Get("/events/stats", s.handleStats)

	if s.gather != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gather, promhttp.HandlerOpts{}))
	}
	return r
}

// instrument records request latency by route pattern and status.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.HTTPRequestDuration.
			WithLabelValues(route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Start launches the background components: the cache watcher, the weekly
// synthesis scheduler and the websocket hub shutdown. They stop when ctx ends.
func (s *Server) Start(ctx context.Context) error {
	w, err := newCacheWatcher(s.cache, s.store.SignalsDir(), s.store.SynthesisDir())
	if err != nil {
		return fmt.Errorf("start cache watcher: %w", err)
	}
	go w.run(ctx)

	sched, err := s.newScheduler()
	if err != nil {
		_ = w.close()
		return fmt.Errorf("start scheduler: %w", err)
	}
	sched.Start()

	go func() {
		<-ctx.Done()
		<-sched.Stop().Done()
		s.hub.closeAll()
	}()
	return nil
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if err := s.Start(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Default().Info("relay listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("relay server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("relay shutdown: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
