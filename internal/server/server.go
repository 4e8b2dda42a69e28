package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/lanternhq/lantern/internal/cycles"
	"github.com/lanternhq/lantern/internal/database"
	"github.com/lanternhq/lantern/internal/events"
	"github.com/lanternhq/lantern/internal/modules/decisions"
)

// Config holds server configuration
type Config struct {
	Port       int
	Log        zerolog.Logger
	DB         *database.DB
	Brain      *cycles.BrainEngine
	Publishing *cycles.PublishingEngine
	Decisions  *decisions.Repository
	Events     *events.Manager
	DevMode    bool
}

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	server     *http.Server
	log        zerolog.Logger
	db         *database.DB
	brain      *cycles.BrainEngine
	publishing *cycles.PublishingEngine
	decisions  *decisions.Repository

	triggerBudget time.Duration

	mu            sync.RWMutex
	lastCycleRuns map[string]time.Time
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:        chi.NewRouter(),
		log:           cfg.Log.With().Str("component", "server").Logger(),
		db:            cfg.DB,
		brain:         cfg.Brain,
		publishing:    cfg.Publishing,
		decisions:     cfg.Decisions,
		triggerBudget: defaultTriggerBudget,
		lastCycleRuns: make(map[string]time.Time),
	}

	if cfg.Events != nil {
		cfg.Events.Subscribe(events.BrainCycleComplete, func(evt events.Event) {
			s.recordCycleRun("brain", evt.Timestamp)
		})
		cfg.Events.Subscribe(events.PublishingCycleComplete, func(evt events.Event) {
			s.recordCycleRun("publishing", evt.Timestamp)
		})
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 75 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	// Cycle triggers hold the connection up to the response budget, so the
	// blanket timeout must sit above it
	s.router.Use(middleware.Timeout(70 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.handleSystemStatus)
		})

		r.Route("/cycles", func(r chi.Router) {
			r.Post("/brain", s.handleTriggerBrainCycle)
			r.Post("/publishing", s.handleTriggerPublishingCycle)
		})

		r.Route("/decisions", func(r chi.Router) {
			r.Get("/recent", s.handleRecentDecisions)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Router exposes the mux, used by tests
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) recordCycleRun(name string, at time.Time) {
	s.mu.Lock()
	s.lastCycleRuns[name] = at
	s.mu.Unlock()
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
