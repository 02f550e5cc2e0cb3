package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	v1 "github.com/gosuda/safeplate/internal/api/v1"
	"github.com/gosuda/safeplate/internal/api/ws"
	"github.com/gosuda/safeplate/internal/config"
	"github.com/gosuda/safeplate/internal/domain"
	"github.com/gosuda/safeplate/internal/server/middleware"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Store is the record store seen by the HTTP layer.
// *postgres.Store satisfies this interface.
type Store interface {
	v1.DataStore
	Pinger
}

// Events is the event stream seen by the HTTP layer.
// *redisstore.PubSub satisfies this interface.
type Events interface {
	ws.Subscriber
	Pinger
}

// Server is the HTTP server that wires all application routes and middleware.
type Server struct {
	router     chi.Router
	httpServer *http.Server
}

// New creates a Server with all routes wired. ctx bounds the background
// work of the rate limiters.
func New(ctx context.Context, cfg *config.Config, store Store, events Events, blobs Pinger, onboarder v1.Onboarder) *Server {
	router := chi.NewRouter()

	// Global middleware stack.
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(middleware.RequestLogger)
	router.Use(chimw.Recoverer)
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)
	router.Use(middleware.RateLimitByIP(ctx, 20, 40))

	s := &Server{
		router: router,
		httpServer: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}

	// Every API route belongs to a business owner or an admin.
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT.Secret))
		r.Use(middleware.RequireRole(domain.RoleBusiness, domain.RoleAdmin))
		r.Use(middleware.RateLimit(ctx, 5, 20))

		apiConfig := huma.DefaultConfig("Safeplate API", "1.0.0")
		apiConfig.Servers = []*huma.Server{
			{URL: "/api/v1"},
		}
		api := humachi.New(r, apiConfig)
		registerAPIRoutes(api, store, onboarder, cfg.Onboarding.MaxUploadBytes)
	})

	// WebSocket routes.
	router.Route("/ws", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT.Secret))
		r.Use(middleware.RequireRole(domain.RoleBusiness, domain.RoleAdmin))
		registerWSRoutes(r, ws.NewHub(events))
	})

	// Health check (unauthenticated).
	router.Get("/healthz", healthHandler(map[string]Pinger{
		"postgres": store,
		"redis":    events,
		"storage":  blobs,
	}))

	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening for HTTP requests.
func (s *Server) Start(_ context.Context) error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.Start: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}
