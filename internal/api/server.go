package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/situkangsayur/fraude-ai/internal/domain"
	"github.com/situkangsayur/fraude-ai/internal/graph"
	"github.com/situkangsayur/fraude-ai/internal/orchestrator"
	"github.com/situkangsayur/fraude-ai/internal/rules"
)

// Server represents the HTTP API server.
type Server struct {
	router  *chi.Mux
	handler *Handler
	server  *http.Server
	config  domain.ServerConfig
}

// NewServer creates a new API server with the full scoring surface.
func NewServer(cfg domain.ServerConfig, store domain.Store, graphEngine *graph.Engine, rulesEngine *rules.Engine, orch *orchestrator.Orchestrator, cache domain.Cache, bus domain.EventBus, version string) *Server {
	handler := NewHandler(store, graphEngine, rulesEngine, orch, cache, bus, version)
	router := chi.NewRouter()

	// Global middleware stack
	router.Use(CORSMiddleware)         // CORS for the dashboard
	router.Use(RecoverMiddleware)      // Recover from panics
	router.Use(TracingMiddleware)      // OpenTelemetry tracing
	router.Use(LoggingMiddleware)      // Request logging
	router.Use(middleware.RealIP)      // Extract real IP
	router.Use(middleware.Compress(5)) // Gzip compression

	// Health endpoint
	router.Get("/health", handler.Health)

	// Users
	router.Post("/users/", handler.CreateUser)
	router.Get("/users/{id}", handler.GetUser)
	router.Put("/users/{id}", handler.UpdateUser)
	router.Delete("/users/{id}", handler.DeleteUser)

	// Links
	router.Post("/links/", handler.CreateLink)
	router.Get("/links/", handler.ListLinks)
	router.Get("/links/{src}/{tgt}", handler.GetLink)
	router.Delete("/links/{src}/{tgt}", handler.DeleteLink)
	router.Post("/generate_links/", handler.GenerateLinks)

	// Clusters
	router.Post("/cluster_nodes/", handler.ClusterNodes)
	router.Get("/clusters/", handler.ListClusters)
	router.Get("/clusters/{id}", handler.GetCluster)

	// Graph rules
	router.Post("/graph_rules/", handler.CreateGraphRule)
	router.Get("/graph_rules/", handler.ListGraphRules)
	router.Get("/graph_rules/{id}", handler.GetGraphRule)
	router.Put("/graph_rules/{id}", handler.UpdateGraphRule)
	router.Delete("/graph_rules/{id}", handler.DeleteGraphRule)

	// Policies
	router.Post("/policies/", handler.CreatePolicy)
	router.Get("/policies/", handler.ListPolicies)
	router.Get("/policies/{id}", handler.GetPolicy)
	router.Put("/policies/{id}", handler.UpdatePolicy)
	router.Delete("/policies/{id}", handler.DeletePolicy)

	// Scoring rules
	router.Post("/standard_rules/", handler.CreateStandardRule)
	router.Get("/standard_rules/{id}", handler.GetStandardRule)
	router.Put("/standard_rules/{id}", handler.UpdateStandardRule)
	router.Delete("/standard_rules/{id}", handler.DeleteStandardRule)

	router.Post("/velocity_rules/", handler.CreateVelocityRule)
	router.Get("/velocity_rules/{id}", handler.GetVelocityRule)
	router.Put("/velocity_rules/{id}", handler.UpdateVelocityRule)
	router.Delete("/velocity_rules/{id}", handler.DeleteVelocityRule)

	// Scoring
	router.Post("/transactions", handler.ProcessTransaction)
	router.Get("/fraud_check/{transaction_id}", handler.FraudCheck)
	router.Get("/analyze", handler.Analyze)

	return &Server{
		router:  router,
		handler: handler,
		config:  cfg,
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.config.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.config.WriteTimeout) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Handler returns the handler for testing.
func (s *Server) Handler() *Handler {
	return s.handler
}
