package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/finwell/planmatch/internal/api/handlers"
	"github.com/finwell/planmatch/internal/api/middleware"
	"github.com/finwell/planmatch/internal/application/automatch"
	"github.com/finwell/planmatch/internal/application/budget"
	"github.com/finwell/planmatch/internal/application/templates"
	"github.com/finwell/planmatch/internal/application/transfers"
	"github.com/finwell/planmatch/internal/domain/rules"
	"github.com/finwell/planmatch/internal/infrastructure/config"
	"github.com/finwell/planmatch/internal/infrastructure/storage"
)

// Dependencies carries everything the HTTP layer needs.
type Dependencies struct {
	Repo         storage.Repository
	Orchestrator *automatch.Orchestrator
	Templates    *templates.Service
	Transfers    *transfers.Service
	Budget       *budget.Service
	RuleCache    *rules.Cache
	Logger       *slog.Logger
}

// Server is the HTTP API server.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer builds the router and wires all handlers.
func NewServer(cfg config.ServerConfig, deps Dependencies) *Server {
	base := handlers.NewBase(deps.Logger)

	health := handlers.NewHealthHandler(base)
	tmpl := handlers.NewTemplatesHandler(base, deps.Templates, deps.Repo)
	match := handlers.NewMatchHandler(base, deps.Orchestrator, deps.Repo)
	rulesH := handlers.NewRulesHandler(base, deps.Repo, deps.RuleCache)
	xfer := handlers.NewTransfersHandler(base, deps.Transfers)
	budgetH := handlers.NewBudgetHandler(base, deps.Budget)

	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsCfg.AllowedOrigins = cfg.AllowedOrigins
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logging(deps.Logger))
	r.Use(middleware.CORS(corsCfg))

	r.Get("/health", health.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Route("/templates", func(r chi.Router) {
			r.Post("/", tmpl.Create)
			r.Get("/", tmpl.List)
			r.Get("/{id}", tmpl.Get)
			r.Put("/{id}", tmpl.Edit)
			r.Delete("/{id}", tmpl.Delete)
			r.Get("/{id}/occurrences", tmpl.Occurrences)
			r.Post("/{id}/skip", tmpl.Skip)
			r.Post("/{id}/revert", tmpl.Revert)
		})

		r.Route("/rules", func(r chi.Router) {
			r.Post("/", rulesH.Create)
			r.Get("/", rulesH.List)
			r.Put("/{id}", rulesH.Update)
			r.Delete("/{id}", rulesH.Delete)
		})

		r.Post("/match/run", match.Run)
		r.Route("/review", func(r chi.Router) {
			r.Get("/", match.ListReviews)
			r.Post("/{id}/confirm", match.ConfirmReview)
			r.Post("/{id}/dismiss", match.DismissReview)
		})
		r.Post("/transactions/{id}/link", match.Link)
		r.Delete("/transactions/{id}/match", match.Unmatch)

		r.Route("/transfers", func(r chi.Router) {
			r.Post("/scan", xfer.Scan)
			r.Post("/confirm", xfer.Confirm)
			r.Post("/dismiss", xfer.Dismiss)
		})

		r.Get("/budgets/{id}/status", budgetH.Status)
	})

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: deps.Logger,
	}
}

// Start begins serving. It blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info("starting API server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
