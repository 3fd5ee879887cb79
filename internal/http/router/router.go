package router

import (
	"encoding/json"
	"net/http"

	"github.com/Jox86/sipp-api/internal/auth"
	"github.com/Jox86/sipp-api/internal/config"
	"github.com/Jox86/sipp-api/internal/database"
	"github.com/Jox86/sipp-api/internal/domain"
	"github.com/Jox86/sipp-api/internal/http/handler"
	"github.com/Jox86/sipp-api/internal/http/middleware"
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/Jox86/sipp-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg            *config.Config
	logger         *zap.Logger
	db             *gorm.DB
	authMiddleware *auth.Middleware
	rateLimiter    *middleware.RateLimiter
	userHandler    *handler.UserHandler
	projectHandler *handler.ProjectHandler
	catalogHandler *handler.CatalogHandler
	orderHandler   *handler.OrderHandler
	messageHandler *handler.MessageHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	userHandler *handler.UserHandler,
	projectHandler *handler.ProjectHandler,
	catalogHandler *handler.CatalogHandler,
	orderHandler *handler.OrderHandler,
	messageHandler *handler.MessageHandler,
) *Router {
	return &Router{
		cfg:            cfg,
		logger:         logger,
		db:             db,
		authMiddleware: authMiddleware,
		rateLimiter:    rateLimiter,
		userHandler:    userHandler,
		projectHandler: projectHandler,
		catalogHandler: catalogHandler,
		orderHandler:   orderHandler,
		messageHandler: messageHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with connection pool stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
			},
		})
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.authMiddleware.RequireUser)
		r.Use(rt.rateLimiter.Limit)

		// Users
		r.Get("/users/me", rt.userHandler.Me)
		r.With(rt.authMiddleware.RequireRole(domain.RoleAdmin)).Post("/users", rt.userHandler.Register)
		r.With(rt.authMiddleware.RequireRole(domain.RoleAdmin, domain.RoleManager, domain.RoleCommercial)).Get("/users", rt.userHandler.ListByRole)

		// Projects
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", rt.projectHandler.List)
			r.With(rt.authMiddleware.RequireRole(domain.RoleAdmin)).Post("/", rt.projectHandler.Create)
			r.Get("/{id}", rt.projectHandler.Get)
			r.With(rt.authMiddleware.RequireRole(domain.RoleAdmin)).Put("/{id}", rt.projectHandler.Update)
			r.Get("/{id}/budget", rt.projectHandler.GetBudget)
		})

		// Catalog
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", rt.catalogHandler.List)
			r.With(rt.authMiddleware.RequireRole(domain.RoleAdmin)).Post("/", rt.catalogHandler.Create)
			r.Get("/{id}", rt.catalogHandler.Get)
			r.With(rt.authMiddleware.RequireRole(domain.RoleAdmin)).Patch("/{id}/contract", rt.catalogHandler.SetContract)
		})

		// Orders
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", rt.orderHandler.List)
			r.Post("/checkout", rt.orderHandler.Checkout)
			r.Get("/{id}", rt.orderHandler.Get)
			r.Put("/{id}", rt.orderHandler.Update)
			r.Delete("/{id}", rt.orderHandler.Purge)
			r.Get("/{id}/revisions", rt.orderHandler.ListRevisions)

			// Lifecycle
			r.Post("/{id}/selection", rt.orderHandler.SelectItems)
			r.Post("/{id}/selection/response", rt.orderHandler.RespondToSelection)
			r.Post("/{id}/proposal", rt.orderHandler.SendProposal)
			r.Get("/{id}/proposal/optimal", rt.orderHandler.GetProposalOptimal)
			r.Post("/{id}/proposal/response", rt.orderHandler.RespondToProposal)
			r.Post("/{id}/deny", rt.orderHandler.Deny)
			r.Post("/{id}/complete", rt.orderHandler.Complete)
			r.Post("/{id}/archive", rt.orderHandler.Archive)
			r.Post("/{id}/unarchive", rt.orderHandler.Unarchive)
			r.Patch("/{id}/status", rt.orderHandler.SetStatus)
		})

		// Messages
		r.Route("/messages", func(r chi.Router) {
			r.Get("/", rt.messageHandler.List)
			r.Get("/unread/count", rt.messageHandler.UnreadCount)
			r.Post("/{orderId}/read", rt.messageHandler.MarkRead)
			r.Post("/{orderId}/unread", rt.messageHandler.MarkUnread)
		})
	})

	return r
}
