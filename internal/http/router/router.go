package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/oakline-furniture/trade-api/internal/config"
	"github.com/oakline-furniture/trade-api/internal/database"
	"github.com/oakline-furniture/trade-api/internal/http/handler"
	"github.com/oakline-furniture/trade-api/internal/http/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Router struct {
	cfg             *config.Config
	logger          *zap.Logger
	db              *gorm.DB
	rateLimiter     *middleware.RateLimiter
	contactHandler  *handler.ContactHandler
	categoryHandler *handler.CategoryHandler
	productHandler  *handler.ProductHandler
	accountHandler  *handler.AnalyticalAccountHandler
	ruleHandler     *handler.RuleHandler
	orderHandler    *handler.OrderHandler
	documentHandler *handler.DocumentHandler
	paymentHandler  *handler.PaymentHandler
	budgetHandler   *handler.BudgetHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	rateLimiter *middleware.RateLimiter,
	contactHandler *handler.ContactHandler,
	categoryHandler *handler.CategoryHandler,
	productHandler *handler.ProductHandler,
	accountHandler *handler.AnalyticalAccountHandler,
	ruleHandler *handler.RuleHandler,
	orderHandler *handler.OrderHandler,
	documentHandler *handler.DocumentHandler,
	paymentHandler *handler.PaymentHandler,
	budgetHandler *handler.BudgetHandler,
) *Router {
	return &Router{
		cfg:             cfg,
		logger:          logger,
		db:              db,
		rateLimiter:     rateLimiter,
		contactHandler:  contactHandler,
		categoryHandler: categoryHandler,
		productHandler:  productHandler,
		accountHandler:  accountHandler,
		ruleHandler:     ruleHandler,
		orderHandler:    orderHandler,
		documentHandler: documentHandler,
		paymentHandler:  paymentHandler,
		budgetHandler:   budgetHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RealIP)
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.Limit)
	r.Use(chimw.Timeout(rt.cfg.Server.RequestTimeoutDuration()))

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with pool stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
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
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
			},
		})
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Contacts
		r.Route("/contacts", func(r chi.Router) {
			r.Get("/", rt.contactHandler.List)
			r.Post("/", rt.contactHandler.Create)
			r.Get("/{id}", rt.contactHandler.Get)
			r.Put("/{id}", rt.contactHandler.Update)
			r.Delete("/{id}", rt.contactHandler.Archive)
		})

		// Categories
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", rt.categoryHandler.List)
			r.Post("/", rt.categoryHandler.Create)
			r.Get("/{id}", rt.categoryHandler.Get)
			r.Delete("/{id}", rt.categoryHandler.Archive)
		})

		// Products
		r.Route("/products", func(r chi.Router) {
			r.Get("/", rt.productHandler.List)
			r.Post("/", rt.productHandler.Create)
			r.Get("/{id}", rt.productHandler.Get)
			r.Put("/{id}", rt.productHandler.Update)
			r.Delete("/{id}", rt.productHandler.Archive)
		})

		// Analytical accounts
		r.Route("/analytical-accounts", func(r chi.Router) {
			r.Get("/", rt.accountHandler.List)
			r.Post("/", rt.accountHandler.Create)
			r.Get("/{id}", rt.accountHandler.Get)
			r.Get("/{id}/children", rt.accountHandler.ListChildren)
			r.Delete("/{id}", rt.accountHandler.Archive)
		})

		// Auto-analytical rules
		r.Route("/rules", func(r chi.Router) {
			r.Get("/", rt.ruleHandler.List)
			r.Post("/", rt.ruleHandler.Create)
			r.Post("/resolve", rt.ruleHandler.Resolve)
			r.Get("/{id}", rt.ruleHandler.Get)
			r.Post("/{id}/confirm", rt.ruleHandler.Confirm)
			r.Post("/{id}/cancel", rt.ruleHandler.Cancel)
		})

		// Orders
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", rt.orderHandler.List)
			r.Post("/", rt.orderHandler.Create)
			r.Get("/{id}", rt.orderHandler.Get)
			r.Put("/{id}/lines", rt.orderHandler.UpdateLines)

			// Lifecycle endpoints
			r.Post("/{id}/send", rt.orderHandler.Send)
			r.Post("/{id}/confirm", rt.orderHandler.Confirm)
			r.Post("/{id}/cancel", rt.orderHandler.Cancel)

			// Derived invoice or bill
			r.Get("/{id}/document", rt.orderHandler.GetDocument)
		})

		// Invoices and bills
		r.Route("/documents", func(r chi.Router) {
			r.Get("/", rt.documentHandler.List)
			r.Get("/{id}", rt.documentHandler.Get)
			r.Post("/{id}/post", rt.documentHandler.Post)
			r.Post("/{id}/cancel", rt.documentHandler.Cancel)
			r.Get("/{id}/payments", rt.documentHandler.ListPayments)
		})

		// Payments
		r.Route("/payments", func(r chi.Router) {
			r.Get("/", rt.paymentHandler.List)
			r.Post("/", rt.paymentHandler.Record)
			r.Get("/{id}", rt.paymentHandler.Get)
			r.Delete("/{id}", rt.paymentHandler.Delete)
		})

		// Budgets
		r.Route("/budgets", func(r chi.Router) {
			r.Get("/", rt.budgetHandler.List)
			r.Post("/", rt.budgetHandler.Create)
			r.Get("/{id}", rt.budgetHandler.Get)
			r.Post("/{id}/confirm", rt.budgetHandler.Confirm)
			r.Post("/{id}/revise", rt.budgetHandler.Revise)
			r.Post("/{id}/cancel", rt.budgetHandler.Cancel)
		})

		// Budget line achievements are tracked per line
		r.Put("/budget-lines/{lineId}/achieved", rt.budgetHandler.UpdateAchieved)

		// Document number sequences
		r.Get("/sequences", rt.documentHandler.ListSequences)
	})

	return r
}
