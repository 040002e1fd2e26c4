package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oakline-furniture/trade-api/internal/config"
	"github.com/oakline-furniture/trade-api/internal/database"
	"github.com/oakline-furniture/trade-api/internal/http/handler"
	"github.com/oakline-furniture/trade-api/internal/http/middleware"
	"github.com/oakline-furniture/trade-api/internal/http/router"
	"github.com/oakline-furniture/trade-api/internal/jobs"
	"github.com/oakline-furniture/trade-api/internal/logger"
	"github.com/oakline-furniture/trade-api/internal/notifier"
	"github.com/oakline-furniture/trade-api/internal/repository"
	"github.com/oakline-furniture/trade-api/internal/service"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Environment),
		zap.Int("port", cfg.App.Port),
	)

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Production schemas come from the goose migrations; in development the
	// schema is kept in sync automatically
	if cfg.App.Environment == "development" {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to auto-migrate database: %w", err)
		}
	}

	// Initialize repositories
	contactRepo := repository.NewContactRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	accountRepo := repository.NewAnalyticalAccountRepository(db)
	ruleRepo := repository.NewRuleRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	docRepo := repository.NewDerivedDocumentRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	budgetRepo := repository.NewBudgetRepository(db)
	sequenceRepo := repository.NewSequenceRepository(db)

	// Initialize services
	// Sequence service first (orders and documents both draw numbers from it)
	sequenceService := service.NewSequenceService(sequenceRepo, log)

	contactService := service.NewContactService(contactRepo, log)
	categoryService := service.NewCategoryService(categoryRepo, log)
	productService := service.NewProductService(productRepo, categoryRepo, accountRepo, log)
	accountService := service.NewAnalyticalAccountService(accountRepo, log)
	ruleService := service.NewRuleService(ruleRepo, accountRepo, contactRepo, productRepo, log)
	documentService := service.NewDerivedDocumentService(docRepo, orderRepo, contactRepo, paymentRepo, sequenceService, log)
	paymentService := service.NewPaymentService(paymentRepo, docRepo, log)
	budgetService := service.NewBudgetService(budgetRepo, accountRepo, log)

	orderNotifier := notifier.FromConfig(&cfg.SMTP, log)
	orderService := service.NewOrderService(
		orderRepo,
		contactRepo,
		productRepo,
		docRepo,
		sequenceService,
		ruleService,
		documentService,
		orderNotifier,
		log,
	)

	// Initialize middleware
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	contactHandler := handler.NewContactHandler(contactService, log)
	categoryHandler := handler.NewCategoryHandler(categoryService, log)
	productHandler := handler.NewProductHandler(productService, log)
	accountHandler := handler.NewAnalyticalAccountHandler(accountService, log)
	ruleHandler := handler.NewRuleHandler(ruleService, log)
	orderHandler := handler.NewOrderHandler(orderService, documentService, log)
	documentHandler := handler.NewDocumentHandler(documentService, paymentService, sequenceService, log)
	paymentHandler := handler.NewPaymentHandler(paymentService, log)
	budgetHandler := handler.NewBudgetHandler(budgetService, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		rateLimiter,
		contactHandler,
		categoryHandler,
		productHandler,
		accountHandler,
		ruleHandler,
		orderHandler,
		documentHandler,
		paymentHandler,
		budgetHandler,
	)

	// Start the scheduler that retries derived document generation for
	// confirmed orders whose invoice or bill failed to generate inline
	var scheduler *jobs.Scheduler
	if cfg.Jobs.DocumentRetryEnabled {
		scheduler = jobs.NewScheduler(log)
		retryJob := jobs.NewDocumentRetryJob(documentService, log)

		if err := scheduler.AddJob("document-retry", cfg.Jobs.DocumentRetryCron, retryJob.Run); err != nil {
			log.Error("Failed to register document retry job", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("Scheduler started with document retry job",
				zap.String("cron_expr", cfg.Jobs.DocumentRetryCron),
			)
		}
	} else {
		log.Info("Document retry job disabled")
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Stop scheduler if running
		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
