package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Jox86/sipp-api/docs"
	"github.com/Jox86/sipp-api/internal/auth"
	"github.com/Jox86/sipp-api/internal/config"
	"github.com/Jox86/sipp-api/internal/database"
	"github.com/Jox86/sipp-api/internal/http/handler"
	"github.com/Jox86/sipp-api/internal/http/middleware"
	"github.com/Jox86/sipp-api/internal/http/router"
	"github.com/Jox86/sipp-api/internal/jobs"
	"github.com/Jox86/sipp-api/internal/logger"
	"github.com/Jox86/sipp-api/internal/repository"
	"github.com/Jox86/sipp-api/internal/service"
	"go.uber.org/zap"
)

// @title SiPP API
// @version 1.0
// @description Procurement API for catalog-backed and ad-hoc purchase orders with budget-gated checkout

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

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

	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", cfg.App.Port)

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.HealthCheck(db); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	if cfg.App.Environment == "development" {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("auto-migration failed: %w", err)
		}
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	sequenceRepo := repository.NewNumberSequenceRepository(db)

	// Initialize services
	catalogService := service.NewCatalogService(catalogRepo, log)
	budgetService := service.NewBudgetService(projectRepo, orderRepo, log)
	relayService := service.NewRelayService(messageRepo, orderRepo, log)
	proposalService := service.NewProposalService()
	orderService := service.NewOrderService(orderRepo, sequenceRepo, catalogService, budgetService, proposalService, relayService, log)
	projectService := service.NewProjectService(projectRepo, orderRepo, userRepo, log)
	userService := service.NewUserService(userRepo, log)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	userHandler := handler.NewUserHandler(userService, log)
	projectHandler := handler.NewProjectHandler(projectService, budgetService, log)
	catalogHandler := handler.NewCatalogHandler(catalogService, log)
	orderHandler := handler.NewOrderHandler(orderService, log)
	messageHandler := handler.NewMessageHandler(relayService, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		userHandler,
		projectHandler,
		catalogHandler,
		orderHandler,
		messageHandler,
	)

	// Start the relay reconciliation poll. It re-derives messages from the
	// order store so a missed in-process notification is repaired within one
	// poll interval.
	var scheduler *jobs.Scheduler
	if cfg.Relay.Enabled {
		scheduler = jobs.NewScheduler(log)
		relayJob := jobs.NewRelaySyncJob(relayService, log, cfg.Relay.PollInterval())
		cronExpr := fmt.Sprintf("@every %s", cfg.Relay.PollInterval())
		if err := scheduler.AddJob(jobs.RelaySyncJobName, cronExpr, relayJob.Run); err != nil {
			log.Error("Failed to register relay sync job", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("Scheduler started with relay sync job",
				zap.Duration("poll_interval", cfg.Relay.PollInterval()))
		}
	} else {
		log.Info("Relay reconciliation disabled")
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

		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		log.Info("Server stopped")
	}

	return nil
}
