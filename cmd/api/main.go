package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"budgetapp/internal/app"
	"budgetapp/internal/config"
	"budgetapp/internal/logger"
	"budgetapp/internal/server"
	"budgetapp/internal/validator"
)

// @title           Budget API
// @version         1.0
// @description     Budget is a personal budgeting ledger: set a budget and income, record expenses and track the balance against a savings goal.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Register custom validators for request binding
	validator.Register()

	// Open the store and build services
	a, err := app.New(appConfig)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warnf("failed to close database: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Infof("Starting budget API on port %s (store: %s)", appConfig.Port, appConfig.StoreBackend)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return server.NewForApp(a).Run(ctx)
}
