// File: app/app.go
package app

import (
	"context"
	"database/sql"
	"go-ledger-api/config"
	"go-ledger-api/db"
	"go-ledger-api/handler"
	"go-ledger-api/logger"
	"go-ledger-api/repository"
	"go-ledger-api/router"
	"go-ledger-api/service"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

func Run() {
	config.LoadConfig(".")
	logger.Init()
	logger.Log.Info("Logger initialized")
	logger.Log.Info("Configuration loaded successfully")

	database, err := db.Connect()
	if err != nil {
		logger.Log.Fatalf("Error connecting to the database: %v", err)
	}
	defer database.Close()

	if err := db.RunMigrations("file://db/migrations"); err != nil {
		logger.Log.Fatalf("Error running migrations: %v", err)
	}

	redisClient, err := db.ConnectRedis()
	if err != nil {
		logger.Log.Fatalf("Error connecting to Redis: %v", err)
	}
	defer redisClient.Close()

	provider := service.NewHTTPRateProvider(config.AppConfig.Rates.ProviderURL, config.AppConfig.Rates.APIKey)
	r := buildRouter(database, redisClient, provider)

	// --- Start the Server with Graceful Shutdown ---
	port := config.AppConfig.Server.Port
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Log.Info("Server exited properly")
}

// buildRouter wires every layer together. This is the single place where
// repositories, services and handlers are constructed, shared by the real
// server and the integration test harness.
func buildRouter(database *sql.DB, redisClient *redis.Client, provider service.IRateProvider) http.Handler {
	loanMultiplier := decimal.RequireFromString(config.AppConfig.Loan.Multiplier)
	defaultInterest := decimal.RequireFromString(config.AppConfig.Loan.DefaultInterestRate)

	// Repositories
	userRepo := repository.NewUserRepository(database)
	tokenRepo := repository.NewTokenRepository(database)
	accountRepo := repository.NewAccountRepository(database)
	transferRepo := repository.NewTransferRepository(database)
	loanRepo := repository.NewLoanRepository(database)
	rateRepo := repository.NewRateRepository(database)

	// Services
	authService := service.NewAuthService(userRepo, tokenRepo)
	userService := service.NewUserService(userRepo)
	rateService := service.NewRateService(rateRepo, provider, redisClient,
		config.AppConfig.Rates.BaseCurrency, config.AppConfig.Rates.StalenessHours)
	currencyService := service.NewCurrencyService(rateService)
	ledgerService := service.NewLedgerService(database, accountRepo, currencyService)
	accountService := service.NewAccountService(accountRepo, redisClient)
	transferService := service.NewTransferService(database, accountRepo, transferRepo,
		ledgerService, currencyService, config.AppConfig.Transfer.AllowOverdraft)
	loanService := service.NewLoanService(database, accountRepo, loanRepo,
		ledgerService, currencyService, loanMultiplier, defaultInterest)

	// Handlers
	userHandler := handler.NewUserHandler(userRepo, userService, authService)
	accountHandler := handler.NewAccountHandler(accountService, ledgerService)
	transferHandler := handler.NewTransferHandler(transferService)
	loanHandler := handler.NewLoanHandler(loanService)
	rateHandler := handler.NewRateHandler(rateService, currencyService)

	return router.NewRouter(userHandler, accountHandler, transferHandler, loanHandler, rateHandler)
}

// TestApp bundles the wired router with its backing connections for
// integration tests.
type TestApp struct {
	DB     *sql.DB
	Redis  *redis.Client
	Router http.Handler
}

// NewTestApp wires the application against already-open test connections and
// an injectable rate provider.
func NewTestApp(database *sql.DB, redisClient *redis.Client, provider service.IRateProvider) *TestApp {
	return &TestApp{
		DB:     database,
		Redis:  redisClient,
		Router: buildRouter(database, redisClient, provider),
	}
}
