package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/amirhossein-jamali/stock-simulator/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/stock-simulator/internal/domain/port/core"
	"github.com/amirhossein-jamali/stock-simulator/internal/domain/port/event"
	"github.com/amirhossein-jamali/stock-simulator/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/stock-simulator/internal/domain/usecase/portfolio"
	"github.com/amirhossein-jamali/stock-simulator/internal/domain/usecase/session"
	"github.com/amirhossein-jamali/stock-simulator/internal/domain/usecase/trade"
	userUseCase "github.com/amirhossein-jamali/stock-simulator/internal/domain/usecase/user"
	"github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/api/middleware"
	"github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/api/routes"
	"github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/crypto"
	"github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/events"
	"github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/events/kafka"
	"github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/quote"
	"github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/storage/memory"
	timeProvider "github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/time"
	"github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/config"
)

var environment string

func main() {
	rootCmd := &cobra.Command{
		Use:   "stocksim",
		Short: "Stock trading simulator",
		Long: `stocksim serves a web site where registered users buy and sell
stocks at live quotes with simulated cash.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if environment != "" {
				_ = os.Setenv(config.EnvPrefix+"_ENV", environment)
			}
		},
		RunE: runServe,
	}

	rootCmd.PersistentFlags().StringVarP(&environment, "env", "e", "", "Environment: development, production or test (defaults to STOCKSIM_ENV)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server (default)",
		RunE:  runServe,
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, appLogger, err := bootstrap()
			if err != nil {
				return err
			}
			defer appLogger.Flush()

			if cfg.Database.Driver == database.DriverMemory {
				appLogger.Info("Memory store has no schema to migrate", nil)
				return nil
			}

			tp := timeProvider.NewRealTimeProvider()
			dbManager, err := connectDatabase(cmd.Context(), cfg, appLogger, tp)
			if err != nil {
				return err
			}
			defer dbManager.Close()

			return dbManager.Migrate(cmd.Context())
		},
	}
}

// bootstrap loads and validates configuration and builds the application logger
func bootstrap() (*config.Config, coreport.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := validateConfig(cfg); err != nil {
		return nil, nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	opts := logger.Options{
		Production: cfg.Logger.Format == "json",
		Level:      cfg.Logger.Level,
	}
	if cfg.Logger.Output != "" && cfg.Logger.Output != "stdout" {
		opts.OutputPaths = []string{cfg.Logger.Output}
	}
	appLogger, err := logger.NewZapLogger(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, appLogger, nil
}

func connectDatabase(ctx context.Context, cfg *config.Config, appLogger coreport.Logger, tp coreport.TimeProvider) (*database.Manager, error) {
	dbConfig := database.NewConfig(cfg.Database, cfg.Logger.Level)
	if err := dbConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}

	dbManager := database.NewManager(dbConfig, appLogger, tp)
	if _, err := dbManager.Connect(ctx); err != nil {
		return nil, err
	}
	return dbManager, nil
}

// openStore returns the unit of work for the configured driver and a function releasing it
func openStore(ctx context.Context, cfg *config.Config, appLogger coreport.Logger, tp coreport.TimeProvider) (persistence.UnitOfWork, func(), error) {
	if cfg.Database.Driver == database.DriverMemory {
		appLogger.Warn("Using in-memory store, data is lost on exit", nil)
		return memory.NewStore(appLogger, tp), func() {}, nil
	}

	dbManager, err := connectDatabase(ctx, cfg, appLogger, tp)
	if err != nil {
		return nil, nil, err
	}
	if err := dbManager.Migrate(ctx); err != nil {
		_ = dbManager.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	closeDB := func() {
		if err := dbManager.Close(); err != nil {
			appLogger.Error("Failed to close database", map[string]any{"error": err.Error()})
		}
	}
	return dbManager.CreateUnitOfWork(), closeDB, nil
}

func newPublisher(cfg config.EventsConfig, appLogger coreport.Logger) event.Publisher {
	if len(cfg.Brokers) == 0 {
		return events.NewLogPublisher(appLogger)
	}
	appLogger.Info("Publishing trade events", map[string]any{
		"brokers": strings.Join(cfg.Brokers, ","),
		"topic":   cfg.Topic,
	})
	return kafka.NewPublisher(cfg.Brokers, cfg.Topic, cfg.WriteTimeout, appLogger)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, appLogger, err := bootstrap()
	if err != nil {
		return err
	}
	defer appLogger.Flush()

	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	tp := timeProvider.NewRealTimeProvider()

	uow, closeStore, err := openStore(ctx, cfg, appLogger, tp)
	if err != nil {
		appLogger.Error("Failed to open store", map[string]any{"error": err.Error()})
		return err
	}
	defer closeStore()

	publisher := newPublisher(cfg.Events, appLogger)
	defer func() {
		if err := publisher.Close(); err != nil {
			appLogger.Warn("Failed to close event publisher", map[string]any{"error": err.Error()})
		}
	}()

	oracle := quote.NewClient(quote.Config{
		BaseURL: cfg.PriceOracle.BaseURL,
		APIKey:  cfg.PriceOracle.APIKey,
		Timeout: cfg.PriceOracle.Timeout,
	}, appLogger)

	initialCash, err := entity.ParseCash(cfg.Trading.InitialCash)
	if err != nil {
		return fmt.Errorf("invalid trading.initialCash: %w", err)
	}

	sessionService := session.NewSessionService(
		uow.GetSessionRepository(ctx),
		coreport.Duration(cfg.Session.TTL),
		tp,
		appLogger,
	)
	if removed, err := sessionService.PurgeExpired(ctx); err != nil {
		appLogger.Warn("Failed to purge expired sessions", map[string]any{"error": err.Error()})
	} else if removed > 0 {
		appLogger.Info("Purged expired sessions", map[string]any{"removed": removed})
	}

	userService := userUseCase.NewUserUseCase(
		uow.GetUserRepository(ctx),
		crypto.NewBcryptHasher(bcrypt.DefaultCost),
		initialCash,
		tp,
		appLogger,
	)
	tradeService := trade.NewTradeService(uow, oracle, publisher, tp, appLogger)
	calculator := portfolio.NewCalculator(uow, oracle, appLogger)

	cookie := middleware.SessionCookie{
		Name:   cfg.Session.CookieName,
		TTL:    cfg.Session.TTL,
		Secure: cfg.Session.Secure,
	}

	router := gin.New()
	if err := routes.SetupMiddlewares(router, appLogger, sessionService, cookie); err != nil {
		return fmt.Errorf("failed to set up middlewares: %w", err)
	}
	routes.SetupRoutes(router, routes.Handlers{
		Portfolio: handler.NewPortfolioHandler(calculator, sessionService, appLogger),
		Trade:     handler.NewTradeHandler(tradeService, sessionService, appLogger),
		Auth:      handler.NewAuthHandler(userService, sessionService, cookie, appLogger),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("Starting server", map[string]any{
			"addr":   server.Addr,
			"env":    cfg.Environment,
			"driver": cfg.Database.Driver,
		})

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		appLogger.Error("Failed to start server", map[string]any{"error": err.Error()})
		return err
	case <-quit:
	}

	appLogger.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]any{
			"error": err.Error(),
		})
	}

	appLogger.Info("Server exited gracefully", nil)
	return nil
}

// validateConfig ensures all required configuration values are present
func validateConfig(cfg *config.Config) error {
	var missingConfigs []string

	if cfg.Server.Port == 0 {
		missingConfigs = append(missingConfigs, "server.port")
	}
	if cfg.Server.ShutdownTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.shutdownTimeout")
	}

	switch cfg.Database.Driver {
	case database.DriverMemory:
	case database.DriverPostgres:
		if cfg.Database.Host == "" {
			missingConfigs = append(missingConfigs, "database.host (or STOCKSIM_DB_HOST environment variable)")
		}
		if cfg.Database.Username == "" {
			missingConfigs = append(missingConfigs, "database.username (or STOCKSIM_DB_USERNAME environment variable)")
		}
		if cfg.Database.Database == "" {
			missingConfigs = append(missingConfigs, "database.database (or STOCKSIM_DB_NAME environment variable)")
		}
	default:
		return fmt.Errorf("invalid database.driver value: %q, must be %s or %s",
			cfg.Database.Driver, database.DriverPostgres, database.DriverMemory)
	}

	if cfg.PriceOracle.APIKey == "" {
		missingConfigs = append(missingConfigs, "priceOracle.apiKey (or STOCKSIM_API_KEY environment variable)")
	}
	if cfg.PriceOracle.BaseURL == "" {
		missingConfigs = append(missingConfigs, "priceOracle.baseURL")
	}
	if cfg.Session.CookieName == "" {
		missingConfigs = append(missingConfigs, "session.cookieName")
	}
	if cfg.Session.TTL <= 0 {
		missingConfigs = append(missingConfigs, "session.ttl")
	}

	if cfg.Environment != config.Development &&
		cfg.Environment != config.Production &&
		cfg.Environment != config.Test {
		return fmt.Errorf("invalid environment value: %s, must be one of: %s, %s, or %s",
			cfg.Environment, config.Development, config.Production, config.Test)
	}

	if cfg.Logger.Level == "" {
		missingConfigs = append(missingConfigs, "logger.level")
	}

	if len(missingConfigs) > 0 {
		return fmt.Errorf("missing required configurations: %v", missingConfigs)
	}

	if _, err := entity.ParseCash(cfg.Trading.InitialCash); err != nil {
		return fmt.Errorf("invalid trading.initialCash value: %q", cfg.Trading.InitialCash)
	}

	if cfg.Environment == config.Production {
		var warnings []string

		sslMode := strings.ToLower(cfg.Database.SSLMode)
		if cfg.Database.Driver == database.DriverPostgres && sslMode != "require" && sslMode != "verify-ca" && sslMode != "verify-full" {
			warnings = append(warnings, "database.sslMode should be set to 'require', 'verify-ca', or 'verify-full' in production")
		}
		if !cfg.Session.Secure {
			warnings = append(warnings, "session.secure should be true in production")
		}
		if cfg.Server.ReadTimeout < 5*time.Second {
			warnings = append(warnings, "server.readTimeout is too low for production")
		}

		if len(warnings) > 0 {
			log.Printf("Warning: potential security issues in production configuration: %v", warnings)
		}
	}

	return nil
}
