/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the batch ledger evaluation server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment, then flags)
  2. Build the zap logger
  3. Open the run archive (sqlite, postgres or memory)
  4. Register observers (log summary, optional Kafka events) and the
     completion marker on stdout
  5. Configure HTTP router and start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides PORT)
  -db      SQLite database path (overrides DB_PATH)
           Use ":memory:" for in-memory database

ENVIRONMENT:
  PORT, STORE_DRIVER, DB_PATH, DATABASE_URL, KAFKA_BROKERS, KAFKA_TOPIC,
  LOG_LEVEL, APP_ENV, RATE_LIMIT_RPS, RATE_LIMIT_BURST, CACHE_TTL
  See config/config.go for defaults.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the Kafka writer and database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/ledger.db"

  # Run against PostgreSQL with events
  STORE_DRIVER=postgres DATABASE_URL=postgres://... KAFKA_BROKERS=localhost:9092 ./server

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - config/config.go: Settings
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/batch-ledger/api"
	"github.com/warp/batch-ledger/config"
	"github.com/warp/batch-ledger/events/kafka"
	"github.com/warp/batch-ledger/ledger"
	"github.com/warp/batch-ledger/ledger/store"
	"github.com/warp/batch-ledger/report"
	"github.com/warp/batch-ledger/store/postgres"
	"github.com/warp/batch-ledger/store/sqlite"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Flags
	flag.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	flag.Parse()

	logger, err := report.NewLogger(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// Initialize store
	runs, closeStore, err := openStore(context.Background(), cfg)
	if err != nil {
		logger.Fatal("failed to initialize run archive", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer closeStore()

	// Observers
	observers := []ledger.Observer{report.NewLogObserver(logger)}
	if cfg.KafkaEnabled() {
		publisher := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer publisher.Close()
		observers = append(observers, publisher)
		logger.Info("publishing evaluation events",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.KafkaTopic))
	}
	evaluator := ledger.NewEvaluator(observers...)
	evaluator.OnObserverFault = func(err error) {
		logger.Error("observer failed", zap.Error(err))
	}
	evaluator.Completed = report.NewMarkerWriter(os.Stdout).Completed

	// Initialize handler and router
	handler := api.NewHandler(evaluator, runs, logger, cfg.CacheTTL)
	router := api.NewRouter(handler, api.RouterOptions{
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting",
			zap.Int("port", cfg.Port),
			zap.String("store", cfg.StoreDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		return
	}

	logger.Info("server stopped")
}

// openStore selects the run archive for the configured driver.
func openStore(ctx context.Context, cfg config.Config) (ledger.RunStore, func() error, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		s, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.DriverMemory:
		return store.NewMemory(), func() error { return nil }, nil
	default:
		s, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
}
