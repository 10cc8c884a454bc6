/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the forecast engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (defaults -> config.yaml -> FORECAST_* env vars)
  2. Configure structured logging
  3. Initialize SQLite store
  4. Create projection engine and API handler
  5. Start server with graceful shutdown

CONFIGURATION:
  server.port           HTTP server port (default: 8080)
  db.path               SQLite database path (default: ./data/forecast.db)
                        Use ":memory:" for in-memory database
  engine.default_years  Horizon when ?years is absent (default: 10)
  engine.tax_rate       Flat rate applied to gross salaries (default: 0.30)
  log.level             trace..panic (default: info)
  log.format            text or json (default: text)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  FORECAST_DB_PATH=./data/forecast.db ./server

  # Run with in-memory database on a different port
  FORECAST_DB_PATH=":memory:" FORECAST_SERVER_PORT=3000 ./server

SEE ALSO:
  - config/config.go: Configuration loading
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridian/forecast-engine/api"
	"github.com/meridian/forecast-engine/config"
	"github.com/meridian/forecast-engine/finance"
	"github.com/meridian/forecast-engine/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := config.NewLogger(cfg)

	// Initialize store
	store, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}
	defer store.Close()

	// Initialize engine and handler
	engine := finance.NewDefaultEngine()
	engine.TaxRate = decimal.NewFromFloat(cfg.Engine.TaxRate)

	handler := api.NewHandler(store, engine, log, cfg.Engine.DefaultYears)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infof("Server starting on http://localhost:%d", cfg.Server.Port)
		log.Infof("API available at http://localhost:%d/api", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("Server forced to shutdown")
	}

	log.Info("Server stopped")
}
