/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the bill engine server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration from the environment (.env supported)
  2. Configure structured logging
  3. Initialize SQLite store
  4. Create API handler with dependencies
  5. Start server with graceful shutdown

CONFIGURATION (environment variables, overridable by flags):
  BILLS_PORT              HTTP server port (default: 8080)
  BILLS_DB_PATH           SQLite database path (default: ./data/bills.db)
                          Use ":memory:" for an in-memory database
  BILLS_LOG_LEVEL         debug, info, warn, error (default: info)
  BILLS_LOG_FORMAT        text or json (default: text)
  BILLS_SHUTDOWN_TIMEOUT  drain timeout on SIGINT/SIGTERM (default: 30s)

COMMAND-LINE FLAGS:
  -port    overrides BILLS_PORT
  -db      overrides BILLS_DB_PATH

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (up to BILLS_SHUTDOWN_TIMEOUT)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/bills.db"

  # Run with in-memory database on another port
  ./server -db=":memory:" -port=3000

SEE ALSO:
  - config/config.go: configuration loading and validation
  - api/server.go: router configuration
  - store/sqlite/sqlite.go: database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/bill-engine/api"
	"github.com/warp/bill-engine/config"
	"github.com/warp/bill-engine/logging"
	"github.com/warp/bill-engine/store/sqlite"
)

func main() {
	port := flag.String("port", "", "HTTP server port (overrides BILLS_PORT)")
	dbPath := flag.String("db", "", "SQLite database path (overrides BILLS_DB_PATH)")
	flag.Parse()

	cfg := config.Load()
	if *port != "" {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("failed to initialize database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	handler := api.NewHandler(store)
	metrics := api.NewMetrics()
	router := api.NewRouter(handler, metrics)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", server.Addr, "db", cfg.DBPath)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server", "timeout", cfg.ShutdownTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
