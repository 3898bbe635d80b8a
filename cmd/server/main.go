/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the point-ledger server. Handles configuration,
  dependency wiring, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Build the store backend (in-memory maps, or SQLite via -db)
  3. Create the ledger engine and HTTP router
  4. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port  HTTP server port (default: 8080)
  -db    SQLite DSN for the alternate backend; empty means the default
         in-memory tables. Use ":memory:" for in-process SQLite.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the store backend
  4. Exit

ENVIRONMENT:
  No environment variables. All config via flags; the balance cap is
  the point.MaxPoint constant.

SEE ALSO:
  - api/server.go: Router configuration
  - point/service.go: The ledger engine
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kimdoha/point-system/api"
	"github.com/kimdoha/point-system/point"
	"github.com/kimdoha/point-system/point/store"
	"github.com/kimdoha/point-system/store/sqlite"
)

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	log.SetLevel(logrus.InfoLevel)
	return log
}

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "", "SQLite DSN; empty uses the in-memory tables")
	flag.Parse()

	log := newLogger()

	// Store backend. closeStore runs on every exit path below; logrus
	// Fatal would skip deferred calls, so shutdown closes it explicitly.
	var (
		balances   point.BalanceStore
		history    point.HistoryLog
		closeStore func() error
	)
	if *dbPath != "" {
		sqliteStore, err := sqlite.New(*dbPath)
		if err != nil {
			log.WithError(err).Fatal("failed to initialize sqlite store")
		}
		closeStore = sqliteStore.Close
		balances, history = sqliteStore, sqliteStore
		log.WithField("db", *dbPath).Info("using sqlite store")
	} else {
		balances = store.NewUserPointTable()
		history = store.NewPointHistoryTable()
		log.Info("using in-memory store")
	}

	// Engine and router
	service := point.NewService(balances, history)
	router := api.NewRouter(api.NewHandler(service), log)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.WithField("addr", server.Addr).Info("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal or server failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case err := <-serverErr:
		log.WithError(err).Error("server failed")
		exitCode = 1
	case <-quit:
		log.Info("shutting down server")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.WithError(err).Error("server forced to shutdown")
			exitCode = 1
		}
	}

	if closeStore != nil {
		if err := closeStore(); err != nil {
			log.WithError(err).Error("failed to close store")
		}
	}

	log.Info("server stopped")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
