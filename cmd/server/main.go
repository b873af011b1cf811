package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/splitledger/internal/audit"
	"github.com/mmynk/splitledger/internal/config"
	"github.com/mmynk/splitledger/internal/httpapi"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/service"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
	"github.com/mmynk/splitledger/pkg/logging"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (default: ./config.yaml if present)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := logging.Setup(cfg.Log.Level)

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	logger.Info("Storage initialized", "database", cfg.DB.Path)

	m := metrics.New()
	svc := ledger.NewService(store, ledger.WithLogger(logger), ledger.WithMetrics(m))

	router := httpapi.NewRouter(svc, httpapi.Options{Metrics: m, Ping: store.Ping})

	// Connect service next to the REST routes
	rpcPath, rpcHandler := service.NewLedgerServiceHandler(
		service.NewLedgerService(svc),
		connect.WithInterceptors(middleware.LoggingInterceptor()),
	)
	router.Mount(rpcPath, rpcHandler)

	if cfg.Audit.Enabled {
		job, err := audit.New(svc, logger, m).Start(cfg.Audit.Schedule)
		if err != nil {
			return err
		}
		defer func() { <-job.Stop().Done() }()
	}

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      h2c.NewHandler(router, &http2.Server{}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", srv.Addr, "rpc", rpcPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}
