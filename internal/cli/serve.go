package cli

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/soclens/soclens/internal/audit"
	"github.com/soclens/soclens/internal/bus"
	"github.com/soclens/soclens/internal/config"
	"github.com/soclens/soclens/internal/handlers"
	"github.com/soclens/soclens/internal/logging"
	"github.com/soclens/soclens/internal/scenario"
	"github.com/soclens/soclens/internal/server"
	"github.com/soclens/soclens/internal/store"
	"github.com/soclens/soclens/internal/stream"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the SOCLens backend server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(logging.Service("soclens"))
	logging.SetDefault(logger)

	logger.Info("starting SOCLens backend",
		"port", cfg.Server.Port,
		"store_capacity", cfg.Store.Capacity,
		"tick_interval", cfg.Generator.TickInterval.String(),
		"audit_path", cfg.Audit.Path,
	)
	if cfg.Ingest.Token == "" {
		logger.Warn("no ingest token configured; POST /api/alerts/ingest will fail closed")
	}

	// Composition root: one bus, one store, one generator.
	eventBus := bus.New(logger)
	alertStore := store.New(cfg.Store.Capacity)
	generator := scenario.NewGenerator(eventBus, logger)
	controller := scenario.NewController(generator, cfg.Generator.TickInterval, logger)
	auditWriter := audit.NewWriter(cfg.Audit.Path)

	router := server.NewRouter(server.Handlers{
		LogStream:   stream.NewLogStream(eventBus, controller, logger),
		AlertStream: stream.NewAlertStream(eventBus, logger),
		Ingest:      handlers.NewIngestHandler(alertStore, eventBus, auditWriter, cfg.Ingest.Token, logger),
		List:        handlers.NewListHandler(alertStore),
		Health:      handlers.NewHealthHandler(alertStore, eventBus),
	})

	// Stream handlers block on their request context; cancelling the
	// base context on shutdown unblocks them so Shutdown can drain.
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return baseCtx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	}

	cancelBase()
	controller.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
