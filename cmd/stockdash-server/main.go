package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"stockdash/internal/app"
	"stockdash/internal/config"
	"stockdash/internal/httpapi"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// run sets up config and logging and serves until SIGINT/SIGTERM. Every
// failure is returned so deferred cleanup always runs.
func run() error {
	_ = godotenv.Load()

	// Load config.
	cfgPath := "config/stockdash.yaml"
	if p := os.Getenv("STOCKDASH_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logging.
	logFileName := cfg.Logging.File
	if logFileName == "" {
		logFileName = fmt.Sprintf("/tmp/stockdash-server-%s.log", time.Now().Format("2006-01-02"))
	}
	logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	logger := cfg.Logging.NewLogger(io.MultiWriter(os.Stdout, logFile))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := serve(ctx, cfg, logger); err != nil {
		logger.Error("bridge stopped", "error", err)
		return err
	}
	return nil
}

// serve wires the dashboard core and the bridge and blocks until ctx is done
// or the listener fails.
func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	core := app.New(cfg, logger)
	defer core.Close()

	if t := cfg.Dashboard.DefaultTicker; t != "" {
		if err := core.Controller.SetSelection(t); err != nil {
			logger.Warn("initial selection", "ticker", t, "error", err)
		}
	}

	srv := httpapi.NewServer(core.Controller, core.Store, cfg.Dashboard.Popular, logger)
	defer srv.Close()

	if schedule := cfg.Server.RefreshSchedule; schedule != "" {
		sched, err := httpapi.NewScheduler(schedule, core.Controller, logger)
		if err != nil {
			return fmt.Errorf("creating scheduler: %w", err)
		}
		sched.Start()
		defer func() { <-sched.Stop().Done() }()
	}

	ln, err := net.Listen("tcp", cfg.Server.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Server.Addr(), err)
	}

	httpServer := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("bridge listening", "addr", ln.Addr().String(), "api", cfg.API.BaseURL)
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		return fmt.Errorf("HTTP server: %w", err)
	}
	logger.Info("shutting down bridge")

	// Hijacked WebSocket connections are not reached by Shutdown.
	srv.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	return nil
}
