package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/mtxos/opsboard/internal/config"
	"github.com/mtxos/opsboard/internal/domain/activity"
	"github.com/mtxos/opsboard/internal/domain/catalog"
	"github.com/mtxos/opsboard/internal/domain/notification"
	"github.com/mtxos/opsboard/internal/domain/reminder"
	"github.com/mtxos/opsboard/internal/identity"
	"github.com/mtxos/opsboard/internal/mcp"
	"github.com/mtxos/opsboard/internal/scheduler"
	"github.com/mtxos/opsboard/internal/transport"
	"github.com/natefinch/lumberjack"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog := newLogger(cfg)
	defer closeLog()

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		closeLog()
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.close(); err != nil {
			logger.Warn("closing store", "error", err)
		}
	}()

	principal := identity.Principal{WorkspaceID: cfg.Auth.DefaultWorkspace, ActorID: cfg.Auth.DefaultActor}
	if !cfg.Auth.Enabled || cfg.Transport.Mode == "stdio" {
		if err := st.apiKeys.EnsureWorkspace(ctx, principal.WorkspaceID, principal.WorkspaceID); err != nil {
			return fmt.Errorf("ensure default workspace: %w", err)
		}
	}

	engine := reminder.NewEngine(st.reminders, logger)
	notificationSvc := notification.NewService(st.notifications, st.activity, logger)
	catalogSvc := catalog.NewService(st.catalog, st.activity, logger)
	activitySvc := activity.NewService(st.activity, logger)

	mcpServer := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Reminders:     engine,
			Notifications: notificationSvc,
			Catalog:       catalogSvc,
			Activity:      activitySvc,
		},
		Resolver:         st.apiKeys,
		AuthEnabled:      cfg.Auth.Enabled,
		TransportMode:    cfg.Transport.Mode,
		DefaultPrincipal: principal,
		Version:          version,
		Logger:           logger,
	})

	if cfg.Scheduler.Enabled {
		sched, err := scheduler.New(engine, scheduler.Config{
			Spec:       cfg.Scheduler.Spec,
			RunOnStart: cfg.Scheduler.RunOnStart,
			Timeout:    cfg.Scheduler.Timeout(),
		}, logger)
		if err != nil {
			return err
		}
		sched.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := sched.Stop(stopCtx); err != nil {
				logger.Warn("scheduler did not stop cleanly", "error", err)
			}
			if last, ok := sched.LastRun(); ok {
				logger.Info("last scheduled reminder run", "started_at", last.StartedAt, "duration", last.Duration, "failed", last.Err != nil)
			}
		}()
	}

	if cfg.Transport.Mode == "stdio" {
		return runStdioMode(ctx, logger, mcpServer)
	}

	router := transport.NewServer(transport.Config{
		Reminders:        engine,
		Notifications:    notificationSvc,
		Catalog:          catalogSvc,
		Resolver:         st.apiKeys,
		AuthEnabled:      cfg.Auth.Enabled,
		DefaultPrincipal: principal,
		CronSecret:       cfg.Cron.Secret,
		MCP: sdkmcp.NewStreamableHTTPHandler(
			func(*http.Request) *sdkmcp.Server { return mcpServer },
			&sdkmcp.StreamableHTTPOptions{SessionTimeout: 30 * time.Minute},
		),
		Logger: logger,
	})
	return runHTTPMode(ctx, logger, router, cfg.Server.Host, cfg.Server.Port)
}

func runStdioMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server) error {
	logger.Info("starting stdio transport", "auth", "disabled")

	// Run blocks until stdin closes or ctx is canceled.
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	return nil
}

func runHTTPMode(ctx context.Context, logger *slog.Logger, handler http.Handler, host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newLogger logs to stdout, or stderr in stdio mode so stdout stays clean
// for JSON-RPC. A configured log path switches to a rotated file.
func newLogger(cfg config.Config) (*slog.Logger, func()) {
	level, _ := config.ParseLevel(cfg.Log.Level)

	var w io.Writer = os.Stdout
	if cfg.Transport.Mode == "stdio" {
		w = os.Stderr
	}
	closeFn := func() {}
	if cfg.Log.Path != "" {
		if err := ensureDir(cfg.Log.Path); err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			rotated := &lumberjack.Logger{
				Filename:   cfg.Log.Path,
				MaxSize:    cfg.Log.MaxSizeMB,
				MaxBackups: cfg.Log.MaxBackups,
				MaxAge:     cfg.Log.MaxAgeDays,
				Compress:   true,
			}
			w = rotated
			closeFn = func() { _ = rotated.Close() }
		}
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closeFn
}

func ensureDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
