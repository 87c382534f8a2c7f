package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/tutu-network/countdown/internal/api"
	"github.com/tutu-network/countdown/internal/app/countdown"
	"github.com/tutu-network/countdown/internal/health"
	"github.com/tutu-network/countdown/internal/infra/alert"
	"github.com/tutu-network/countdown/internal/infra/scheduler"
	"github.com/tutu-network/countdown/internal/infra/sqlite"
	"github.com/tutu-network/countdown/internal/logging"
)

// shutdownTimeout bounds the graceful HTTP shutdown.
const shutdownTimeout = 30 * time.Second

// Daemon is the countdown runtime. It wires together all services.
type Daemon struct {
	Config  Config
	Logger  *zap.Logger
	DB      *sqlite.DB
	Alerts  *alert.Dispatcher
	Session *countdown.Service
	Ticker  *scheduler.Ticker
	Health  *health.Checker
	Server  *api.Server
	cancel  context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.LoggingOptions())
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	return NewWithConfig(cfg, logger)
}

// NewWithConfig creates a Daemon with the given configuration. A nil logger
// discards everything.
func NewWithConfig(cfg Config, logger *zap.Logger) (*Daemon, error) {
	if logger == nil {
		logger = logging.Nop()
	}

	db, err := sqlite.Open(countdownHome())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	alerts := alert.NewDispatcher(cfg.AlertConfig(), db, db, logger.Named("alert"))

	session := countdown.New(cfg.SessionConfig(), countdown.Deps{
		Settings: db,
		Alerts:   alerts,
		Logger:   logger.Named("session"),
	})
	session.Restore()

	checker := health.NewChecker(db, session, alerts, logger.Named("health"))

	srv := api.NewServer(session, db, db)
	srv.SetHealth(checker)
	srv.SetLogger(logger.Named("api"))
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	return &Daemon{
		Config:  cfg,
		Logger:  logger,
		DB:      db,
		Alerts:  alerts,
		Session: session,
		Ticker:  scheduler.NewTicker(),
		Health:  checker,
		Server:  srv,
	}, nil
}

// Serve starts the driver, the health checker and the HTTP server, and
// blocks until ctx is cancelled or the process receives SIGINT/SIGTERM.
func (d *Daemon) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", d.Config.Addr())
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return d.ServeListener(ctx, ln)
}

// ServeListener is Serve on an existing listener.
func (d *Daemon) ServeListener(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	defer cancel()

	d.Session.Attach(ctx, d.Ticker)
	go d.Health.Run(ctx)

	httpServer := &http.Server{
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	shutdownErr := make(chan error, 1)
	go func() {
		select {
		case sig := <-sigCh:
			d.Logger.Info("shutting down", zap.String("signal", sig.String()))
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		d.Session.Detach()
		shutdownErr <- httpServer.Shutdown(shutdownCtx)
	}()

	addr := ln.Addr().String()
	fmt.Printf("countdown serving on http://%s\n", addr)
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}
	d.Logger.Info("serving", zap.String("addr", addr))

	if err := httpServer.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		cancel()
		return err
	}
	return <-shutdownErr
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() error {
	if d.cancel != nil {
		d.cancel()
	}

	var errs error
	if d.Session != nil {
		d.Session.Detach()
	}
	if d.Ticker != nil {
		d.Ticker.Close()
	}
	if d.DB != nil {
		errs = multierr.Append(errs, d.DB.Close())
	}
	if d.Logger != nil {
		// Syncing stderr fails on some platforms; only the file matters.
		_ = d.Logger.Sync()
	}
	return errs
}
