package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tutu-network/countdown/internal/app/countdown"
	"github.com/tutu-network/countdown/internal/daemon"
	"github.com/tutu-network/countdown/internal/domain"
	"github.com/tutu-network/countdown/internal/infra/alert"
	"github.com/tutu-network/countdown/internal/infra/scheduler"
	"github.com/tutu-network/countdown/internal/infra/sqlite"
	"github.com/tutu-network/countdown/internal/logging"
)

func init() {
	runCmd.Flags().BoolVar(&runNoAlert, "no-alert", false, "Do not play a sound or send a notification")
	rootCmd.AddCommand(runCmd)
}

var runNoAlert bool

var runCmd = &cobra.Command{
	Use:   "run [DURATION]",
	Short: "Run a countdown in the foreground",
	Long: `Run a countdown in this terminal and alert when it reaches zero.
Without DURATION the last committed input is used. Ctrl+C stops it.

Examples:
  countdown run 25:00
  countdown run 1h 30m`,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// Console output would break the progress line; keep it to warnings.
	logger, err := logging.New(logging.Options{Level: "warn", File: cfg.Logging.File})
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := sqlite.Open(daemon.Home())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	var alerts domain.AlertDispatcher
	if !runNoAlert {
		alerts = alert.NewDispatcher(cfg.AlertConfig(), db, db, logger.Named("alert"))
	}
	session := countdown.New(cfg.SessionConfig(), countdown.Deps{
		Settings: db,
		Alerts:   alerts,
		Logger:   logger.Named("session"),
	})
	session.Restore()

	if _, err := session.Submit(strings.Join(args, " ")); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := scheduler.NewTicker()
	pb := newProgressBar(os.Stderr)
	finished := driveForeground(ctx, session, ticker, pb)
	ticker.Close()

	if !finished {
		pb.render(session.Stop())
	}
	return nil
}

// driveForeground ticks session on sched and redraws pb after every tick
// until the countdown finishes (true) or ctx is cancelled (false).
func driveForeground(ctx context.Context, session *countdown.Service, sched scheduler.Scheduler, pb *progressBar) bool {
	done := make(chan struct{})
	var once sync.Once

	pb.render(session.Snapshot())
	h := sched.Schedule(session.TickInterval(), func() {
		session.Tick(ctx)
		snap := session.Snapshot()
		if snap.Phase == "finished" {
			once.Do(func() {
				pb.render(snap)
				close(done)
			})
			return
		}
		pb.render(snap)
	})
	defer sched.Cancel(h)

	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}
