// Package alert delivers the completion alert of a countdown: a sound played
// through an external player and a desktop notification through an external
// notifier, recorded in the alert history.
//
// The platform bindings stay outside the process. Commands are started and
// reaped in the background; the dispatcher never waits for a sound to end.
package alert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/tutu-network/countdown/internal/domain"
	"github.com/tutu-network/countdown/internal/infra/metrics"
)

// Config selects the default sound and the external commands.
type Config struct {
	SoundFile string // used when no custom sound is configured or it is missing
	Player    string // e.g. "paplay"; the sound file is appended. "" disables sound
	Notifier  string // e.g. "notify-send --icon=alarm-symbolic"; title and body are appended. "" disables
	Message   domain.AlertMessage
}

// Runner starts an external command without waiting for it to finish.
type Runner interface {
	Start(name string, args ...string) error
}

// Dispatcher implements domain.AlertDispatcher.
type Dispatcher struct {
	cfg      Config
	settings domain.SettingsStore
	history  domain.AlertHistory
	runner   Runner
	logger   *zap.Logger
}

var _ domain.AlertDispatcher = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher. history and logger may be nil.
func NewDispatcher(cfg Config, settings domain.SettingsStore, history domain.AlertHistory, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Message == (domain.AlertMessage{}) {
		cfg.Message = domain.DefaultAlertMessage()
	}
	return &Dispatcher{
		cfg:      cfg,
		settings: settings,
		history:  history,
		runner:   execRunner{logger: logger},
		logger:   logger,
	}
}

// SetRunner replaces the command runner. Used by tests.
func (d *Dispatcher) SetRunner(r Runner) { d.runner = r }

// Dispatch plays the alert sound and sends the notification. A failure of
// one channel does not prevent the other; both failures are returned
// combined. The outcome is recorded in the history either way.
func (d *Dispatcher) Dispatch(ctx context.Context, a domain.Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var errs error
	if d.cfg.Player != "" {
		sound, err := d.ResolveSoundFile()
		if err == nil {
			a.SoundFile = sound
			err = d.start(d.cfg.Player, sound)
		}
		errs = multierr.Append(errs, err)
	}
	if d.cfg.Notifier != "" {
		errs = multierr.Append(errs, d.start(d.cfg.Notifier, d.cfg.Message.Title, d.cfg.Message.Body))
	}

	a.Delivered = errs == nil
	if errs != nil {
		a.Error = errs.Error()
		metrics.AlertsDispatched.WithLabelValues("failed").Inc()
	} else {
		metrics.AlertsDispatched.WithLabelValues("delivered").Inc()
	}

	if d.history != nil {
		if err := d.history.InsertAlert(a); err != nil {
			d.logger.Warn("record alert", zap.String("id", a.ID), zap.Error(err))
		}
	}
	return errs
}

// ResolveSoundFile returns the custom sound when it exists on disk and the
// configured default otherwise.
func (d *Dispatcher) ResolveSoundFile() (string, error) {
	if d.settings != nil {
		custom, err := d.settings.CustomAlertSoundFile()
		if err != nil {
			d.logger.Warn("read custom alert sound", zap.Error(err))
		}
		if fileExists(custom) {
			return custom, nil
		}
	}
	if fileExists(d.cfg.SoundFile) {
		return d.cfg.SoundFile, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrAlertSoundMissing, d.cfg.SoundFile)
}

func (d *Dispatcher) start(command string, extra ...string) error {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return errors.New("empty command")
	}
	args := append(fields[1:], extra...)
	return d.runner.Start(fields[0], args...)
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ─── Exec Runner ────────────────────────────────────────────────────────────

type execRunner struct {
	logger *zap.Logger
}

func (r execRunner) Start(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	configureProcess(cmd)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			r.logger.Warn("alert command failed", zap.String("command", name), zap.Error(err))
		}
	}()
	return nil
}
