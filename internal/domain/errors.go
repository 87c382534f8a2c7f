package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure, with no infrastructure dependency. The countdown core
// itself never returns errors; these belong to the layers around it.

var (
	// Input errors
	ErrInvalidDuration = errors.New("duration must be greater than zero")

	// Alert errors
	ErrAlertSoundMissing = errors.New("alert sound file not found")

	// Daemon errors
	ErrDaemonUnreachable = errors.New("countdown daemon is not running")
)
