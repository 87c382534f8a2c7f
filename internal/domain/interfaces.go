package domain

import "context"

// ─── Collaborator Interfaces ────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; the countdown service depends on them.

// SettingsStore persists the few strings that survive a restart.
// Implemented by infra/sqlite.DB.
type SettingsStore interface {
	// LastTimerInput returns the last committed input text, "" if none.
	LastTimerInput() (string, error)
	SetLastTimerInput(text string) error

	// CustomAlertSoundFile returns the user's alert sound path, "" if unset.
	CustomAlertSoundFile() (string, error)
	SetCustomAlertSoundFile(path string) error
}

// AlertDispatcher delivers the completion alert of one countdown.
// Implemented by infra/alert.Dispatcher.
type AlertDispatcher interface {
	Dispatch(ctx context.Context, alert Alert) error
}

// AlertHistory stores delivered alerts. Implemented by infra/sqlite.DB.
type AlertHistory interface {
	InsertAlert(alert Alert) error
	ListAlerts(limit int) ([]Alert, error)
}
