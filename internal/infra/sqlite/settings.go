package sqlite

import (
	"database/sql"
	"time"

	"github.com/tutu-network/countdown/internal/domain"
)

// Setting keys
const (
	KeyLastTimerInput       = "last-timer-input"
	KeyCustomAlertSoundFile = "custom-alert-sfx-file"
)

var (
	_ domain.SettingsStore = (*DB)(nil)
	_ domain.AlertHistory  = (*DB)(nil)
)

// LastTimerInput implements domain.SettingsStore.
func (d *DB) LastTimerInput() (string, error) {
	return d.GetSetting(KeyLastTimerInput)
}

// SetLastTimerInput implements domain.SettingsStore.
func (d *DB) SetLastTimerInput(text string) error {
	return d.SetSetting(KeyLastTimerInput, text)
}

// CustomAlertSoundFile implements domain.SettingsStore.
func (d *DB) CustomAlertSoundFile() (string, error) {
	return d.GetSetting(KeyCustomAlertSoundFile)
}

// SetCustomAlertSoundFile implements domain.SettingsStore.
func (d *DB) SetCustomAlertSoundFile(path string) error {
	return d.SetSetting(KeyCustomAlertSoundFile, path)
}

// ─── Alert History ──────────────────────────────────────────────────────────

// InsertAlert records a finished countdown. Re-inserting an ID updates the
// delivery outcome.
func (d *DB) InsertAlert(a domain.Alert) error {
	_, err := d.db.Exec(
		`INSERT INTO alerts (id, total_seconds, finished_at, sound_file, delivered, error)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			sound_file=excluded.sound_file,
			delivered=excluded.delivered,
			error=excluded.error`,
		a.ID, a.TotalSeconds, a.FinishedAt.UnixMilli(), a.SoundFile, a.Delivered, a.Error,
	)
	return err
}

// ListAlerts returns the most recent alerts, newest first.
func (d *DB) ListAlerts(limit int) ([]domain.Alert, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.db.Query(
		`SELECT id, total_seconds, finished_at, sound_file, delivered, error
		 FROM alerts ORDER BY finished_at DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []domain.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, *a)
	}
	return alerts, rows.Err()
}

// AlertCount returns how many alerts were recorded.
func (d *DB) AlertCount() (int, error) {
	var n int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM alerts`).Scan(&n)
	return n, err
}

func scanAlert(s scanner) (*domain.Alert, error) {
	var a domain.Alert
	var finishedAt int64
	err := s.Scan(&a.ID, &a.TotalSeconds, &finishedAt, &a.SoundFile, &a.Delivered, &a.Error)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.FinishedAt = time.UnixMilli(finishedAt)
	return &a, nil
}
