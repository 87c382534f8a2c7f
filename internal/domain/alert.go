package domain

import "time"

// ─── Alerts ─────────────────────────────────────────────────────────────────

// Alert is the record of one finished countdown. It carries no timer state
// beyond what the history needs; the dispatcher resolves sound and
// notification resources on its own.
type Alert struct {
	ID           string    `json:"id"`
	TotalSeconds int       `json:"total_seconds"`
	FinishedAt   time.Time `json:"finished_at"`
	SoundFile    string    `json:"sound_file,omitempty"`
	Delivered    bool      `json:"delivered"`
	Error        string    `json:"error,omitempty"`
}

// AlertMessage is the text shown in the desktop notification.
type AlertMessage struct {
	Title string
	Body  string
}

// DefaultAlertMessage returns the stock notification text.
func DefaultAlertMessage() AlertMessage {
	return AlertMessage{
		Title: "Timer",
		Body:  "The timer has finished!",
	}
}
