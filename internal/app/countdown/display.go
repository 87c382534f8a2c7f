package countdown

import "github.com/tutu-network/countdown/internal/timer"

// Style is the presentation tag of the countdown label.
type Style string

const (
	StyleCountdown Style = "countdown"
	StylePaused    Style = "countdown-paused"
	StyleAlert     Style = "countdown-alert"
)

// Controls says which panel buttons are enabled.
type Controls struct {
	Stop   bool `json:"stop"`
	Pause  bool `json:"pause"`
	Resume bool `json:"resume"`
}

// Snapshot is what a display sink needs to render the countdown.
type Snapshot struct {
	Phase            string   `json:"phase"`
	TotalSeconds     int      `json:"total_seconds"`
	TimeLeftSeconds  int      `json:"time_left_seconds"`
	Label            string   `json:"label"`
	Style            Style    `json:"style"`
	NotificationSent bool     `json:"notification_sent"`
	Input            string   `json:"input"`
	Controls         Controls `json:"controls"`
}

// StyleFor maps the phase of t to a style tag.
func StyleFor(t *timer.Timer) Style {
	switch {
	case t.IsFinished():
		return StyleAlert
	case t.IsPaused():
		return StylePaused
	default:
		return StyleCountdown
	}
}

// ControlsFor enables stop unless stopped, pause while running and resume
// whenever the countdown is not running.
func ControlsFor(t *timer.Timer) Controls {
	return Controls{
		Stop:   !t.IsStopped(),
		Pause:  t.IsRunning(),
		Resume: !t.IsRunning(),
	}
}
