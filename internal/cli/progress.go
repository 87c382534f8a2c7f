package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tutu-network/countdown/internal/app/countdown"
)

// ─── Progress Bar ───────────────────────────────────────────────────────────
// A terminal progress line for a foreground countdown.
// Shows: ============>.................  42% | 34:51 left | ends 14:05

const barWidth = 30 // Characters for the progress bar

type progressBar struct {
	out io.Writer
	now func() time.Time
}

func newProgressBar(out io.Writer) *progressBar {
	return &progressBar{out: out, now: time.Now}
}

// render redraws the line for snap. Finished countdowns end the line.
func (p *progressBar) render(snap countdown.Snapshot) {
	clearLine(p.out)
	switch snap.Phase {
	case "finished":
		fmt.Fprintf(p.out, "  %s 100%% | done\n", strings.Repeat("=", barWidth))
	case "stopped":
		fmt.Fprintf(p.out, "  stopped\n")
	default:
		fmt.Fprint(p.out, p.line(snap))
	}
}

func (p *progressBar) line(snap countdown.Snapshot) string {
	pct := percentDone(snap)
	state := p.endsAt(snap.TimeLeftSeconds)
	if snap.Phase == "paused" {
		state = "paused"
	}
	return fmt.Sprintf("  %s %3.0f%% | %s left | %s", bar(pct), pct, snap.Label, state)
}

func (p *progressBar) endsAt(left int) string {
	end := p.now().Add(time.Duration(left) * time.Second)
	return "ends " + end.Format("15:04")
}

func percentDone(snap countdown.Snapshot) float64 {
	if snap.TotalSeconds <= 0 {
		return 0
	}
	pct := float64(snap.TotalSeconds-snap.TimeLeftSeconds) / float64(snap.TotalSeconds) * 100
	return min(max(pct, 0), 100)
}

// bar builds =======>............ for pct in [0, 100].
func bar(pct float64) string {
	filled := min(int(pct/100*float64(barWidth)), barWidth)
	empty := barWidth - filled

	switch {
	case filled == barWidth:
		return strings.Repeat("=", filled)
	case filled > 0:
		return strings.Repeat("=", filled-1) + ">" + strings.Repeat(".", empty)
	default:
		return strings.Repeat(".", barWidth)
	}
}

func clearLine(w io.Writer) {
	fmt.Fprint(w, "\r\033[K")
}
