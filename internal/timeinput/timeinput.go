// Package timeinput converts free-form duration text into seconds.
//
// Two grammars are accepted and never mixed within one input:
//
//	colon:   "1:30:00", "25:00", "90"
//	letters: "2h 47m 12s", "45m", "10s 1h"
//
// The Sanitize* functions are live-typing filters, cheap enough to run on
// every keystroke. ParseDuration is the authoritative conversion and is only
// called when the input is committed.
package timeinput

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Format identifies which grammar a piece of input text uses.
type Format int

const (
	// FormatColon is the "H:MM:SS" / "MM:SS" / "SS" grammar.
	FormatColon Format = iota
	// FormatLetters is the "2h 47m 12s" grammar.
	FormatLetters
)

// String returns the lowercase name used by the API and CLI.
func (f Format) String() string {
	switch f {
	case FormatLetters:
		return "letters"
	default:
		return "colon"
	}
}

const (
	maxColonFields = 3
	maxSegment     = 59
)

// MaxSeconds is the largest duration ParseDuration returns. Larger inputs
// saturate here, which keeps every result representable as a time.Duration.
var MaxSeconds = int(min(int64(math.MaxInt), int64(math.MaxInt64/time.Second)))

// letterPair matches one "(number)(unit)" token of the letters grammar.
var letterPair = regexp.MustCompile(`(?i)(\d+)\s*([hms])`)

// ─── Classification ─────────────────────────────────────────────────────────

// ClassifyFormat decides which grammar applies to text. The first marker
// found wins: a unit letter (h, m, s in either case) selects FormatLetters,
// a colon selects FormatColon. Text without any marker is FormatColon.
func ClassifyFormat(text string) Format {
	for _, r := range text {
		switch {
		case isUnit(unicode.ToLower(r)):
			return FormatLetters
		case r == ':':
			return FormatColon
		}
	}
	return FormatColon
}

// ─── Live Sanitization ──────────────────────────────────────────────────────

// Sanitize applies the filter matching the grammar of text.
func Sanitize(text string) string {
	if ClassifyFormat(text) == FormatLetters {
		return SanitizeLetters(text)
	}
	return SanitizeColon(text)
}

// SanitizeColon re-renders text in the colon grammar. Only digits and colons
// survive, at most three fields are kept and everything after the third field
// is dropped. The leading field is the most significant unit and keeps all of
// its digits; every following field keeps two digits and is clamped to 59.
//
// The result depends on text alone, so SanitizeColon(SanitizeColon(x)) ==
// SanitizeColon(x).
func SanitizeColon(text string) string {
	fields := make([][]byte, 1, maxColonFields)

scan:
	for _, r := range text {
		switch {
		case r == ':':
			if len(fields) == maxColonFields {
				break scan
			}
			fields = append(fields, nil)
		case isDigit(r):
			last := len(fields) - 1
			if last > 0 && len(fields[last]) >= 2 {
				continue
			}
			fields[last] = append(fields[last], byte(r))
		}
	}

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = string(f)
		if i > 0 {
			parts[i] = clampSegment(parts[i])
		}
	}
	return strings.Join(parts, ":")
}

// SanitizeLetters re-renders text in the letters grammar. Digits, unit
// letters and single separating spaces survive; unit letters are lowercased
// and a unit that already appeared earlier in the text is dropped.
func SanitizeLetters(text string) string {
	out := make([]byte, 0, len(text))
	var seen [3]bool

	for _, r := range text {
		r = unicode.ToLower(r)
		switch {
		case isDigit(r):
			out = append(out, byte(r))
		case unicode.IsSpace(r):
			if len(out) > 0 && out[len(out)-1] != ' ' {
				out = append(out, ' ')
			}
		case isUnit(r):
			i := unitIndex(r)
			if seen[i] {
				continue
			}
			seen[i] = true
			out = append(out, byte(r))
		}
	}
	return string(out)
}

// ─── Parsing ────────────────────────────────────────────────────────────────

// ParseDuration converts committed input text to seconds. It never fails:
// text that carries no usable number yields 0, which callers treat as
// "nothing to start". The result is never negative and saturates at
// MaxSeconds.
func ParseDuration(text string) int {
	if ClassifyFormat(text) == FormatLetters {
		return parseLetters(text)
	}
	return parseColon(text)
}

// parseColon right-aligns the groups: the last one is seconds, then minutes,
// then hours. Groups further left than hours are ignored.
func parseColon(text string) int {
	groups := strings.Split(text, ":")
	weights := [maxColonFields]int{1, 60, 3600}

	total := 0
	for i := 0; i < maxColonFields && i < len(groups); i++ {
		total = addScaled(total, parseGroup(groups[len(groups)-1-i]), weights[i])
	}
	return total
}

// parseLetters sums every (number)(unit) pair. Repeated units accumulate,
// so "10m 5m" is fifteen minutes.
func parseLetters(text string) int {
	total := 0
	for _, m := range letterPair.FindAllStringSubmatch(text, -1) {
		n := parseGroup(m[1])
		switch strings.ToLower(m[2]) {
		case "h":
			total = addScaled(total, n, 3600)
		case "m":
			total = addScaled(total, n, 60)
		case "s":
			total = addScaled(total, n, 1)
		}
	}
	return total
}

// parseGroup reads a non-negative decimal group. Empty, signed, non-numeric
// or overflowing groups count as 0.
func parseGroup(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	for _, r := range s {
		if !isDigit(r) {
			return 0
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// ─── Formatting ─────────────────────────────────────────────────────────────

// FormatSeconds renders seconds as "H:MM:SS" when at least one hour is left
// and "M:SS" otherwise. Zero and negative values render as "0:00".
func FormatSeconds(seconds int) string {
	if seconds <= 0 {
		return "0:00"
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// addScaled returns total + n*weight, saturating at MaxSeconds. total must
// already be within [0, MaxSeconds].
func addScaled(total, n, weight int) int {
	if n > (MaxSeconds-total)/weight {
		return MaxSeconds
	}
	return total + n*weight
}

func clampSegment(s string) string {
	if s == "" {
		return s
	}
	if n, _ := strconv.Atoi(s); n > maxSegment {
		return strconv.Itoa(maxSegment)
	}
	return s
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isUnit(r rune) bool {
	return r == 'h' || r == 'm' || r == 's'
}

func unitIndex(r rune) int {
	switch r {
	case 'h':
		return 0
	case 'm':
		return 1
	default:
		return 2
	}
}
