// Package uiutil holds the text formatting shared by the web templates and
// the terminal browser.
package uiutil

import (
	"strconv"
	"time"
)

// DateTimeLayout is how the console prints a timestamp.
const DateTimeLayout = "02 Jan 2006, 15:04"

const week = 7 * 24 * time.Hour

// DateTime formats t with DateTimeLayout. The zero time renders empty.
func DateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateTimeLayout)
}

// Relative describes t as seen from now: "just now", "5 minutes ago" up to
// "6 days ago", then the full date. Future times read as "just now".
func Relative(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute") + " ago"
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour") + " ago"
	case d < week:
		return plural(int(d/(24*time.Hour)), "day") + " ago"
	default:
		return DateTime(t)
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return strconv.Itoa(n) + " " + unit + "s"
}

// Truncate cuts s to at most n runes, the last being an ellipsis. n <= 0
// leaves s alone.
func Truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
