package cli

import (
	"fmt"
	"time"
)

// FormatAge formats the time elapsed since t, relative to now, as a short
// human readable string: "42s", "5m", "3h", "2d".
func FormatAge(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < 0:
		return "0s"
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d/time.Second))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d/time.Hour))
	default:
		return fmt.Sprintf("%dd", int(d/(24*time.Hour)))
	}
}

// FormatYesNo renders a recorded answer.
func FormatYesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
