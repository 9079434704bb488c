// Package durationfmt renders whole-second durations for on-screen text.
package durationfmt

import "fmt"

const (
	minute = 60
	hour   = 60 * minute
	day    = 24 * hour
)

// Format renders seconds compactly: "42s", "3m 07s", "1h 02m 05s", "2d 4h 10m".
// Negative input renders as "0s".
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	switch {
	case seconds < minute:
		return fmt.Sprintf("%ds", seconds)
	case seconds < hour:
		return fmt.Sprintf("%dm %02ds", seconds/minute, seconds%minute)
	case seconds < day:
		return fmt.Sprintf("%dh %02dm %02ds", seconds/hour, seconds%hour/minute, seconds%minute)
	default:
		return fmt.Sprintf("%dd %dh %02dm", seconds/day, seconds%day/hour, seconds%hour/minute)
	}
}
