package scheduler

import (
	"fmt"
	"time"
)

// Format renders remaining time as a human-readable countdown. Zero or
// negative durations render as "READY NOW!". Once a unit is shown, every
// smaller unit down to seconds is shown too ("2d 3h 5m 1s", never "2d 1s").
func Format(remaining time.Duration) string {
	if remaining <= 0 {
		return "READY NOW!"
	}

	total := int64(remaining / time.Second)
	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60
	secs := total % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, secs)
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, secs)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, secs)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}
