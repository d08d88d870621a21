package scheduler

import (
	"testing"
	"time"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name      string
		remaining time.Duration
		want      string
	}{
		{"zero", 0, "READY NOW!"},
		{"negative", -5 * time.Second, "READY NOW!"},
		{"sub-second rounds down to zero seconds", 300 * time.Millisecond, "0s"},
		{"seconds only", 42 * time.Second, "42s"},
		{"minutes and seconds", 2*time.Minute + 5*time.Second, "2m 5s"},
		{"minutes with zero seconds", 3 * time.Minute, "3m 0s"},
		{"hours cascade", time.Hour + time.Second, "1h 0m 1s"},
		{"days cascade", 25*time.Hour + time.Minute + time.Second, "1d 1h 1m 1s"},
		{"exact day", 24 * time.Hour, "1d 0h 0m 0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.remaining); got != tt.want {
				t.Errorf("Format(%v) = %q, want %q", tt.remaining, got, tt.want)
			}
		})
	}
}
