package cli

import (
	"testing"
	"time"
)

func TestFormatAge(t *testing.T) {
	now := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{-time.Second, "0s"},
		{0, "0s"},
		{42 * time.Second, "42s"},
		{5*time.Minute + 10*time.Second, "5m"},
		{3 * time.Hour, "3h"},
		{49 * time.Hour, "2d"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatAge(now.Add(-tt.ago), now); got != tt.want {
				t.Errorf("FormatAge(-%v) = %q, want %q", tt.ago, got, tt.want)
			}
		})
	}
}

func TestFormatYesNo(t *testing.T) {
	if FormatYesNo(true) != "yes" || FormatYesNo(false) != "no" {
		t.Error("FormatYesNo mismatch")
	}
}
