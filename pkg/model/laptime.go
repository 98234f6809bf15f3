package model

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatLapSeconds renders a lap duration in seconds as M:SS.mmm.
func FormatLapSeconds(seconds float64) string {
	if seconds <= 0 {
		return "-:--.---"
	}
	minutes := int(seconds) / 60
	rest := seconds - float64(minutes*60)
	return fmt.Sprintf("%d:%06.3f", minutes, rest)
}

// LapSeconds parses a M:SS.mmm lap time back into seconds.
func LapSeconds(lapTime string) (float64, error) {
	parts := strings.SplitN(strings.TrimSpace(lapTime), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid lap time %q", lapTime)
	}
	minutes, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid lap time %q: %w", lapTime, err)
	}
	seconds, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid lap time %q: %w", lapTime, err)
	}
	return minutes*60 + seconds, nil
}
