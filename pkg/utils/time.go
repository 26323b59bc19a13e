package utils

import "time"

// MsToTime converts milliseconds to time.Duration
func MsToTime(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}

// TimeToMs converts time.Duration to milliseconds
func TimeToMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d time.Duration) string {
	if d < time.Microsecond {
		return d.String()
	}
	if d < time.Millisecond {
		return d.Round(time.Microsecond).String()
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	if d < time.Minute {
		return d.Round(10 * time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}

// MinDuration returns the smaller of two durations
func MinDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
