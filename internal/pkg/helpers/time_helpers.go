package helpers

import (
	"time"

	"github.com/yigit/photoalbum/internal/pkg/logger"
)

// ParseDuration parses a duration string, returns default duration on error.
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		logger.Warn().Err(err).Str("durationStr", durationStr).Dur("defaultDuration", defaultDuration).Msg("Failed to parse duration string, using default")
		return defaultDuration
	}
	return duration
}

// Elapsed returns the time since start rounded to milliseconds, for log fields.
func Elapsed(start time.Time) time.Duration {
	return time.Since(start).Round(time.Millisecond)
}
