package shared

import (
	"errors"
	"strings"
	"time"
)

var ErrInvalidPeriod = errors.New("period must be in YYYY-MM format")

// ParsePeriod reads a YYYY-MM pay period. An empty value means the month
// containing now.
func ParsePeriod(value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC), nil
	}
	parsed, err := time.Parse("2006-01", value)
	if err != nil {
		return time.Time{}, ErrInvalidPeriod
	}
	return parsed, nil
}
