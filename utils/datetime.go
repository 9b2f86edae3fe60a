package utils

import (
	"errors"
	"strings"
	"time"
)

// TimestampLayout is the rendering format for all exported timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"01-02-2006",
	"02.01.2006",
	"2006-01-02 15:04",
}

// ParseTimestamp tries the supported layouts in order. Callers treat a
// failure as a missing value, not a load error.
func ParseTimestamp(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, errors.New("unsupported timestamp format: " + s)
}

// DateOnly truncates to midnight UTC so day arithmetic is exact regardless
// of time-of-day or zone in the source data.
func DateOnly(value time.Time) time.Time {
	if value.IsZero() {
		return value
	}
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween is the signed whole-day difference to-minus-from, computed on
// calendar dates (midnight to midnight).
func DaysBetween(from time.Time, to time.Time) int {
	return int(DateOnly(to).Sub(DateOnly(from)).Hours() / 24)
}

// FormatTimestamp renders t for export; zero values render empty.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimestampLayout)
}
