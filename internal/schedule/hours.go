// Package schedule holds the pure time rules for booking slots. Slots are one
// hour wide: two requests inside the same hour normalize to the same instant
// and collide.
package schedule

import "time"

// StartOfHour truncates t to the beginning of its wall-clock hour,
// preserving location. time.Truncate is not used because it rounds on
// absolute time and misbehaves in half-hour-offset zones.
func StartOfHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

// IsPast reports whether t is strictly before now.
func IsPast(t, now time.Time) bool {
	return t.Before(now)
}

// HoursBefore returns t minus n hours.
func HoursBefore(t time.Time, n int) time.Time {
	return t.Add(-time.Duration(n) * time.Hour)
}
