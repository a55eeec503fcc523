// Package timeutil provides calendar-day utilities for streak and daily
// progress tracking. All progress state is stored in UTC: a "day" for streak
// purposes is a UTC calendar date, not a rolling 24-hour window.
// No external dependencies - uses only standard library.
package timeutil

import (
	"time"
)

// StartOfDay returns the start of the UTC calendar day containing t.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the last nanosecond of the UTC calendar day containing t.
func EndOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 23, 59, 59, 999999999, time.UTC)
}

// StartOfWeek returns the start of the week (Monday 00:00:00 UTC) containing t.
func StartOfWeek(t time.Time) time.Time {
	u := t.UTC()
	weekday := int(u.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	return StartOfDay(u.AddDate(0, 0, -(weekday - 1)))
}

// IsSameDay reports whether two times fall on the same UTC calendar day.
func IsSameDay(t1, t2 time.Time) bool {
	u1, u2 := t1.UTC(), t2.UTC()
	return u1.Year() == u2.Year() && u1.YearDay() == u2.YearDay()
}

// IsConsecutiveDay reports whether t2 falls on the UTC calendar day
// immediately after t1's day.
func IsConsecutiveDay(t1, t2 time.Time) bool {
	return IsSameDay(t1.UTC().AddDate(0, 0, 1), t2)
}

// DaysBetween returns the number of whole calendar days from t1's day to
// t2's day. Same day yields 0, the next day yields 1, and so on. The result
// is negative when t2 is before t1.
func DaysBetween(t1, t2 time.Time) int {
	d1 := StartOfDay(t1)
	d2 := StartOfDay(t2)
	return int(d2.Sub(d1).Hours() / 24)
}

// DaysSince returns the number of whole calendar days from t's day until
// today (UTC).
func DaysSince(t time.Time) int {
	return DaysBetween(t, time.Now().UTC())
}

// IsToday reports whether t falls on today's UTC calendar day.
func IsToday(t time.Time) bool {
	return IsSameDay(t, time.Now().UTC())
}

// IsYesterday reports whether t falls on yesterday's UTC calendar day.
func IsYesterday(t time.Time) bool {
	return IsSameDay(t, time.Now().UTC().AddDate(0, 0, -1))
}

// Common date/time formats used across storage keys and API payloads.
const (
	// FormatDate is the canonical date format (YYYY-MM-DD), used in
	// daily-snapshot storage keys.
	FormatDate = "2006-01-02"
	// FormatDateTime is the standard datetime format for human-readable output.
	FormatDateTime = "2006-01-02 15:04"
)

// DateKey formats t as a YYYY-MM-DD string in UTC. Daily snapshots and
// per-day cache entries are keyed by this value.
func DateKey(t time.Time) string {
	return t.UTC().Format(FormatDate)
}

// ParseDate parses a YYYY-MM-DD string as a UTC date.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(FormatDate, value, time.UTC)
}
