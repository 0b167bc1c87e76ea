// Package timeutil provides calendar-day utilities for the progression
// engine. Daily challenges, streaks and time-of-day achievements all depend on
// "which day is it for this user", so day boundaries are computed in a
// configurable location rather than hardcoded UTC.
// No external dependencies - uses only standard library.
package timeutil

import (
	"time"
)

// In normalizes a nil location to UTC.
func In(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}

// StartOfDay returns the start of the day (00:00:00) in the given location.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	loc = In(loc)
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// EndOfDay returns the end of the day (23:59:59.999999999) in the given
// location.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	loc = In(loc)
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, loc)
}

// DayBounds returns the [start, end) half-open interval of the day containing
// t in the given location. End is the start of the next day, the form range
// queries want.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	start := StartOfDay(t, loc)
	return start, start.AddDate(0, 0, 1)
}

// IsSameDay checks if two times fall on the same calendar day in the given
// location.
func IsSameDay(t1, t2 time.Time, loc *time.Location) bool {
	loc = In(loc)
	a, b := t1.In(loc), t2.In(loc)
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// IsConsecutiveDay checks if t2 is on the day after t1.
func IsConsecutiveDay(t1, t2 time.Time, loc *time.Location) bool {
	return IsSameDay(t1.In(In(loc)).AddDate(0, 0, 1), t2, loc)
}

// DaysBetween returns the number of whole calendar days between two times,
// always non-negative.
func DaysBetween(t1, t2 time.Time, loc *time.Location) int {
	a := StartOfDay(t1, loc)
	b := StartOfDay(t2, loc)
	days := int(b.Sub(a).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}

// HourOf returns the local clock hour (0-23) of t in the given location.
func HourOf(t time.Time, loc *time.Location) int {
	return t.In(In(loc)).Hour()
}

// Clock-hour encoding used by time-of-day achievement conditions: an hour is
// stored as HH00 (2200 = 22:00, 500 = 05:00).

// EncodeHour encodes a clock hour as HH00.
func EncodeHour(hour int) int {
	return hour * 100
}

// DecodeHour decodes an HH00 value back to a clock hour.
func DecodeHour(encoded int) int {
	return encoded / 100
}

// Common date/time formats.
const (
	// FormatDate is the standard date format (YYYY-MM-DD).
	FormatDate = "2006-01-02"
	// FormatTime is the standard time format (HH:MM).
	FormatTime = "15:04"
	// FormatDateTime is the standard datetime format.
	FormatDateTime = "2006-01-02 15:04"
)

// FormatDateStr formats a time as a date string (YYYY-MM-DD) in the given
// location.
func FormatDateStr(t time.Time, loc *time.Location) string {
	return t.In(In(loc)).Format(FormatDate)
}

// ParseDate parses a date string (YYYY-MM-DD) in the given location.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(FormatDate, value, In(loc))
}
