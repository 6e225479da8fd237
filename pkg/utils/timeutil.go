package utils

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical date format used in inputs, logs and reports.
const DateLayout = "2006-01-02"

// dateLayouts lists the accepted input date formats, tried in order.
var dateLayouts = []string{
	DateLayout,
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// ParseDate parses a date in any accepted layout and returns it as a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOnly(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// DateOnly truncates t to midnight UTC of its own calendar date.
// The wall-clock date in t's location is kept.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateIn returns the calendar date of t as observed in loc, as a UTC midnight.
func DateIn(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return DateOnly(t.In(loc))
}

// CalendarDays returns the whole number of calendar days from ref to t.
// Weekends and holidays count like any other day.
func CalendarDays(t, ref time.Time) int {
	return int(DateOnly(t).Sub(DateOnly(ref)).Hours() / 24)
}

// AddDays shifts a calendar date by n days.
func AddDays(t time.Time, n int) time.Time {
	return DateOnly(t).AddDate(0, 0, n)
}

// FormatDate formats a time.Time as "2006-01-02".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(DateLayout)
}
