package timeutil

import (
	"strings"
	"time"
)

// WallClockLayout is the second-precision local timestamp format used on
// lease records.
const WallClockLayout = "2006-01-02 15:04:05"

// DayLayout is the calendar-day format used on credential expiry dates.
const DayLayout = "2006-01-02"

// FormatWallClock renders t in the lease timestamp format.
func FormatWallClock(t time.Time) string {
	return t.Format(WallClockLayout)
}

// ParseWallClock parses a lease timestamp in local time.
func ParseWallClock(s string) (time.Time, error) {
	return time.ParseInLocation(WallClockLayout, strings.TrimSpace(s), time.Local)
}

// WallClockPassed reports whether the timestamp s lies in the past relative
// to now. Unparseable or empty values count as not passed.
func WallClockPassed(s string, now time.Time) bool {
	t, err := ParseWallClock(s)
	if err != nil {
		return false
	}
	return now.After(t)
}

// DayPassed reports whether a day-granularity expiry date has passed.
// A date is valid through the end of its own day: "2026-08-30" expires at
// 2026-08-31 00:00:00 local time. Empty or unparseable dates never pass.
func DayPassed(day string, now time.Time) bool {
	day = strings.TrimSpace(day)
	if day == "" {
		return false
	}
	d, err := time.ParseInLocation(DayLayout, day, time.Local)
	if err != nil {
		return false
	}
	return !now.Before(d.AddDate(0, 0, 1))
}
