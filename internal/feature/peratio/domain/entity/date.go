package entity

import (
	"fmt"
	"strings"
	"time"
)

// DateFormat is the wire format for calendar days.
const DateFormat = "2006-01-02"

// acceptedLayouts are tried in order by ParseDate.
var acceptedLayouts = []string{
	DateFormat,
	"2006-01-02 15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

// NormalizeDate truncates t to its calendar day.
// The day is read from t's own wall clock, so the offset never shifts it,
// and the result is returned as midnight UTC so that days compare with ==, Before and After.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a provider date string and returns the normalized calendar day.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range acceptedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NormalizeDate(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// FormatDate formats t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return NormalizeDate(t).Format(DateFormat)
}
