package util

import "time"

// ParseTimeRFC3339 parses an RFC3339 timestamp string to time.Time.
// Also accepts SQLite's "YYYY-MM-DD HH:MM:SS" so rows written by hand still load.
// Returns zero time if parsing fails.
func ParseTimeRFC3339(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	t, _ := time.Parse("2006-01-02 15:04:05", s)
	return t
}
