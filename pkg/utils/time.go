package utils

import "time"

// ParseRFC3339 parses a time string in RFC3339 format. Fractional
// seconds are accepted.
func ParseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
