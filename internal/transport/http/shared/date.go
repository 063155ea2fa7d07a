package shared

import "time"

// ParseDate accepts RFC3339 or a bare YYYY-MM-DD, which is what the
// leave and timetable payloads send for calendar dates. An empty string
// parses to the zero time.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse("2006-01-02", value)
}
