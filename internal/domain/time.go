package domain

import "time"

// TimeLayout is fixed width in UTC so stored timestamps sort as text on
// both SQLite and Postgres.
const TimeLayout = "2006-01-02T15:04:05.000000Z07:00"

func Now() string { return time.Now().UTC().Format(TimeLayout) }

// Date renders a stored timestamp as a calendar date, or "" when unparsable.
func Date(ts string) string {
	for _, layout := range []string{TimeLayout, time.RFC3339Nano, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.Format("02.01.2006")
		}
	}
	return ""
}
