package db

import "time"

// nilIfZeroTime returns nil for the zero time so the column stores NULL
// (or the DEFAULT applies) instead of 0001-01-01.
func nilIfZeroTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

// nilIfEmpty returns nil for "" so empty strings are stored as NULL.
func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// derefOrEmpty collapses a scanned nullable text column to "".
func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
