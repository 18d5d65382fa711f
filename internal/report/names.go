package report

import "strings"

// Names resolves display names for user ids.
type Names interface {
	Name(userID int64) string
}

// FirstName picks the given name out of "Surname Name ..." and falls back
// to the whole string.
func FirstName(full string) string {
	parts := strings.Fields(full)
	if len(parts) < 2 {
		return full
	}
	return parts[1]
}
