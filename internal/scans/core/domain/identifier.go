package domain

import "regexp"

// 00xxxxxx codes, or any standalone 6-8 digit run.
var identifierPattern = regexp.MustCompile(`(?:\b00\d{6}\b|\b\d{6,8}\b)`)

// ExtractIdentifier returns the first scooter identifier found in text.
func ExtractIdentifier(text string) (string, bool) {
	m := identifierPattern.FindString(text)
	return m, m != ""
}
