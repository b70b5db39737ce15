package validation

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// FormatStreetAddress collapses runs of whitespace and trims the ends.
func FormatStreetAddress(input string) string {
	return strings.Join(strings.Fields(input), " ")
}

// IsValidStreetAddress accepts "street number" strings such as
// "Dąbrowskiego 12", "Grunwaldzka 12A/3" or "al. Jana Pawła II 15".
// The street name must come before the first digit.
func IsValidStreetAddress(input string) bool {
	s := FormatStreetAddress(input)
	if utf8.RuneCountInString(s) < 3 {
		return false
	}

	seenLetter, seenDigit := false, false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			seenLetter = true
		case r >= '0' && r <= '9':
			if !seenLetter {
				return false
			}
			seenDigit = true
		case r == ' ', r == '.', r == '-', r == '/', r == '\'':
		default:
			return false
		}
	}
	return seenLetter && seenDigit
}
