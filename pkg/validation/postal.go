package validation

import "regexp"

var postalPattern = regexp.MustCompile(`^\d{2}-\d{3}$`)

// FormatPostalCode keeps the first five digits of input and inserts a hyphen
// after the second one: "00100" -> "00-100".
func FormatPostalCode(input string) string {
	digits := digitsOnly(input)
	if len(digits) > 5 {
		digits = digits[:5]
	}
	if len(digits) <= 2 {
		return digits
	}
	return digits[:2] + "-" + digits[2:]
}

// IsValidPostalCode reports whether input is exactly NN-NNN.
func IsValidPostalCode(input string) bool {
	return postalPattern.MatchString(input)
}
