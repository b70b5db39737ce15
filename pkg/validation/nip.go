package validation

import "strings"

var nipWeights = [9]int{6, 5, 7, 2, 3, 4, 5, 6, 7}

// digitsOnly drops every rune that is not an ASCII digit.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsValidNIP reports whether input holds a 10-digit NIP with a matching mod-11 checksum.
// Separators such as dashes and spaces are ignored.
func IsValidNIP(input string) bool {
	digits := digitsOnly(input)
	if len(digits) != 10 {
		return false
	}

	sum := 0
	for i, w := range nipWeights {
		sum += w * int(digits[i]-'0')
	}
	check := sum % 11
	return check != 10 && check == int(digits[9]-'0')
}

// FormatNIP groups the digits of input as XXX-XXX-XX-XX.
// Partial input is formatted progressively: "12345" -> "123-45".
func FormatNIP(input string) string {
	digits := digitsOnly(input)
	if len(digits) > 10 {
		digits = digits[:10]
	}

	bounds := []int{3, 6, 8, 10}
	parts := make([]string, 0, len(bounds))
	start := 0
	for _, end := range bounds {
		if start >= len(digits) {
			break
		}
		if end > len(digits) {
			end = len(digits)
		}
		parts = append(parts, digits[start:end])
		start = end
	}
	return strings.Join(parts, "-")
}
