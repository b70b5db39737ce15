package validation

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	ibanPLPattern = regexp.MustCompile(`^PL\d{26}$`)
	nrbPattern    = regexp.MustCompile(`^\d{26}$`)
)

// NormalizeIBAN uppercases input and strips whitespace. A bare 26-digit NRB
// gets the PL country code prepended.
func NormalizeIBAN(input string) string {
	raw := strings.ToUpper(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, input))

	if strings.HasPrefix(raw, "PL") {
		return raw
	}
	if nrbPattern.MatchString(raw) {
		return "PL" + raw
	}
	return raw
}

// IsValidIBAN reports whether input is a Polish IBAN (or NRB) with a valid
// ISO 7064 mod-97 checksum.
func IsValidIBAN(input string) bool {
	iban := NormalizeIBAN(input)
	if !ibanPLPattern.MatchString(iban) {
		return false
	}
	return mod97(iban[4:]+iban[:4]) == 1
}

// FormatIBAN returns the normalized IBAN in blocks of four characters, or an
// empty string when input is not a valid Polish IBAN.
func FormatIBAN(input string) string {
	if !IsValidIBAN(input) {
		return ""
	}
	iban := NormalizeIBAN(input)

	var b strings.Builder
	for i := 0; i < len(iban); i += 4 {
		if i > 0 {
			b.WriteByte(' ')
		}
		end := i + 4
		if end > len(iban) {
			end = len(iban)
		}
		b.WriteString(iban[i:end])
	}
	return b.String()
}

// mod97 reduces the numeric form of s digit by digit; letters count as A=10..Z=35.
func mod97(s string) int {
	remainder := 0
	feed := func(d int) {
		remainder = (remainder*10 + d) % 97
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch >= '0' && ch <= '9':
			feed(int(ch - '0'))
		case ch >= 'A' && ch <= 'Z':
			code := int(ch-'A') + 10
			feed(code / 10)
			feed(code % 10)
		}
	}
	return remainder
}
