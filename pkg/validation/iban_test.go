package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var validIBANs = []string{
	"PL61109010140000071219812874",
	"PL27114020040000300201355387",
	"PL10105000997603123456789123",
}

func TestIsValidIBAN(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"valid iban", "PL61109010140000071219812874", true},
		{"valid lowercase with spaces", "pl61 1090 1014 0000 0712 1981 2874", true},
		{"valid bare nrb", "61109010140000071219812874", true},
		{"valid nrb with spaces", "27 1140 2004 0000 3002 0135 5387", true},
		{"bad checksum", "PL61109010140000071219812875", false},
		{"wrong country", "DE89370400440532013000", false},
		{"too short", "PL6110901014", false},
		{"letters in body", "PL6110901014000007121981287A", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidIBAN(tt.input))
		})
	}
}

func TestNormalizeIBAN(t *testing.T) {
	assert.Equal(t, "PL61109010140000071219812874", NormalizeIBAN("61 1090 1014 0000 0712 1981 2874"))
	assert.Equal(t, "PL61109010140000071219812874", NormalizeIBAN(" pl61109010140000071219812874 "))
	assert.Equal(t, "DE89", NormalizeIBAN("de 89"))
}

func TestFormatIBAN(t *testing.T) {
	assert.Equal(t, "PL61 1090 1014 0000 0712 1981 2874", FormatIBAN("61109010140000071219812874"))
	assert.Equal(t, "", FormatIBAN(""))
	assert.Equal(t, "", FormatIBAN("PL61109010140000071219812875"))
}

func TestFormatIBAN_RoundTrip(t *testing.T) {
	for _, iban := range validIBANs {
		formatted := FormatIBAN(iban)
		assert.NotEmpty(t, formatted)
		assert.True(t, IsValidIBAN(formatted), "formatted %q should stay valid", formatted)
		assert.Equal(t, formatted, FormatIBAN(formatted))
	}
}
