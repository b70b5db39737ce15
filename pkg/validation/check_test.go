package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		kind, value   string
		wantValid     bool
		wantFormatted string
	}{
		{"nip", "629 237 08 46", true, "629-237-08-46"},
		{"NIP", "1234567890", false, "123-456-78-90"},
		{"iban", "61109010140000071219812874", true, "PL61 1090 1014 0000 0712 1981 2874"},
		{"nrb", "61109010140000071219812875", false, ""},
		{"postal", "00001", true, "00-001"},
		{"postal_code", "0000", false, "00-00"},
		{"address", "  ul.   Długa 5 ", true, "ul. Długa 5"},
		{"address", "5 Długa", false, "5 Długa"},
	}

	for _, tt := range tests {
		t.Run(tt.kind+"/"+tt.value, func(t *testing.T) {
			got, ok := Check(tt.kind, tt.value)
			assert.True(t, ok)
			assert.Equal(t, tt.wantValid, got.Valid)
			assert.Equal(t, tt.wantFormatted, got.Formatted)
			assert.Equal(t, tt.value, got.Value)
		})
	}

	_, ok := Check("pesel", "44051401359")
	assert.False(t, ok)
}
