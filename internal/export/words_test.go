package export

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAmountInWords(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"0", "zero PLN 00/100"},
		{"1", "jeden PLN 00/100"},
		{"12.5", "dwanaście PLN 50/100"},
		{"21.01", "dwadzieścia jeden PLN 01/100"},
		{"115", "sto piętnaście PLN 00/100"},
		{"1000", "tysiąc PLN 00/100"},
		{"1730", "tysiąc siedemset trzydzieści PLN 00/100"},
		{"2460", "dwa tysiące czterysta sześćdziesiąt PLN 00/100"},
		{"5000", "pięć tysięcy PLN 00/100"},
		{"12000", "dwanaście tysięcy PLN 00/100"},
		{"22000", "dwadzieścia dwa tysiące PLN 00/100"},
		{"1000000", "milion PLN 00/100"},
		{"2003004.99", "dwa miliony trzy tysiące cztery PLN 99/100"},
		{"0.005", "zero PLN 01/100"},
		{"1000000000000", "bilion PLN 00/100"},
		{"3000000000001", "trzy biliony jeden PLN 00/100"},
		{"5000000000000000", "pięć biliardów PLN 00/100"},
		{"2000000000000000000", "dwa tryliony PLN 00/100"},
		{"1000000000000000000000000000000", "1000000000000000000000000000000 PLN 00/100"},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, AmountInWords(decimal.RequireFromString(tt.amount), "PLN"))
		})
	}
}
