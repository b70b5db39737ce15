package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ledgerbridge/faktura/pkg/money"
)

var (
	plUnits    = []string{"", "jeden", "dwa", "trzy", "cztery", "pięć", "sześć", "siedem", "osiem", "dziewięć"}
	plTeens    = []string{"dziesięć", "jedenaście", "dwanaście", "trzynaście", "czternaście", "piętnaście", "szesnaście", "siedemnaście", "osiemnaście", "dziewiętnaście"}
	plTens     = []string{"", "", "dwadzieścia", "trzydzieści", "czterdzieści", "pięćdziesiąt", "sześćdziesiąt", "siedemdziesiąt", "osiemdziesiąt", "dziewięćdziesiąt"}
	plHundreds = []string{"", "sto", "dwieście", "trzysta", "czterysta", "pięćset", "sześćset", "siedemset", "osiemset", "dziewięćset"}

	// singular, 2-4 form, 5+ form
	plScales = [][3]string{
		{"", "", ""},
		{"tysiąc", "tysiące", "tysięcy"},
		{"milion", "miliony", "milionów"},
		{"miliard", "miliardy", "miliardów"},
		{"bilion", "biliony", "bilionów"},
		{"biliard", "biliardy", "biliardów"},
		{"trylion", "tryliony", "trylionów"},
		{"tryliard", "tryliardy", "tryliardów"},
		{"kwadrylion", "kwadryliony", "kwadrylionów"},
		{"kwadryliard", "kwadryliardy", "kwadryliardów"},
	}
)

// AmountInWords spells an amount the way Polish invoices print it under
// "Słownie": "dwa tysiące czterysta sześćdziesiąt PLN 00/100".
func AmountInWords(amount decimal.Decimal, currency string) string {
	amount = money.Round2(amount).Abs()
	whole := amount.Truncate(0)
	cents := amount.Sub(whole).Shift(2).IntPart()

	return fmt.Sprintf("%s %s %02d/100", integerInWords(whole.String()), currency, cents)
}

// integerInWords spells a non-negative integer given as decimal digits.
// Numbers beyond the scale table are returned as digits.
func integerInWords(digits string) string {
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return "zero"
	}
	if len(digits) > 3*len(plScales) {
		return digits
	}

	var groups []string
	for scale := 0; len(digits) > 0; scale++ {
		start := len(digits) - 3
		if start < 0 {
			start = 0
		}
		g, _ := strconv.Atoi(digits[start:])
		digits = digits[:start]
		if g == 0 {
			continue
		}

		var words string
		if scale > 0 && g == 1 {
			words = plScales[scale][0]
		} else {
			words = groupInWords(g)
			if scale > 0 {
				words += " " + plScales[scale][pluralForm(g)]
			}
		}
		groups = append([]string{words}, groups...)
	}
	return strings.Join(groups, " ")
}

func groupInWords(g int) string {
	var parts []string
	if h := g / 100; h > 0 {
		parts = append(parts, plHundreds[h])
	}
	rest := g % 100
	switch {
	case rest >= 10 && rest < 20:
		parts = append(parts, plTeens[rest-10])
	default:
		if t := rest / 10; t > 0 {
			parts = append(parts, plTens[t])
		}
		if u := rest % 10; u > 0 {
			parts = append(parts, plUnits[u])
		}
	}
	return strings.Join(parts, " ")
}

// pluralForm picks the Polish noun form for a count: 1, 2-4 (not 12-14), or the rest.
func pluralForm(n int) int {
	if n == 1 {
		return 0
	}
	if d := n % 10; d >= 2 && d <= 4 && (n%100 < 12 || n%100 > 14) {
		return 1
	}
	return 2
}
