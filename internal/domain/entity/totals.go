package entity

import (
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ledgerbridge/faktura/pkg/money"
)

// Amounts is a net/VAT/gross triple, each rounded to 2 decimals.
type Amounts struct {
	Net   decimal.Decimal `json:"net"`
	VAT   decimal.Decimal `json:"vat"`
	Gross decimal.Decimal `json:"gross"`
}

// LineComputation holds the amounts of a single invoice line.
type LineComputation = Amounts

// Add returns the component-wise sum, rounded after the addition.
func (a Amounts) Add(b Amounts) Amounts {
	return Amounts{
		Net:   money.Round2(a.Net.Add(b.Net)),
		VAT:   money.Round2(a.VAT.Add(b.VAT)),
		Gross: money.Round2(a.Gross.Add(b.Gross)),
	}
}

// Equal compares amounts by value.
func (a Amounts) Equal(b Amounts) bool {
	return a.Net.Equal(b.Net) && a.VAT.Equal(b.VAT) && a.Gross.Equal(b.Gross)
}

// InvoiceTotals are the invoice-level sums plus the per-VAT-rate breakdown keyed by rate label.
type InvoiceTotals struct {
	Amounts
	Breakdown map[string]Amounts `json:"breakdown"`
}

// RateLabels returns the breakdown keys: taxed rates from highest to lowest, then exemption codes.
func (t InvoiceTotals) RateLabels() []string {
	labels := make([]string, 0, len(t.Breakdown))
	for label := range t.Breakdown {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		pi, iok := percentOf(labels[i])
		pj, jok := percentOf(labels[j])
		switch {
		case iok && jok:
			return pi > pj
		case iok != jok:
			return iok
		}
		return labels[i] < labels[j]
	})
	return labels
}

func percentOf(label string) (int, bool) {
	if !strings.HasSuffix(label, "%") {
		return 0, false
	}
	p, err := strconv.Atoi(strings.TrimSuffix(label, "%"))
	return p, err == nil
}
