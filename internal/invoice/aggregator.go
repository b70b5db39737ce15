package invoice

import (
	"github.com/shopspring/decimal"

	"github.com/ledgerbridge/faktura/internal/domain/entity"
)

// Aggregate sums already-rounded line amounts into invoice totals and a
// per-rate breakdown. An empty item list yields zero totals and an empty breakdown.
func Aggregate(items []entity.InvoiceItem) entity.InvoiceTotals {
	totals := entity.InvoiceTotals{
		Amounts: entity.Amounts{
			Net:   decimal.Zero,
			VAT:   decimal.Zero,
			Gross: decimal.Zero,
		},
		Breakdown: make(map[string]entity.Amounts),
	}

	for _, item := range items {
		line := ComputeLine(item)
		totals.Amounts = totals.Amounts.Add(line)

		label := item.VATRate.Label()
		totals.Breakdown[label] = totals.Breakdown[label].Add(line)
	}

	return totals
}
