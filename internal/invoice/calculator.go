package invoice

import (
	"github.com/shopspring/decimal"

	"github.com/ledgerbridge/faktura/internal/domain/entity"
	"github.com/ledgerbridge/faktura/pkg/money"
)

var hundred = decimal.NewFromInt(100)

// ComputeLine prices one line. Net is rounded first, VAT is computed from the
// rounded net and rounded again, gross is their rounded sum.
// Exempt (ZW, NP) and invalid rates contribute no VAT.
func ComputeLine(item entity.InvoiceItem) entity.LineComputation {
	net := money.Round2(item.UnitPriceNet.Mul(item.Quantity))

	vat := decimal.Zero
	switch item.VATRate.Kind() {
	case entity.VATRatePercentage:
		rate := decimal.NewFromInt(int64(item.VATRate.Percent())).Div(hundred)
		vat = money.Round2(net.Mul(rate))
	case entity.VATRateExempt, entity.VATRateInvalid:
	}

	return entity.LineComputation{
		Net:   net,
		VAT:   vat,
		Gross: money.Round2(net.Add(vat)),
	}
}

// ComputeLines prices every item, preserving order.
func ComputeLines(items []entity.InvoiceItem) []entity.LineComputation {
	lines := make([]entity.LineComputation, len(items))
	for i, item := range items {
		lines[i] = ComputeLine(item)
	}
	return lines
}
