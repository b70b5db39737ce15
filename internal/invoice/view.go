package invoice

import "github.com/ledgerbridge/faktura/internal/domain/entity"

// View is an invoice together with every amount a renderer may display.
// Renderers read money only from here and never recompute it.
type View struct {
	Invoice *entity.Invoice          `json:"invoice"`
	Lines   []entity.LineComputation `json:"lines"`
	Totals  entity.InvoiceTotals     `json:"totals"`
}

// NewView prices inv.
func NewView(inv *entity.Invoice) *View {
	return &View{
		Invoice: inv,
		Lines:   ComputeLines(inv.Items),
		Totals:  Aggregate(inv.Items),
	}
}
