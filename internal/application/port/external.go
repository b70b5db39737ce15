package port

import (
	"io"

	"github.com/ledgerbridge/faktura/internal/invoice"
)

// InvoiceRenderer writes a priced invoice in some document format.
type InvoiceRenderer interface {
	Render(view *invoice.View, w io.Writer) error
	// ContentType is the MIME type of the rendered document.
	ContentType() string
	// Extension is the file extension including the dot.
	Extension() string
}
