package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when an invoice does not name one.
const DefaultCurrency = "PLN"

// Party is the seller or the buyer on an invoice.
// Identifiers are stored in their formatted form (NIP XXX-XXX-XX-XX, IBAN in 4-char blocks).
type Party struct {
	Name        string `json:"name"`
	NIP         string `json:"nip,omitempty"`
	Address     string `json:"address,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	BankAccount string `json:"bank_account,omitempty"`
}

// InvoiceItem is a single priced line of an invoice
type InvoiceItem struct {
	Name         string          `json:"name"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
	UnitPriceNet decimal.Decimal `json:"unit_price_net"`
	VATRate      VATRate         `json:"vat_rate"`
}

// Invoice is an issued Polish VAT invoice.
// Totals are not stored; they are recomputed from Items.
type Invoice struct {
	ID        string        `json:"id"`
	Number    string        `json:"number"`
	Seller    Party         `json:"seller"`
	Buyer     Party         `json:"buyer"`
	Items     []InvoiceItem `json:"items"`
	IssueDate time.Time     `json:"issue_date"`
	SaleDate  *time.Time    `json:"sale_date,omitempty"`
	DueDate   *time.Time    `json:"due_date,omitempty"`
	MPP       bool          `json:"mpp"`
	Notes     string        `json:"notes,omitempty"`
	Currency  string        `json:"currency"`
	CreatedAt time.Time     `json:"created_at"`
}

// SellerProfile is the stored seller identity used to prefill new invoices.
type SellerProfile struct {
	Party
	UpdatedAt time.Time `json:"updated_at"`
}
