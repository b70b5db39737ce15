package invoice

import (
	"bytes"
	"encoding/json"
	"time"
)

// FormValue is a raw, unvalidated form field. It accepts JSON strings and
// numbers alike so that "2", 2 and "2.50" all reach validation unchanged.
type FormValue string

// UnmarshalJSON implements json.Unmarshaler.
func (v *FormValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = FormValue(s)
		return nil
	}
	*v = FormValue(data)
	return nil
}

// PartyDraft is seller or buyer input as submitted by the form.
type PartyDraft struct {
	Name        string `json:"name"`
	NIP         string `json:"nip"`
	Address     string `json:"address"`
	PostalCode  string `json:"postal_code"`
	BankAccount string `json:"bank_account"`
}

// ItemDraft is one line as submitted by the form.
type ItemDraft struct {
	Name         string    `json:"name"`
	Quantity     FormValue `json:"quantity"`
	Unit         string    `json:"unit"`
	UnitPriceNet FormValue `json:"unit_price_net"`
	VATRate      FormValue `json:"vat_rate"`
}

// Draft is the raw input for a new invoice. Number is optional; when empty
// the sequencer assigns one using Prefix (or the assembler's default).
type Draft struct {
	Number    string      `json:"number"`
	Prefix    string      `json:"prefix"`
	Seller    PartyDraft  `json:"seller"`
	Buyer     PartyDraft  `json:"buyer"`
	Items     []ItemDraft `json:"items"`
	IssueDate *time.Time  `json:"issue_date"`
	SaleDate  *time.Time  `json:"sale_date"`
	DueDate   *time.Time  `json:"due_date"`
	MPP       bool        `json:"mpp"`
	Notes     string      `json:"notes"`
	Currency  string      `json:"currency"`
}
