package invoice

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerbridge/faktura/internal/domain/entity"
	"github.com/ledgerbridge/faktura/pkg/validation"
)

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Accepted shape of quantities and prices. Anything outside is refused
// before it reaches rounding.
const (
	minExponent = -6
	maxExponent = 12
	maxDigits   = 18
)

// AssemblerConfig configures an Assembler. Zero values select defaults.
type AssemblerConfig struct {
	Prefix string
	Now    func() time.Time
	NewID  func() string
}

// Assembler turns raw drafts into validated, numbered invoices.
type Assembler struct {
	sequencer *Sequencer
	prefix    string
	now       func() time.Time
	newID     func() string
}

// NewAssembler creates an assembler that numbers invoices with sequencer.
func NewAssembler(sequencer *Sequencer, cfg AssemblerConfig) *Assembler {
	a := &Assembler{
		sequencer: sequencer,
		prefix:    cfg.Prefix,
		now:       cfg.Now,
		newID:     cfg.NewID,
	}
	if a.prefix == "" {
		a.prefix = DefaultPrefix
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.newID == nil {
		a.newID = uuid.NewString
	}
	return a
}

// CreateInvoice validates d and, if it has no explicit number, assigns the
// next one. An explicit number is claimed so the counter moves past it.
// Field problems are returned together as ValidationErrors; a counter
// failure is returned as ErrSequencing and no invoice is produced.
func (a *Assembler) CreateInvoice(ctx context.Context, d Draft) (*entity.Invoice, error) {
	inv, prefix, errs := a.assemble(d)
	if len(errs) > 0 {
		return nil, errs
	}

	if inv.Number != "" {
		if err := a.sequencer.Claim(ctx, inv.Number); err != nil {
			return nil, err
		}
		return inv, nil
	}

	number, err := a.sequencer.NextNumber(ctx, prefix, inv.IssueDate)
	if err != nil {
		return nil, err
	}
	inv.Number = number

	return inv, nil
}

// Prefix is the prefix used when a draft names none.
func (a *Assembler) Prefix() string { return a.prefix }

// Validate checks d without consuming a number.
func (a *Assembler) Validate(d Draft) error {
	if _, _, errs := a.assemble(d); len(errs) > 0 {
		return errs
	}
	return nil
}

func (a *Assembler) assemble(d Draft) (*entity.Invoice, string, ValidationErrors) {
	var errs ValidationErrors

	now := a.now()
	inv := &entity.Invoice{
		ID:        a.newID(),
		Number:    strings.TrimSpace(d.Number),
		Seller:    parseParty("seller", d.Seller, &errs),
		Buyer:     parseParty("buyer", d.Buyer, &errs),
		IssueDate: now,
		SaleDate:  d.SaleDate,
		DueDate:   d.DueDate,
		MPP:       d.MPP,
		Notes:     strings.TrimSpace(d.Notes),
		Currency:  strings.ToUpper(strings.TrimSpace(d.Currency)),
		CreatedAt: now,
	}
	if d.IssueDate != nil && !d.IssueDate.IsZero() {
		inv.IssueDate = *d.IssueDate
	}

	items, itemErrs := ParseItems(d.Items)
	errs = append(errs, itemErrs...)
	inv.Items = items

	prefix := strings.TrimSpace(d.Prefix)
	if prefix == "" {
		prefix = a.prefix
	}
	if inv.Number != "" {
		if !ValidNumber(inv.Number) {
			errs.add("number", "must match PREFIX/YYYY/MM/NNN")
		}
	} else if !prefixPattern.MatchString(prefix) {
		errs.add("prefix", "must be upper-case letters, digits or '-'")
	}

	if inv.Currency == "" {
		inv.Currency = entity.DefaultCurrency
	} else if !currencyPattern.MatchString(inv.Currency) {
		errs.add("currency", "must be a 3-letter ISO 4217 code")
	}

	if inv.DueDate != nil && dateOnly(*inv.DueDate).Before(dateOnly(inv.IssueDate)) {
		errs.add("due_date", "must not be before the issue date")
	}

	return inv, prefix, errs
}

// ParseParty validates a seller or buyer on its own, tagging errors with field.
func ParseParty(field string, p PartyDraft) (entity.Party, ValidationErrors) {
	var errs ValidationErrors
	party := parseParty(field, p, &errs)
	return party, errs
}

func parseParty(field string, p PartyDraft, errs *ValidationErrors) entity.Party {
	party := entity.Party{Name: strings.TrimSpace(p.Name)}

	if party.Name == "" {
		errs.add(field+".name", "is required")
	}

	switch {
	case strings.TrimSpace(p.NIP) == "":
		errs.add(field+".nip", "is required")
	case !validation.IsValidNIP(p.NIP):
		errs.add(field+".nip", "invalid NIP")
	default:
		party.NIP = validation.FormatNIP(p.NIP)
	}

	if addr := validation.FormatStreetAddress(p.Address); addr != "" {
		if validation.IsValidStreetAddress(addr) {
			party.Address = addr
		} else {
			errs.add(field+".address", "invalid street and number")
		}
	}

	if postal := validation.FormatPostalCode(p.PostalCode); postal != "" {
		if validation.IsValidPostalCode(postal) {
			party.PostalCode = postal
		} else {
			errs.add(field+".postal_code", "invalid postal code (NN-NNN)")
		}
	}

	if strings.TrimSpace(p.BankAccount) != "" {
		if validation.IsValidIBAN(p.BankAccount) {
			party.BankAccount = validation.FormatIBAN(p.BankAccount)
		} else {
			errs.add(field+".bank_account", "invalid IBAN/NRB")
		}
	}

	return party
}

// ParseItems validates raw lines. It returns the parsed items in order and
// every problem found; an empty list is itself an error.
func ParseItems(drafts []ItemDraft) ([]entity.InvoiceItem, ValidationErrors) {
	var errs ValidationErrors
	if len(drafts) == 0 {
		errs.add("items", "at least one item is required")
		return nil, errs
	}

	items := make([]entity.InvoiceItem, 0, len(drafts))
	for i, d := range drafts {
		field := fmt.Sprintf("items[%d]", i)
		item := entity.InvoiceItem{
			Name: strings.TrimSpace(d.Name),
			Unit: strings.TrimSpace(d.Unit),
		}

		if item.Name == "" {
			errs.add(field+".name", "is required")
		}
		if item.Unit == "" {
			errs.add(field+".unit", "is required")
		}

		if qty, ok := parseDecimal(field+".quantity", d.Quantity, &errs); ok {
			if !qty.IsPositive() {
				errs.add(field+".quantity", "must be greater than 0")
			}
			item.Quantity = qty
		}

		if price, ok := parseDecimal(field+".unit_price_net", d.UnitPriceNet, &errs); ok {
			if price.IsNegative() {
				errs.add(field+".unit_price_net", "must not be negative")
			}
			item.UnitPriceNet = price
		}

		if strings.TrimSpace(string(d.VATRate)) == "" {
			errs.add(field+".vat_rate", "is required")
		} else if rate, err := entity.ParseVATRate(string(d.VATRate)); err != nil {
			errs.add(field+".vat_rate", "must be one of 23, 8, 5, 0, ZW, NP")
		} else {
			item.VATRate = rate
		}

		items = append(items, item)
	}

	return items, errs
}

func parseDecimal(field string, v FormValue, errs *ValidationErrors) (decimal.Decimal, bool) {
	s := strings.TrimSpace(string(v))
	if s == "" {
		errs.add(field, "is required")
		return decimal.Zero, false
	}
	// Polish forms use a decimal comma.
	s = strings.Replace(s, ",", ".", 1)
	d, err := decimal.NewFromString(s)
	if err != nil {
		errs.add(field, "must be a number")
		return decimal.Zero, false
	}
	if exp := d.Exponent(); exp < minExponent || exp > maxExponent || d.NumDigits() > maxDigits {
		errs.add(field, "is out of range")
		return decimal.Zero, false
	}
	return d, true
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
