package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ledgerbridge/faktura/internal/application/port"
	"github.com/ledgerbridge/faktura/internal/domain/entity"
	"github.com/ledgerbridge/faktura/internal/invoice"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// InvoiceView is an invoice with its computed lines and totals.
type InvoiceView = invoice.View

// Preview holds the amounts of an unsaved list of items.
type Preview struct {
	Lines  []entity.LineComputation `json:"lines"`
	Totals entity.InvoiceTotals     `json:"totals"`
}

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// InvoiceService issues, stores and renders invoices
type InvoiceService interface {
	CreateInvoice(ctx context.Context, draft invoice.Draft) (*InvoiceView, error)
	Preview(ctx context.Context, items []invoice.ItemDraft) (*Preview, error)
	GetInvoice(ctx context.Context, number string) (*InvoiceView, error)
	ListInvoices(ctx context.Context, limit, offset int) ([]*InvoiceView, error)
	ExportInvoice(ctx context.Context, number string, w io.Writer) error

	// NextNumber reserves and returns the next number for prefix in date's month.
	NextNumber(ctx context.Context, prefix string, date time.Time) (string, error)
	// PeekNumber returns the number NextNumber would reserve, without reserving it.
	PeekNumber(ctx context.Context, prefix string, date time.Time) (string, error)

	SellerProfile(ctx context.Context) (*entity.SellerProfile, error)
	SaveSellerProfile(ctx context.Context, party entity.Party) (*entity.SellerProfile, error)
	DeleteSellerProfile(ctx context.Context) error
	RecentAddresses(ctx context.Context) ([]string, error)
}

type invoiceServiceImpl struct {
	assembler   *invoice.Assembler
	sequencer   *invoice.Sequencer
	invoiceRepo port.InvoiceRepository
	seqRepo     port.SequenceRepository
	profileRepo port.SellerProfileRepository
	addressRepo port.AddressHistoryRepository
	txManager   port.TransactionManager
	renderer    port.InvoiceRenderer
	now         func() time.Time
	logger      Logger
}

// InvoiceServiceConfig carries numbering settings for NewInvoiceService.
type InvoiceServiceConfig struct {
	Prefix string
	Now    func() time.Time
	NewID  func() string
}

// NewInvoiceService creates a new InvoiceService. Numbers are drawn from
// seqRepo inside the same transaction that stores the invoice.
func NewInvoiceService(
	invoiceRepo port.InvoiceRepository,
	seqRepo port.SequenceRepository,
	profileRepo port.SellerProfileRepository,
	addressRepo port.AddressHistoryRepository,
	txManager port.TransactionManager,
	renderer port.InvoiceRenderer,
	cfg InvoiceServiceConfig,
	logger Logger,
) InvoiceService {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	sequencer := invoice.NewSequencer(seqRepo, now)

	return &invoiceServiceImpl{
		assembler: invoice.NewAssembler(sequencer, invoice.AssemblerConfig{
			Prefix: cfg.Prefix,
			Now:    now,
			NewID:  cfg.NewID,
		}),
		sequencer:   sequencer,
		invoiceRepo: invoiceRepo,
		seqRepo:     seqRepo,
		profileRepo: profileRepo,
		addressRepo: addressRepo,
		txManager:   txManager,
		renderer:    renderer,
		now:         now,
		logger:      logger,
	}
}

// CreateInvoice validates the draft, assigns a number and stores the
// invoice. Numbering and storage share one transaction so a failed insert
// does not consume a number.
func (s *invoiceServiceImpl) CreateInvoice(ctx context.Context, draft invoice.Draft) (*InvoiceView, error) {
	var inv *entity.Invoice

	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.assembler.CreateInvoice(ctx, draft)
		if err != nil {
			return err
		}

		if err := s.invoiceRepo.Create(ctx, inv); err != nil {
			return err
		}

		return s.addressRepo.Remember(ctx, inv.Seller.Address, inv.Buyer.Address)
	})
	if err != nil {
		err = busyAsSequencing(err)
		if _, ok := invoice.AsValidationErrors(err); !ok {
			s.logger.Error("Failed to create invoice", "error", err)
		}
		return nil, err
	}

	view := invoice.NewView(inv)
	s.logger.Info("Invoice created",
		"number", inv.Number,
		"id", inv.ID,
		"gross", view.Totals.Gross.StringFixed(2))

	return view, nil
}

// Preview prices items without numbering or storing anything.
func (s *invoiceServiceImpl) Preview(ctx context.Context, drafts []invoice.ItemDraft) (*Preview, error) {
	items, errs := invoice.ParseItems(drafts)
	if len(errs) > 0 {
		return nil, errs
	}

	return &Preview{
		Lines:  invoice.ComputeLines(items),
		Totals: invoice.Aggregate(items),
	}, nil
}

// GetInvoice returns port.ErrNotFound for unknown numbers.
func (s *invoiceServiceImpl) GetInvoice(ctx context.Context, number string) (*InvoiceView, error) {
	inv, err := s.invoiceRepo.GetByNumber(ctx, strings.TrimSpace(number))
	if err != nil {
		return nil, err
	}
	return invoice.NewView(inv), nil
}

// ListInvoices returns newest invoices first.
func (s *invoiceServiceImpl) ListInvoices(ctx context.Context, limit, offset int) ([]*InvoiceView, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	invoices, err := s.invoiceRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	views := make([]*InvoiceView, 0, len(invoices))
	for _, inv := range invoices {
		views = append(views, invoice.NewView(inv))
	}
	return views, nil
}

// ExportInvoice renders the stored invoice to w.
func (s *invoiceServiceImpl) ExportInvoice(ctx context.Context, number string, w io.Writer) error {
	view, err := s.GetInvoice(ctx, number)
	if err != nil {
		return err
	}

	if err := s.renderer.Render(view, w); err != nil {
		s.logger.Error("Failed to render invoice", "number", number, "error", err)
		return fmt.Errorf("failed to render invoice %s: %w", number, err)
	}
	return nil
}

func (s *invoiceServiceImpl) NextNumber(ctx context.Context, prefix string, date time.Time) (string, error) {
	prefix = s.prefixOrDefault(prefix)

	var number string
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		number, err = s.sequencer.NextNumber(ctx, prefix, date)
		return err
	})
	if err != nil {
		return "", busyAsSequencing(err)
	}

	s.logger.Info("Invoice number reserved", "number", number)
	return number, nil
}

func (s *invoiceServiceImpl) PeekNumber(ctx context.Context, prefix string, date time.Time) (string, error) {
	prefix = s.prefixOrDefault(prefix)
	if !invoice.ValidPrefix(prefix) {
		return "", fmt.Errorf("%w: %q", invoice.ErrInvalidPrefix, prefix)
	}

	current, err := s.seqRepo.Current(ctx, prefix, invoice.MonthKey(date))
	if err != nil {
		return "", fmt.Errorf("%w: %w", invoice.ErrSequencing, err)
	}
	return invoice.FormatNumber(prefix, date.Year(), int(date.Month()), current+1), nil
}

// busyAsSequencing reports a locked store as a numbering outage: no number
// was issued and the caller may retry.
func busyAsSequencing(err error) error {
	if errors.Is(err, port.ErrBusy) && !errors.Is(err, invoice.ErrSequencing) {
		return fmt.Errorf("%w: %w", invoice.ErrSequencing, err)
	}
	return err
}

func (s *invoiceServiceImpl) prefixOrDefault(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return s.assembler.Prefix()
	}
	return prefix
}

// SellerProfile returns port.ErrNotFound until a profile is saved.
func (s *invoiceServiceImpl) SellerProfile(ctx context.Context) (*entity.SellerProfile, error) {
	return s.profileRepo.Get(ctx)
}

// SaveSellerProfile validates party like an invoice seller and stores it
// with identifiers in their formatted form.
func (s *invoiceServiceImpl) SaveSellerProfile(ctx context.Context, party entity.Party) (*entity.SellerProfile, error) {
	parsed, errs := invoice.ParseParty("seller", invoice.PartyDraft{
		Name:        party.Name,
		NIP:         party.NIP,
		Address:     party.Address,
		PostalCode:  party.PostalCode,
		BankAccount: party.BankAccount,
	})
	if len(errs) > 0 {
		return nil, errs
	}

	profile := &entity.SellerProfile{Party: parsed, UpdatedAt: s.now()}
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.profileRepo.Save(ctx, profile); err != nil {
			return err
		}
		return s.addressRepo.Remember(ctx, profile.Address)
	})
	if err != nil {
		s.logger.Error("Failed to save seller profile", "error", err)
		return nil, err
	}

	s.logger.Info("Seller profile saved", "nip", profile.NIP)
	return profile, nil
}

func (s *invoiceServiceImpl) DeleteSellerProfile(ctx context.Context) error {
	if err := s.profileRepo.Delete(ctx); err != nil && !errors.Is(err, port.ErrNotFound) {
		return err
	}
	s.logger.Info("Seller profile deleted")
	return nil
}

// RecentAddresses returns up to ten addresses, most recently used first.
func (s *invoiceServiceImpl) RecentAddresses(ctx context.Context) ([]string, error) {
	return s.addressRepo.Recent(ctx, maxRecentAddresses)
}

const maxRecentAddresses = 10
