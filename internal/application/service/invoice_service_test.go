package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbridge/faktura/internal/application/port"
	"github.com/ledgerbridge/faktura/internal/domain/entity"
	"github.com/ledgerbridge/faktura/internal/invoice"
)

// Mock repositories
type mockInvoiceRepo struct {
	mu         sync.Mutex
	invoices   map[string]*entity.Invoice
	order      []string
	createFunc func(ctx context.Context, inv *entity.Invoice) error
	listFunc   func(ctx context.Context, limit, offset int) ([]*entity.Invoice, error)
}

func newMockInvoiceRepo() *mockInvoiceRepo {
	return &mockInvoiceRepo{invoices: make(map[string]*entity.Invoice)}
}

func (m *mockInvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, inv)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.invoices[inv.Number]; ok {
		return port.ErrDuplicateNumber
	}
	m.invoices[inv.Number] = inv
	m.order = append(m.order, inv.Number)
	return nil
}

func (m *mockInvoiceRepo) GetByNumber(ctx context.Context, number string) (*entity.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[number]
	if !ok {
		return nil, port.ErrNotFound
	}
	return inv, nil
}

func (m *mockInvoiceRepo) List(ctx context.Context, limit, offset int) ([]*entity.Invoice, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, limit, offset)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Invoice
	for _, n := range m.order {
		out = append(out, m.invoices[n])
	}
	return out, nil
}

type mockSequenceRepo struct {
	mu           sync.Mutex
	counters     map[string]int64
	incrementErr error
}

func newMockSequenceRepo() *mockSequenceRepo {
	return &mockSequenceRepo{counters: make(map[string]int64)}
}

func (m *mockSequenceRepo) Increment(ctx context.Context, prefix, monthKey string) (int64, error) {
	if m.incrementErr != nil {
		return 0, m.incrementErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[prefix+"|"+monthKey]++
	return m.counters[prefix+"|"+monthKey], nil
}

func (m *mockSequenceRepo) Advance(ctx context.Context, prefix, monthKey string, ordinal int64) error {
	if m.incrementErr != nil {
		return m.incrementErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if ordinal > m.counters[prefix+"|"+monthKey] {
		m.counters[prefix+"|"+monthKey] = ordinal
	}
	return nil
}

func (m *mockSequenceRepo) Current(ctx context.Context, prefix, monthKey string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[prefix+"|"+monthKey], nil
}

type mockProfileRepo struct {
	profile *entity.SellerProfile
	saveErr error
}

func (m *mockProfileRepo) Get(ctx context.Context) (*entity.SellerProfile, error) {
	if m.profile == nil {
		return nil, port.ErrNotFound
	}
	return m.profile, nil
}

func (m *mockProfileRepo) Save(ctx context.Context, p *entity.SellerProfile) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.profile = p
	return nil
}

func (m *mockProfileRepo) Delete(ctx context.Context) error {
	if m.profile == nil {
		return port.ErrNotFound
	}
	m.profile = nil
	return nil
}

type mockAddressRepo struct {
	remembered []string
}

func (m *mockAddressRepo) Remember(ctx context.Context, addresses ...string) error {
	for _, a := range addresses {
		if a != "" {
			m.remembered = append(m.remembered, a)
		}
	}
	return nil
}

func (m *mockAddressRepo) Recent(ctx context.Context, limit int) ([]string, error) {
	out := []string{}
	for i := len(m.remembered) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.remembered[i])
	}
	return out, nil
}

type mockTxManager struct {
	calls    int
	beginErr error
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	if m.beginErr != nil {
		return m.beginErr
	}
	return fn(ctx)
}

type mockRenderer struct {
	rendered *InvoiceView
	err      error
}

func (m *mockRenderer) Render(view *invoice.View, w io.Writer) error {
	if m.err != nil {
		return m.err
	}
	m.rendered = view
	_, err := w.Write([]byte(view.Invoice.Number))
	return err
}

func (m *mockRenderer) ContentType() string { return "text/plain" }
func (m *mockRenderer) Extension() string   { return ".txt" }

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

type fixture struct {
	svc      InvoiceService
	invoices *mockInvoiceRepo
	seq      *mockSequenceRepo
	profile  *mockProfileRepo
	address  *mockAddressRepo
	tx       *mockTxManager
	renderer *mockRenderer
}

var fixedNow = time.Date(2025, 10, 3, 12, 0, 0, 0, time.UTC)

func newFixture() *fixture {
	f := &fixture{
		invoices: newMockInvoiceRepo(),
		seq:      newMockSequenceRepo(),
		profile:  &mockProfileRepo{},
		address:  &mockAddressRepo{},
		tx:       &mockTxManager{},
		renderer: &mockRenderer{},
	}
	f.svc = NewInvoiceService(f.invoices, f.seq, f.profile, f.address, f.tx, f.renderer,
		InvoiceServiceConfig{Now: func() time.Time { return fixedNow }},
		&mockLogger{})
	return f
}

func validDraft() invoice.Draft {
	return invoice.Draft{
		Seller: invoice.PartyDraft{Name: "Firma Sp. z o.o.", NIP: "6292370846", Address: "ul. Długa 5", PostalCode: "00-001"},
		Buyer:  invoice.PartyDraft{Name: "Klient S.A.", NIP: "5260250274", Address: "Al. Jerozolimskie 100"},
		Items: []invoice.ItemDraft{
			{Name: "Usługa", Quantity: "2", Unit: "szt", UnitPriceNet: "1000.00", VATRate: "23"},
		},
	}
}

func TestInvoiceService_CreateInvoice(t *testing.T) {
	f := newFixture()

	view, err := f.svc.CreateInvoice(context.Background(), validDraft())
	require.NoError(t, err)

	assert.Equal(t, "FV/2025/10/001", view.Invoice.Number)
	assert.Equal(t, "629-237-08-46", view.Invoice.Seller.NIP)
	assert.Equal(t, "2460.00", view.Totals.Gross.StringFixed(2))
	require.Len(t, view.Lines, 1)
	assert.Equal(t, "460.00", view.Lines[0].VAT.StringFixed(2))
	assert.Equal(t, 1, f.tx.calls)
	assert.Equal(t, []string{"ul. Długa 5", "Al. Jerozolimskie 100"}, f.address.remembered)

	stored, err := f.svc.GetInvoice(context.Background(), "FV/2025/10/001")
	require.NoError(t, err)
	assert.Equal(t, view.Invoice.ID, stored.Invoice.ID)

	second, err := f.svc.CreateInvoice(context.Background(), validDraft())
	require.NoError(t, err)
	assert.Equal(t, "FV/2025/10/002", second.Invoice.Number)
}

func TestInvoiceService_CreateInvoice_ValidationErrors(t *testing.T) {
	f := newFixture()
	draft := validDraft()
	draft.Buyer.NIP = "1234567890"
	draft.Items[0].Quantity = "0"

	_, err := f.svc.CreateInvoice(context.Background(), draft)
	require.Error(t, err)

	verrs, ok := invoice.AsValidationErrors(err)
	require.True(t, ok)
	assert.True(t, verrs.Has("buyer.nip"))
	assert.True(t, verrs.Has("items[0].quantity"))
	assert.Empty(t, f.invoices.invoices)
	assert.Empty(t, f.address.remembered)

	// no number was consumed
	view, err := f.svc.CreateInvoice(context.Background(), validDraft())
	require.NoError(t, err)
	assert.Equal(t, "FV/2025/10/001", view.Invoice.Number)
}

func TestInvoiceService_CreateInvoice_Duplicate(t *testing.T) {
	f := newFixture()
	draft := validDraft()
	draft.Number = "FV/2025/10/007"

	_, err := f.svc.CreateInvoice(context.Background(), draft)
	require.NoError(t, err)

	_, err = f.svc.CreateInvoice(context.Background(), draft)
	assert.ErrorIs(t, err, port.ErrDuplicateNumber)

	view, err := f.svc.CreateInvoice(context.Background(), validDraft())
	require.NoError(t, err)
	assert.Equal(t, "FV/2025/10/008", view.Invoice.Number)
}

func TestInvoiceService_CreateInvoice_SequencingFailure(t *testing.T) {
	f := newFixture()
	f.seq.incrementErr = errors.New("database is locked")

	view, err := f.svc.CreateInvoice(context.Background(), validDraft())
	assert.Nil(t, view)
	assert.ErrorIs(t, err, invoice.ErrSequencing)
	assert.Empty(t, f.invoices.invoices)
}

func TestInvoiceService_BusyStoreIsSequencingFailure(t *testing.T) {
	f := newFixture()
	f.tx.beginErr = fmt.Errorf("%w: begin transaction: database is locked", port.ErrBusy)

	_, err := f.svc.CreateInvoice(context.Background(), validDraft())
	assert.ErrorIs(t, err, invoice.ErrSequencing)
	assert.ErrorIs(t, err, port.ErrBusy)

	_, err = f.svc.NextNumber(context.Background(), "", fixedNow)
	assert.ErrorIs(t, err, invoice.ErrSequencing)

	f.tx.beginErr = nil
	view, err := f.svc.CreateInvoice(context.Background(), validDraft())
	require.NoError(t, err)
	assert.Equal(t, "FV/2025/10/001", view.Invoice.Number)
}

func TestInvoiceService_CreateInvoice_PersistenceFailure(t *testing.T) {
	f := newFixture()
	f.invoices.createFunc = func(ctx context.Context, inv *entity.Invoice) error {
		return port.ErrPersistence
	}

	_, err := f.svc.CreateInvoice(context.Background(), validDraft())
	assert.ErrorIs(t, err, port.ErrPersistence)
	assert.Empty(t, f.address.remembered)
}

func TestInvoiceService_Preview(t *testing.T) {
	f := newFixture()

	preview, err := f.svc.Preview(context.Background(), []invoice.ItemDraft{
		{Name: "A", Quantity: "1", Unit: "szt", UnitPriceNet: "100", VATRate: "23"},
		{Name: "B", Quantity: "1", Unit: "szt", UnitPriceNet: "50", VATRate: "8"},
		{Name: "C", Quantity: "1", Unit: "szt", UnitPriceNet: "10", VATRate: "ZW"},
	})
	require.NoError(t, err)

	assert.Equal(t, "160.00", preview.Totals.Net.StringFixed(2))
	assert.Equal(t, "27.00", preview.Totals.VAT.StringFixed(2))
	assert.Equal(t, "187.00", preview.Totals.Gross.StringFixed(2))
	assert.Equal(t, []string{"23%", "8%", "ZW"}, preview.Totals.RateLabels())
	assert.Len(t, preview.Lines, 3)

	_, err = f.svc.Preview(context.Background(), nil)
	verrs, ok := invoice.AsValidationErrors(err)
	require.True(t, ok)
	assert.True(t, verrs.Has("items"))

	_, err = f.svc.Preview(context.Background(), []invoice.ItemDraft{
		{Name: "A", Quantity: "1e-20000000", Unit: "szt", UnitPriceNet: "100", VATRate: "23"},
	})
	verrs, ok = invoice.AsValidationErrors(err)
	require.True(t, ok)
	assert.True(t, verrs.Has("items[0].quantity"))

	assert.Equal(t, 0, f.tx.calls)
}

func TestInvoiceService_GetInvoice_NotFound(t *testing.T) {
	f := newFixture()

	_, err := f.svc.GetInvoice(context.Background(), "FV/2025/10/999")
	assert.ErrorIs(t, err, port.ErrNotFound)
}

func TestInvoiceService_ListInvoices(t *testing.T) {
	f := newFixture()
	var gotLimit, gotOffset int
	f.invoices.listFunc = func(ctx context.Context, limit, offset int) ([]*entity.Invoice, error) {
		gotLimit, gotOffset = limit, offset
		return []*entity.Invoice{{Number: "FV/2025/10/001"}}, nil
	}

	tests := []struct {
		name                  string
		limit, offset         int
		wantLimit, wantOffset int
	}{
		{"defaults", 0, 0, defaultListLimit, 0},
		{"clamped", 10000, -5, maxListLimit, 0},
		{"passthrough", 20, 40, 20, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			views, err := f.svc.ListInvoices(context.Background(), tt.limit, tt.offset)
			require.NoError(t, err)
			require.Len(t, views, 1)
			assert.Equal(t, tt.wantLimit, gotLimit)
			assert.Equal(t, tt.wantOffset, gotOffset)
		})
	}
}

func TestInvoiceService_ExportInvoice(t *testing.T) {
	f := newFixture()
	_, err := f.svc.CreateInvoice(context.Background(), validDraft())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.svc.ExportInvoice(context.Background(), "FV/2025/10/001", &buf))
	assert.Equal(t, "FV/2025/10/001", buf.String())
	require.NotNil(t, f.renderer.rendered)
	assert.Equal(t, "2460.00", f.renderer.rendered.Totals.Gross.StringFixed(2))

	err = f.svc.ExportInvoice(context.Background(), "FV/2025/10/002", &buf)
	assert.ErrorIs(t, err, port.ErrNotFound)

	f.renderer.err = errors.New("disk full")
	err = f.svc.ExportInvoice(context.Background(), "FV/2025/10/001", &buf)
	assert.Error(t, err)
}

func TestInvoiceService_NextAndPeekNumber(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	date := time.Date(2025, 11, 15, 0, 0, 0, 0, time.UTC)

	peek, err := f.svc.PeekNumber(ctx, "", date)
	require.NoError(t, err)
	assert.Equal(t, "FV/2025/11/001", peek)

	next, err := f.svc.NextNumber(ctx, "", date)
	require.NoError(t, err)
	assert.Equal(t, "FV/2025/11/001", next)

	peek, err = f.svc.PeekNumber(ctx, "", date)
	require.NoError(t, err)
	assert.Equal(t, "FV/2025/11/002", peek)

	next, err = f.svc.NextNumber(ctx, "KOR", date)
	require.NoError(t, err)
	assert.Equal(t, "KOR/2025/11/001", next)

	_, err = f.svc.PeekNumber(ctx, "fv", date)
	assert.ErrorIs(t, err, invoice.ErrInvalidPrefix)
	_, err = f.svc.NextNumber(ctx, "fv", date)
	assert.ErrorIs(t, err, invoice.ErrInvalidPrefix)
}

func TestInvoiceService_SellerProfile(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.SellerProfile(ctx)
	assert.ErrorIs(t, err, port.ErrNotFound)

	saved, err := f.svc.SaveSellerProfile(ctx, entity.Party{
		Name:        "Firma",
		NIP:         "6292370846",
		Address:     "ul.  Długa   5",
		PostalCode:  "00-001",
		BankAccount: "61109010140000071219812874",
	})
	require.NoError(t, err)
	assert.Equal(t, "629-237-08-46", saved.NIP)
	assert.Equal(t, "ul. Długa 5", saved.Address)
	assert.Equal(t, "PL61 1090 1014 0000 0712 1981 2874", saved.BankAccount)
	assert.Equal(t, fixedNow, saved.UpdatedAt)

	got, err := f.svc.SellerProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, got)

	addrs, err := f.svc.RecentAddresses(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ul. Długa 5"}, addrs)

	require.NoError(t, f.svc.DeleteSellerProfile(ctx))
	require.NoError(t, f.svc.DeleteSellerProfile(ctx))
	_, err = f.svc.SellerProfile(ctx)
	assert.ErrorIs(t, err, port.ErrNotFound)
}

func TestInvoiceService_SaveSellerProfile_Invalid(t *testing.T) {
	f := newFixture()

	_, err := f.svc.SaveSellerProfile(context.Background(), entity.Party{
		Name:        "Firma",
		NIP:         "6292370846",
		BankAccount: "PL00 1234",
	})
	verrs, ok := invoice.AsValidationErrors(err)
	require.True(t, ok)
	assert.True(t, verrs.Has("seller.bank_account"))
	assert.Nil(t, f.profile.profile)
}
