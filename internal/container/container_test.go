package container

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ledgerbridge/faktura/internal/application/port"
	"github.com/ledgerbridge/faktura/internal/config"
	"github.com/ledgerbridge/faktura/internal/invoice"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Database.Path = filepath.Join(t.TempDir(), "faktura.db")
	return cfg
}

func fixedClock() time.Time { return time.Date(2025, 10, 3, 9, 0, 0, 0, time.UTC) }

func startContainer(t *testing.T, cfg *config.Config) *Container {
	t.Helper()

	c, err := NewContainer(cfg, zap.NewNop(), WithClock(fixedClock))
	require.NoError(t, err)
	require.NoError(t, c.Start(context.Background()))
	return c
}

func draft() invoice.Draft {
	return invoice.Draft{
		Seller: invoice.PartyDraft{Name: "Firma Sp. z o.o.", NIP: "6292370846", BankAccount: "PL61109010140000071219812874"},
		Buyer:  invoice.PartyDraft{Name: "Klient", NIP: "5260250274", Address: "ul. Długa 5", PostalCode: "00-001"},
		Items: []invoice.ItemDraft{
			{Name: "Usługa", Quantity: "2", Unit: "szt", UnitPriceNet: "1000", VATRate: "23"},
			{Name: "Szkolenie", Quantity: "1", Unit: "usł", UnitPriceNet: "500", VATRate: "ZW"},
		},
	}
}

func TestContainer_EndToEnd(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	c := startContainer(t, cfg)
	assert.True(t, c.Ready())
	assert.True(t, c.Health(ctx).Overall)

	svc := c.InvoiceService()
	view, err := svc.CreateInvoice(ctx, draft())
	require.NoError(t, err)
	assert.Equal(t, "FV/2025/10/001", view.Invoice.Number)
	assert.Equal(t, "2960.00", view.Totals.Gross.StringFixed(2))

	got, err := svc.GetInvoice(ctx, "FV/2025/10/001")
	require.NoError(t, err)
	assert.True(t, view.Totals.Amounts.Equal(got.Totals.Amounts))
	assert.Equal(t, view.Totals.RateLabels(), got.Totals.RateLabels())
	assert.Equal(t, "PL61 1090 1014 0000 0712 1981 2874", got.Invoice.Seller.BankAccount)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportInvoice(ctx, "FV/2025/10/001", &buf))
	assert.NotZero(t, buf.Len())

	addrs, err := svc.RecentAddresses(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ul. Długa 5"}, addrs)

	require.NoError(t, c.Close())
	assert.False(t, c.Ready())
	assert.Error(t, c.Close())
	assert.False(t, c.Health(ctx).Overall)

	// numbering survives a restart
	c = startContainer(t, cfg)
	defer c.Close()

	view, err = c.InvoiceService().CreateInvoice(ctx, draft())
	require.NoError(t, err)
	assert.Equal(t, "FV/2025/10/002", view.Invoice.Number)
}

func TestContainer_ExplicitAndAutomaticNumbers(t *testing.T) {
	ctx := context.Background()
	c := startContainer(t, testConfig(t))
	defer c.Close()
	svc := c.InvoiceService()

	manual := draft()
	manual.Number = "FV/2025/10/001"
	_, err := svc.CreateInvoice(ctx, manual)
	require.NoError(t, err)

	for _, want := range []string{"FV/2025/10/002", "FV/2025/10/003", "FV/2025/10/004"} {
		view, err := svc.CreateInvoice(ctx, draft())
		require.NoError(t, err)
		assert.Equal(t, want, view.Invoice.Number)
	}

	// a rejected duplicate leaves numbering usable
	_, err = svc.CreateInvoice(ctx, manual)
	assert.ErrorIs(t, err, port.ErrDuplicateNumber)

	manual.Number = "FV/2025/10/010"
	_, err = svc.CreateInvoice(ctx, manual)
	require.NoError(t, err)

	next, err := svc.PeekNumber(ctx, "", fixedClock())
	require.NoError(t, err)
	assert.Equal(t, "FV/2025/10/011", next)

	view, err := svc.CreateInvoice(ctx, draft())
	require.NoError(t, err)
	assert.Equal(t, "FV/2025/10/011", view.Invoice.Number)
}

func TestContainer_StartTwice(t *testing.T) {
	c := startContainer(t, testConfig(t))
	defer c.Close()

	assert.Error(t, c.Start(context.Background()))
}

func TestContainer_CustomPrefix(t *testing.T) {
	cfg := testConfig(t)
	cfg.Numbering.Prefix = "FA"

	c := startContainer(t, cfg)
	defer c.Close()

	next, err := c.InvoiceService().PeekNumber(context.Background(), "", time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "FA/2025/12/001", next)
}

func TestNewContainer_RejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Numbering.Prefix = ""

	_, err := NewContainer(cfg, zap.NewNop())
	assert.Error(t, err)

	_, err = NewContainer(nil, zap.NewNop())
	assert.Error(t, err)
}

func TestContainer_MissingTemplate(t *testing.T) {
	cfg := testConfig(t)
	cfg.Export.TemplatePath = filepath.Join(t.TempDir(), "missing.xlsx")

	c, err := NewContainer(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Error(t, c.Start(context.Background()))
}
