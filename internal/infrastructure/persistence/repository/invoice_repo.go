package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ledgerbridge/faktura/internal/application/port"
	"github.com/ledgerbridge/faktura/internal/domain/entity"
	"github.com/ledgerbridge/faktura/internal/infrastructure/persistence/sqlite"
)

// InvoiceRepository implements port.InvoiceRepository
type InvoiceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *sql.DB, logger *zap.Logger) *InvoiceRepository {
	return &InvoiceRepository{
		db:     db,
		logger: logger,
	}
}

const invoiceColumns = `
	id, number,
	seller_name, seller_nip, seller_address, seller_postal_code, seller_bank_account,
	buyer_name, buyer_nip, buyer_address, buyer_postal_code, buyer_bank_account,
	issue_date, sale_date, due_date, mpp, notes, currency, created_at`

// Create stores the invoice header and its items. Items are written in order
// with their position, so a fetched invoice lists them exactly as issued.
// Timestamps are stored in UTC so the text columns sort chronologically.
func (r *InvoiceRepository) Create(ctx context.Context, inv *entity.Invoice) error {
	exec := sqlite.Executor(ctx, r.db)

	query := `INSERT INTO invoices (` + invoiceColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := exec.ExecContext(ctx, query,
		inv.ID,
		inv.Number,
		inv.Seller.Name, inv.Seller.NIP, inv.Seller.Address, inv.Seller.PostalCode, inv.Seller.BankAccount,
		inv.Buyer.Name, inv.Buyer.NIP, inv.Buyer.Address, inv.Buyer.PostalCode, inv.Buyer.BankAccount,
		inv.IssueDate.UTC(),
		nullableTime(inv.SaleDate),
		nullableTime(inv.DueDate),
		inv.MPP,
		inv.Notes,
		inv.Currency,
		inv.CreatedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", port.ErrDuplicateNumber, inv.Number)
		}
		r.logger.Error("Failed to create invoice", zap.String("number", inv.Number), zap.Error(err))
		return fmt.Errorf("%w: create invoice: %w", port.ErrPersistence, err)
	}

	itemQuery := `
		INSERT INTO invoice_items (invoice_id, position, name, quantity, unit, unit_price_net, vat_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	for i, item := range inv.Items {
		if _, err := exec.ExecContext(ctx, itemQuery,
			inv.ID,
			i,
			item.Name,
			item.Quantity.String(),
			item.Unit,
			item.UnitPriceNet.String(),
			item.VATRate.Label(),
		); err != nil {
			r.logger.Error("Failed to create invoice item",
				zap.String("number", inv.Number),
				zap.Int("position", i),
				zap.Error(err))
			return fmt.Errorf("%w: create invoice item %d: %w", port.ErrPersistence, i, err)
		}
	}

	r.logger.Debug("Invoice stored", zap.String("number", inv.Number), zap.Int("items", len(inv.Items)))
	return nil
}

// GetByNumber retrieves an invoice and its items by invoice number
func (r *InvoiceRepository) GetByNumber(ctx context.Context, number string) (*entity.Invoice, error) {
	exec := sqlite.Executor(ctx, r.db)

	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE number = ?`
	inv, err := scanInvoice(exec.QueryRowContext(ctx, query, number))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: invoice %s", port.ErrNotFound, number)
	}
	if err != nil {
		r.logger.Error("Failed to get invoice", zap.String("number", number), zap.Error(err))
		return nil, fmt.Errorf("%w: get invoice: %w", port.ErrPersistence, err)
	}

	items, err := r.getItems(ctx, exec, inv.ID)
	if err != nil {
		return nil, err
	}
	inv.Items = items

	return inv, nil
}

// List returns invoices newest first, with their items
func (r *InvoiceRepository) List(ctx context.Context, limit, offset int) ([]*entity.Invoice, error) {
	exec := sqlite.Executor(ctx, r.db)

	query := `SELECT ` + invoiceColumns + `
		FROM invoices
		ORDER BY issue_date DESC, number DESC
		LIMIT ? OFFSET ?`

	rows, err := exec.QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list invoices", zap.Error(err))
		return nil, fmt.Errorf("%w: list invoices: %w", port.ErrPersistence, err)
	}
	defer rows.Close()

	var invoices []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan invoice: %w", port.ErrPersistence, err)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list invoices: %w", port.ErrPersistence, err)
	}

	for _, inv := range invoices {
		items, err := r.getItems(ctx, exec, inv.ID)
		if err != nil {
			return nil, err
		}
		inv.Items = items
	}

	return invoices, nil
}

func (r *InvoiceRepository) getItems(ctx context.Context, exec sqlite.QueryExecutor, invoiceID string) ([]entity.InvoiceItem, error) {
	query := `
		SELECT name, quantity, unit, unit_price_net, vat_rate
		FROM invoice_items
		WHERE invoice_id = ?
		ORDER BY position
	`

	rows, err := exec.QueryContext(ctx, query, invoiceID)
	if err != nil {
		r.logger.Error("Failed to get invoice items", zap.String("invoice_id", invoiceID), zap.Error(err))
		return nil, fmt.Errorf("%w: get invoice items: %w", port.ErrPersistence, err)
	}
	defer rows.Close()

	var items []entity.InvoiceItem
	for rows.Next() {
		var (
			item            entity.InvoiceItem
			qty, price, vat string
		)
		if err := rows.Scan(&item.Name, &qty, &item.Unit, &price, &vat); err != nil {
			return nil, fmt.Errorf("%w: scan invoice item: %w", port.ErrPersistence, err)
		}
		if item.Quantity, err = decimal.NewFromString(qty); err != nil {
			return nil, fmt.Errorf("%w: corrupt quantity %q: %w", port.ErrPersistence, qty, err)
		}
		if item.UnitPriceNet, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("%w: corrupt unit price %q: %w", port.ErrPersistence, price, err)
		}
		if item.VATRate, err = entity.ParseVATRate(vat); err != nil {
			return nil, fmt.Errorf("%w: corrupt VAT rate %q: %w", port.ErrPersistence, vat, err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInvoice(row rowScanner) (*entity.Invoice, error) {
	var (
		inv      entity.Invoice
		saleDate sql.NullTime
		dueDate  sql.NullTime
	)

	err := row.Scan(
		&inv.ID,
		&inv.Number,
		&inv.Seller.Name, &inv.Seller.NIP, &inv.Seller.Address, &inv.Seller.PostalCode, &inv.Seller.BankAccount,
		&inv.Buyer.Name, &inv.Buyer.NIP, &inv.Buyer.Address, &inv.Buyer.PostalCode, &inv.Buyer.BankAccount,
		&inv.IssueDate,
		&saleDate,
		&dueDate,
		&inv.MPP,
		&inv.Notes,
		&inv.Currency,
		&inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if saleDate.Valid {
		inv.SaleDate = &saleDate.Time
	}
	if dueDate.Valid {
		inv.DueDate = &dueDate.Time
	}

	return &inv, nil
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

// Verify interface compliance
var _ port.InvoiceRepository = (*InvoiceRepository)(nil)
