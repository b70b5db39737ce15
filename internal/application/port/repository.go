package port

import (
	"context"

	"github.com/ledgerbridge/faktura/internal/domain/entity"
	"github.com/ledgerbridge/faktura/internal/invoice"
)

// InvoiceRepository defines persistence operations for Invoice.
// Invoices are keyed by their number.
type InvoiceRepository interface {
	// Create stores a new invoice. Returns ErrDuplicateNumber if the number is taken.
	Create(ctx context.Context, inv *entity.Invoice) error
	// GetByNumber returns ErrNotFound when no invoice has the number.
	GetByNumber(ctx context.Context, number string) (*entity.Invoice, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Invoice, error)
}

// SequenceRepository is the durable counter behind invoice numbering.
type SequenceRepository interface {
	invoice.CounterStore
	Current(ctx context.Context, prefix, monthKey string) (int64, error)
}

// SellerProfileRepository stores the single seller profile.
type SellerProfileRepository interface {
	// Get returns ErrNotFound when no profile was saved yet.
	Get(ctx context.Context) (*entity.SellerProfile, error)
	Save(ctx context.Context, profile *entity.SellerProfile) error
	Delete(ctx context.Context) error
}

// AddressHistoryRepository remembers recently used street addresses.
type AddressHistoryRepository interface {
	Remember(ctx context.Context, addresses ...string) error
	Recent(ctx context.Context, limit int) ([]string, error)
}

// TransactionManager manages database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
