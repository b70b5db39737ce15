package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ledgerbridge/faktura/internal/application/port"
	"github.com/ledgerbridge/faktura/internal/domain/entity"
	"github.com/ledgerbridge/faktura/internal/infrastructure/persistence/sqlite"
)

// SellerProfileRepository implements port.SellerProfileRepository
type SellerProfileRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSellerProfileRepository creates a new seller profile repository
func NewSellerProfileRepository(db *sql.DB, logger *zap.Logger) *SellerProfileRepository {
	return &SellerProfileRepository{
		db:     db,
		logger: logger,
	}
}

// Get returns the stored profile
func (r *SellerProfileRepository) Get(ctx context.Context) (*entity.SellerProfile, error) {
	query := `
		SELECT name, nip, address, postal_code, bank_account, updated_at
		FROM seller_profile
		WHERE id = 1
	`

	var p entity.SellerProfile
	err := sqlite.Executor(ctx, r.db).QueryRowContext(ctx, query).Scan(
		&p.Name,
		&p.NIP,
		&p.Address,
		&p.PostalCode,
		&p.BankAccount,
		&p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: seller profile", port.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get seller profile", zap.Error(err))
		return nil, fmt.Errorf("%w: get seller profile: %w", port.ErrPersistence, err)
	}

	return &p, nil
}

// Save inserts or replaces the profile
func (r *SellerProfileRepository) Save(ctx context.Context, p *entity.SellerProfile) error {
	query := `
		INSERT INTO seller_profile (id, name, nip, address, postal_code, bank_account, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			nip = excluded.nip,
			address = excluded.address,
			postal_code = excluded.postal_code,
			bank_account = excluded.bank_account,
			updated_at = excluded.updated_at
	`

	_, err := sqlite.Executor(ctx, r.db).ExecContext(ctx, query,
		p.Name,
		p.NIP,
		p.Address,
		p.PostalCode,
		p.BankAccount,
		p.UpdatedAt.UTC(),
	)
	if err != nil {
		r.logger.Error("Failed to save seller profile", zap.Error(err))
		return fmt.Errorf("%w: save seller profile: %w", port.ErrPersistence, err)
	}
	return nil
}

// Delete removes the profile; deleting a missing profile is not an error
func (r *SellerProfileRepository) Delete(ctx context.Context) error {
	if _, err := sqlite.Executor(ctx, r.db).ExecContext(ctx, `DELETE FROM seller_profile WHERE id = 1`); err != nil {
		r.logger.Error("Failed to delete seller profile", zap.Error(err))
		return fmt.Errorf("%w: delete seller profile: %w", port.ErrPersistence, err)
	}
	return nil
}

// Verify interface compliance
var _ port.SellerProfileRepository = (*SellerProfileRepository)(nil)
