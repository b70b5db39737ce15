package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/ledgerbridge/faktura/internal/application/port"
	"github.com/ledgerbridge/faktura/internal/infrastructure/persistence/sqlite"
)

// MaxAddressHistory is how many distinct addresses are kept.
const MaxAddressHistory = 10

// AddressHistoryRepository implements port.AddressHistoryRepository
type AddressHistoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAddressHistoryRepository creates a new address history repository
func NewAddressHistoryRepository(db *sql.DB, logger *zap.Logger) *AddressHistoryRepository {
	return &AddressHistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Remember marks addresses as used, in order; the last one becomes the most recent.
// Only the newest MaxAddressHistory entries are kept.
func (r *AddressHistoryRepository) Remember(ctx context.Context, addresses ...string) error {
	exec := sqlite.Executor(ctx, r.db)

	upsert := `
		INSERT INTO address_history (address, last_used)
		VALUES (?, (SELECT COALESCE(MAX(last_used), 0) + 1 FROM address_history))
		ON CONFLICT (address) DO UPDATE SET last_used = excluded.last_used
	`
	for _, addr := range addresses {
		if addr == "" {
			continue
		}
		if _, err := exec.ExecContext(ctx, upsert, addr); err != nil {
			r.logger.Error("Failed to remember address", zap.String("address", addr), zap.Error(err))
			return fmt.Errorf("%w: remember address: %w", port.ErrPersistence, err)
		}
	}

	prune := `
		DELETE FROM address_history
		WHERE address NOT IN (
			SELECT address FROM address_history ORDER BY last_used DESC LIMIT ?
		)
	`
	if _, err := exec.ExecContext(ctx, prune, MaxAddressHistory); err != nil {
		return fmt.Errorf("%w: prune address history: %w", port.ErrPersistence, err)
	}
	return nil
}

// Recent returns up to limit addresses, most recently used first
func (r *AddressHistoryRepository) Recent(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 || limit > MaxAddressHistory {
		limit = MaxAddressHistory
	}

	rows, err := sqlite.Executor(ctx, r.db).QueryContext(ctx,
		`SELECT address FROM address_history ORDER BY last_used DESC LIMIT ?`, limit)
	if err != nil {
		r.logger.Error("Failed to list address history", zap.Error(err))
		return nil, fmt.Errorf("%w: list address history: %w", port.ErrPersistence, err)
	}
	defer rows.Close()

	addresses := []string{}
	for rows.Next() {
		var addr string
		if err := rows.Scan(&addr); err != nil {
			return nil, fmt.Errorf("%w: scan address: %w", port.ErrPersistence, err)
		}
		addresses = append(addresses, addr)
	}
	return addresses, rows.Err()
}

// Verify interface compliance
var _ port.AddressHistoryRepository = (*AddressHistoryRepository)(nil)
