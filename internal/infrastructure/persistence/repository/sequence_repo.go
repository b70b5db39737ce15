package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ledgerbridge/faktura/internal/application/port"
	"github.com/ledgerbridge/faktura/internal/infrastructure/persistence/sqlite"
)

// SequenceRepository is the durable invoice counter, one row per (prefix, month).
type SequenceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSequenceRepository creates a new sequence repository
func NewSequenceRepository(db *sql.DB, logger *zap.Logger) *SequenceRepository {
	return &SequenceRepository{
		db:     db,
		logger: logger,
	}
}

// Increment bumps the counter and returns the new ordinal in a single
// statement, so concurrent callers always see distinct values. When called
// inside a transaction the increment rolls back with it.
func (r *SequenceRepository) Increment(ctx context.Context, prefix, monthKey string) (int64, error) {
	query := `
		INSERT INTO invoice_sequences (prefix, month_key, last_value)
		VALUES (?, ?, 1)
		ON CONFLICT (prefix, month_key) DO UPDATE
			SET last_value = last_value + 1,
				updated_at = CURRENT_TIMESTAMP
		RETURNING last_value
	`

	var value int64
	err := sqlite.Executor(ctx, r.db).QueryRowContext(ctx, query, prefix, monthKey).Scan(&value)
	if err != nil {
		r.logger.Error("Failed to increment invoice sequence",
			zap.String("prefix", prefix),
			zap.String("month", monthKey),
			zap.Error(err))
		return 0, fmt.Errorf("increment sequence %s %s: %w", prefix, monthKey, err)
	}

	return value, nil
}

// Advance raises the counter to ordinal unless it is already higher. Used
// when an invoice carries a number assigned by hand.
func (r *SequenceRepository) Advance(ctx context.Context, prefix, monthKey string, ordinal int64) error {
	query := `
		INSERT INTO invoice_sequences (prefix, month_key, last_value)
		VALUES (?, ?, ?)
		ON CONFLICT (prefix, month_key) DO UPDATE
			SET last_value = MAX(last_value, excluded.last_value),
				updated_at = CURRENT_TIMESTAMP
	`

	if _, err := sqlite.Executor(ctx, r.db).ExecContext(ctx, query, prefix, monthKey, ordinal); err != nil {
		r.logger.Error("Failed to advance invoice sequence",
			zap.String("prefix", prefix),
			zap.String("month", monthKey),
			zap.Int64("ordinal", ordinal),
			zap.Error(err))
		return fmt.Errorf("advance sequence %s %s: %w", prefix, monthKey, err)
	}
	return nil
}

// Current returns the last issued ordinal, or 0 if the month has none yet.
func (r *SequenceRepository) Current(ctx context.Context, prefix, monthKey string) (int64, error) {
	query := `SELECT last_value FROM invoice_sequences WHERE prefix = ? AND month_key = ?`

	var value int64
	err := sqlite.Executor(ctx, r.db).QueryRowContext(ctx, query, prefix, monthKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: read sequence: %w", port.ErrPersistence, err)
	}
	return value, nil
}

// Verify interface compliance
var _ port.SequenceRepository = (*SequenceRepository)(nil)
