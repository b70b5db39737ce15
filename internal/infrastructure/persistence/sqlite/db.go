package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/ledgerbridge/faktura/internal/application/port"
)

type txKey struct{}

// DB wraps sql.DB and implements port.TransactionManager.
//
// Invoice numbering and the invoice insert run in one transaction, so a
// writer that cannot get the SQLite write lock must fail cleanly instead of
// leaving a half-issued number. Lock contention is reported as port.ErrBusy,
// every other store failure as port.ErrPersistence.
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// NewDB creates a new database wrapper
func NewDB(sqlDB *sql.DB, logger *zap.Logger) *DB {
	return &DB{
		DB:     sqlDB,
		logger: logger,
	}
}

// WithTransaction runs fn in a transaction carried by ctx. Calls made while a
// transaction is already open join it; only the outermost call commits.
func (db *DB) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx := extractTx(ctx); tx != nil {
		return fn(ctx)
	}

	// DSN sets _txlock=immediate, so the write lock is taken here.
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return db.storeError("begin transaction", err)
	}

	txCtx := context.WithValue(ctx, txKey{}, tx)

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			db.logger.Error("Transaction panicked, rolled back", zap.Any("panic", p))
			panic(p)
		}
	}()

	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			db.logger.Error("Failed to rollback transaction", zap.Error(rbErr))
		}
		return err
	}

	// A cancelled request must not commit a number its caller never sees.
	if err := ctx.Err(); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return db.storeError("commit transaction", err)
	}
	return nil
}

func (db *DB) storeError(op string, err error) error {
	if IsBusy(err) {
		db.logger.Warn("Database busy", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("%w: %s: %w", port.ErrBusy, op, err)
	}
	db.logger.Error("Transaction failed", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%w: %s: %w", port.ErrPersistence, op, err)
}

// IsBusy reports whether err is SQLite lock contention (SQLITE_BUSY or
// SQLITE_LOCKED) that outlasted the busy timeout.
func IsBusy(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
}

func extractTx(ctx context.Context) *sql.Tx {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return nil
}

// Executor returns the transaction carried by ctx, or db when there is none.
// Repositories use it so their statements join an open WithTransaction.
func Executor(ctx context.Context, db *sql.DB) QueryExecutor {
	if tx := extractTx(ctx); tx != nil {
		return tx
	}
	return db
}

// QueryExecutor covers both *sql.DB and *sql.Tx
type QueryExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

var _ port.TransactionManager = (*DB)(nil)
