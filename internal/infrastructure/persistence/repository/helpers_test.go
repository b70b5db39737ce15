package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ledgerbridge/faktura/migrations"
	"github.com/ledgerbridge/faktura/pkg/database"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	logger := zap.NewNop()

	db, err := database.New(database.Config{
		Path:         filepath.Join(t.TempDir(), "faktura.db"),
		MaxOpenConns: 4,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.NewMigrator(db, logger).RunMigrations(context.Background(), migrations.FS))
	return db.DB
}
