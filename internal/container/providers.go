// Package container provides dependency injection and lifecycle management
// for the invoicing service.
package container

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ledgerbridge/faktura/internal/application/port"
	"github.com/ledgerbridge/faktura/internal/application/service"
	"github.com/ledgerbridge/faktura/internal/config"
	"github.com/ledgerbridge/faktura/internal/export"
	"github.com/ledgerbridge/faktura/internal/infrastructure/persistence/repository"
	"github.com/ledgerbridge/faktura/internal/infrastructure/persistence/sqlite"
	"github.com/ledgerbridge/faktura/migrations"
	"github.com/ledgerbridge/faktura/pkg/database"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	SqlDB          *sql.DB
	TransactionMgr *sqlite.DB
}

// RepositoryBundle groups all repositories for convenient access.
type RepositoryBundle struct {
	Invoice       port.InvoiceRepository
	Sequence      port.SequenceRepository
	SellerProfile port.SellerProfileRepository
	Addresses     port.AddressHistoryRepository
}

// ServiceDeps holds the dependencies of the application services.
type ServiceDeps struct {
	Repos     *RepositoryBundle
	TxManager port.TransactionManager
	Renderer  port.InvoiceRenderer
	Prefix    string
	Now       func() time.Time
	Logger    *zap.Logger
}

// ProvideDatabase opens the database and applies pending migrations.
// Migrations come from cfg.MigrationsDir when set, otherwise from the
// copies embedded in the binary.
func ProvideDatabase(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		BusyTimeout:     cfg.BusyTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}

	var source fs.FS = migrations.FS
	if cfg.MigrationsDir != "" {
		source = os.DirFS(cfg.MigrationsDir)
	}

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(ctx, source); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DatabaseBundle{
		SqlDB:          db.DB,
		TransactionMgr: sqlite.NewDB(db.DB, logger),
	}, nil
}

// ProvideRepositories creates all repositories from a database connection.
func ProvideRepositories(sqlDB *sql.DB, logger *zap.Logger) (*RepositoryBundle, error) {
	if sqlDB == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &RepositoryBundle{
		Invoice:       repository.NewInvoiceRepository(sqlDB, logger),
		Sequence:      repository.NewSequenceRepository(sqlDB, logger),
		SellerProfile: repository.NewSellerProfileRepository(sqlDB, logger),
		Addresses:     repository.NewAddressHistoryRepository(sqlDB, logger),
	}, nil
}

// ProvideRenderer creates the invoice document renderer.
func ProvideRenderer(cfg *config.ExportConfig, logger *zap.Logger) (port.InvoiceRenderer, error) {
	if cfg.TemplatePath != "" {
		if _, err := os.Stat(cfg.TemplatePath); err != nil {
			return nil, fmt.Errorf("export template: %w", err)
		}
	}
	return export.NewXLSXRenderer(cfg.TemplatePath, logger.Named("export")), nil
}

// ProvideServices creates the application services.
func ProvideServices(deps *ServiceDeps) (service.InvoiceService, error) {
	if deps == nil || deps.Repos == nil {
		return nil, fmt.Errorf("repositories are required")
	}
	if deps.TxManager == nil {
		return nil, fmt.Errorf("transaction manager is required")
	}
	if deps.Renderer == nil {
		return nil, fmt.Errorf("renderer is required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return service.NewInvoiceService(
		deps.Repos.Invoice,
		deps.Repos.Sequence,
		deps.Repos.SellerProfile,
		deps.Repos.Addresses,
		deps.TxManager,
		deps.Renderer,
		service.InvoiceServiceConfig{
			Prefix: deps.Prefix,
			Now:    deps.Now,
			NewID:  uuid.NewString,
		},
		NewLoggerAdapter(deps.Logger),
	), nil
}
