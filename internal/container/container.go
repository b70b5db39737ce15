package container

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ledgerbridge/faktura/internal/application/port"
	"github.com/ledgerbridge/faktura/internal/application/service"
	"github.com/ledgerbridge/faktura/internal/config"
	"github.com/ledgerbridge/faktura/internal/infrastructure/persistence/sqlite"
)

// Container manages all application dependencies and lifecycle.
// Components are initialized in dependency order and torn down in reverse.
type Container struct {
	config *config.Config
	logger *zap.Logger
	now    func() time.Time

	// Infrastructure
	sqlDB        *sql.DB
	db           *sqlite.DB
	repositories *RepositoryBundle
	renderer     port.InvoiceRenderer

	// Application
	invoiceService service.InvoiceService

	// Lifecycle
	mu     sync.RWMutex
	ready  atomic.Bool
	closed atomic.Bool
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// Option customizes a Container.
type Option func(*Container)

// WithClock replaces time.Now for invoice dating and numbering.
func WithClock(now func() time.Time) Option {
	return func(c *Container) { c.now = now }
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *config.Config, logger *zap.Logger, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	c := &Container{
		config: cfg,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Start initializes all components:
// 1. Database, migrations and repositories
// 2. Document renderer
// 3. Application services
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}

	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.logger.Info("Starting container initialization")

	if err := c.initDatabase(ctx); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.logger.Info("Database initialized")

	renderer, err := ProvideRenderer(&c.config.Export, c.logger)
	if err != nil {
		c.closeDatabase()
		return fmt.Errorf("failed to initialize renderer: %w", err)
	}
	c.renderer = renderer

	svc, err := ProvideServices(&ServiceDeps{
		Repos:     c.repositories,
		TxManager: c.db,
		Renderer:  c.renderer,
		Prefix:    c.config.Numbering.Prefix,
		Now:       c.now,
		Logger:    c.logger,
	})
	if err != nil {
		c.closeDatabase()
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	c.invoiceService = svc
	c.logger.Info("Application services initialized")

	c.ready.Store(true)
	c.logger.Info("Container started successfully")

	return nil
}

// Close gracefully shuts down all components in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")

	err := c.closeDatabase()

	c.closed.Store(true)
	c.ready.Store(false)

	if err != nil {
		return err
	}

	c.logger.Info("Container closed successfully")
	return nil
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// InvoiceService returns the invoice service. Start must have succeeded.
func (c *Container) InvoiceService() service.InvoiceService {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.invoiceService
}

// Renderer returns the document renderer. Start must have succeeded.
func (c *Container) Renderer() port.InvoiceRenderer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.renderer
}

// Now reads the container clock.
func (c *Container) Now() time.Time {
	return c.now()
}

// Ping checks the database connection.
func (c *Container) Ping(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.sqlDB == nil {
		return fmt.Errorf("database not initialized")
	}
	return c.sqlDB.PingContext(ctx)
}

// Health returns health status of all components.
func (c *Container) Health(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}

	if err := c.Ping(ctx); err != nil {
		status.Components["database"] = ComponentHealth{
			Healthy: false,
			Message: fmt.Sprintf("ping failed: %v", err),
		}
		status.Overall = false
	} else {
		status.Components["database"] = ComponentHealth{Healthy: true}
	}

	if c.Ready() {
		status.Components["services"] = ComponentHealth{Healthy: true}
	} else {
		status.Components["services"] = ComponentHealth{
			Healthy: false,
			Message: "not initialized",
		}
		status.Overall = false
	}

	return status
}

// initDatabase initializes the database and all repositories using providers.
func (c *Container) initDatabase(ctx context.Context) error {
	dbBundle, err := ProvideDatabase(ctx, &c.config.Database, c.logger)
	if err != nil {
		return err
	}

	c.sqlDB = dbBundle.SqlDB
	c.db = dbBundle.TransactionMgr

	repos, err := ProvideRepositories(c.sqlDB, c.logger)
	if err != nil {
		c.closeDatabase()
		return err
	}

	c.repositories = repos
	return nil
}

func (c *Container) closeDatabase() error {
	if c.sqlDB == nil {
		return nil
	}
	err := c.sqlDB.Close()
	c.sqlDB = nil
	if err != nil {
		c.logger.Error("Failed to close database", zap.Error(err))
		return fmt.Errorf("close database: %w", err)
	}
	c.logger.Info("Database closed")
	return nil
}
