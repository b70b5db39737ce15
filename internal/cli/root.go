// Package cli implements the faktura command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ledgerbridge/faktura/internal/config"
	"github.com/ledgerbridge/faktura/internal/container"
	"github.com/ledgerbridge/faktura/pkg/utils"
)

// Version is set at build time with -ldflags.
var Version = "dev"

// DefaultConfigPath is read when --config is not given and the file exists.
const DefaultConfigPath = "configs/config.yaml"

type app struct {
	configPath string
	now        func() time.Time
}

// NewRootCommand builds the faktura command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(time.Now)
}

func newRootCommand(now func() time.Time) *cobra.Command {
	a := &app{now: now}

	root := &cobra.Command{
		Use:   "faktura",
		Short: "Polish VAT invoice service",
		Long: `faktura validates, numbers, prices and stores Polish VAT invoices.

It serves a JSON API, keeps invoices and monthly number counters in SQLite
and renders stored invoices as XLSX workbooks.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "",
		"path to YAML config (default "+DefaultConfigPath+" when present)")

	root.AddCommand(
		newServeCommand(a),
		newNextNumberCommand(a),
		newValidateCommand(),
		newExportCommand(a),
	)
	return root
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) loadConfig() (*config.Config, error) {
	path := a.configPath
	if path == "" {
		if _, err := os.Stat(DefaultConfigPath); err == nil {
			path = DefaultConfigPath
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	return config.Load(path)
}

// newLogger builds the configured logger. Commands other than serve keep
// stdout for their own output, so stdout logging is moved to stderr.
func newLogger(cfg *config.Config, keepStdout bool) (*zap.Logger, error) {
	logCfg := cfg.Logger
	if !keepStdout && (logCfg.OutputPath == "" || logCfg.OutputPath == "stdout") {
		logCfg.OutputPath = "stderr"
	}
	logger, err := utils.NewLogger(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// withContainer starts the application container, runs fn and closes it.
func (a *app) withContainer(ctx context.Context, keepStdout bool, fn func(*container.Container, *config.Config, *zap.Logger) error) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg, keepStdout)
	if err != nil {
		return err
	}
	defer logger.Sync()

	c, err := container.NewContainer(cfg, logger, container.WithClock(a.now))
	if err != nil {
		return err
	}
	if err := c.Start(ctx); err != nil {
		return err
	}
	defer c.Close()

	return fn(c, cfg, logger)
}
