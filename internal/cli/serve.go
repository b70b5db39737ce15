package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ledgerbridge/faktura/internal/config"
	"github.com/ledgerbridge/faktura/internal/container"
	httpapi "github.com/ledgerbridge/faktura/internal/interfaces/http"
)

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return a.withContainer(ctx, true, func(c *container.Container, cfg *config.Config, logger *zap.Logger) error {
				logger.Info("Starting faktura",
					zap.String("version", Version),
					zap.Int("port", cfg.Server.Port),
					zap.String("database", cfg.Database.Path))

				httpapi.Version = Version
				server := httpapi.NewServer(
					httpapi.ServerConfig{
						Host:         cfg.Server.Host,
						Port:         cfg.Server.Port,
						ReadTimeout:  cfg.Server.ReadTimeout,
						WriteTimeout: cfg.Server.WriteTimeout,
						AllowOrigin:  cfg.Server.AllowOrigin,
					},
					c.InvoiceService(),
					c.Renderer(),
					container.NewLoggerAdapter(logger.Named("http")),
					httpapi.WithHealthCheck(c.Ping),
					httpapi.WithClock(c.Now),
				)

				return server.Start(ctx)
			})
		},
	}
}
