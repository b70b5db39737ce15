package cli

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ledgerbridge/faktura/internal/config"
	"github.com/ledgerbridge/faktura/internal/container"
)

func newExportCommand(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:     "export <number>",
		Short:   "Render a stored invoice as XLSX",
		Example: `  faktura export FV/2025/10/001 -o faktura.xlsx`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number := args[0]

			return a.withContainer(cmd.Context(), false, func(c *container.Container, _ *config.Config, logger *zap.Logger) error {
				var buf bytes.Buffer
				if err := c.InvoiceService().ExportInvoice(cmd.Context(), number, &buf); err != nil {
					return err
				}

				path := output
				if path == "" {
					path = strings.ReplaceAll(number, "/", "_") + c.Renderer().Extension()
				}
				if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", path, err)
				}

				logger.Info("Invoice exported", zap.String("number", number), zap.String("path", path))
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <number>.xlsx with '/' replaced by '_')")
	return cmd
}
