package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ledgerbridge/faktura/internal/config"
	"github.com/ledgerbridge/faktura/internal/container"
)

func newNextNumberCommand(a *app) *cobra.Command {
	var (
		prefix string
		date   string
		peek   bool
	)

	cmd := &cobra.Command{
		Use:   "next-number",
		Short: "Reserve the next invoice number",
		Long: `Reserve and print the next invoice number for a prefix and month.

With --peek the number is only shown; the counter is left unchanged.`,
		Example: `  faktura next-number --prefix FV --date 2025-10-03
  faktura next-number --peek`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var day time.Time
			if date != "" {
				parsed, err := time.Parse("2006-01-02", date)
				if err != nil {
					return fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
				}
				day = parsed
			}

			return a.withContainer(cmd.Context(), false, func(c *container.Container, _ *config.Config, _ *zap.Logger) error {
				svc := c.InvoiceService()
				if day.IsZero() {
					day = c.Now()
				}

				var (
					number string
					err    error
				)
				if peek {
					number, err = svc.PeekNumber(cmd.Context(), prefix, day)
				} else {
					number, err = svc.NextNumber(cmd.Context(), prefix, day)
				}
				if err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), number)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&prefix, "prefix", "p", "", "number prefix (default from config)")
	cmd.Flags().StringVarP(&date, "date", "d", "", "issue date YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&peek, "peek", false, "show the number without reserving it")
	return cmd
}
