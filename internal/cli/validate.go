package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ledgerbridge/faktura/pkg/validation"
)

// ErrInvalidValue is returned by the validate command for a value that fails validation.
var ErrInvalidValue = errors.New("invalid value")

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <" + strings.Join(validation.Kinds, "|") + "> <value>",
		Short: "Validate and format a NIP, IBAN, postal code or street address",
		Example: `  faktura validate nip 6292370846
  faktura validate iban "61 1090 1014 0000 0712 1981 2874"`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: validation.Kinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, ok := validation.Check(args[0], args[1])
			if !ok {
				return fmt.Errorf("unknown kind %q, want one of %s", args[0], strings.Join(validation.Kinds, ", "))
			}

			status := "valid"
			if !result.Valid {
				status = "invalid"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", status, result.Formatted)

			if !result.Valid {
				return fmt.Errorf("%w: %s %q", ErrInvalidValue, result.Kind, result.Value)
			}
			return nil
		},
	}
}
