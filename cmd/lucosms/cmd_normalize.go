package main

import (
	"fmt"

	"lucosms-backend/internal/handler"

	"github.com/spf13/cobra"
)

func newNormalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <number>...",
		Short: "Print the canonical form of each number",
		Long: `Checks each argument the way manual contact entry does and prints
"input<TAB>+256XXXXXXXXX" or "input<TAB>rejected: reason". Exits non-zero if any
number is rejected.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rejected := 0
			for _, r := range handler.NormalizeAll(args) {
				if r.Valid {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", r.Input, r.PhoneNumber)
					continue
				}
				rejected++
				fmt.Fprintf(cmd.OutOrStdout(), "%s\trejected: %s\n", r.Input, r.Reason)
			}
			if rejected > 0 {
				return fmt.Errorf("%d of %d numbers rejected", rejected, len(args))
			}
			return nil
		},
	}
}
