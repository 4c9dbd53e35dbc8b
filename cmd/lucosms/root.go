package main

import (
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

const serviceName = "lucosms-backend"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "lucosms",
		Short: "LucoSMS contacts and messaging backend",
		Long: "lucosms serves the dashboard API: contact management, spreadsheet imports\n" +
			"with number cleanup, and bulk SMS sending.",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		Version: version,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newNormalizeCmd())
	root.AddCommand(newImportCmd())
	return root
}
