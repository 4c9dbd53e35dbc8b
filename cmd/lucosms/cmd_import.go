package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"lucosms-backend/internal/config"
	"lucosms-backend/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newImportCmd() *cobra.Command {
	var (
		dryRun  bool
		asJSON  bool
		quietly bool
	)

	cmd := &cobra.Command{
		Use:   "import <file.xlsx|file.csv>",
		Short: "Import contacts from a spreadsheet",
		Long: `Runs the same import as the upload endpoint against the configured store.
With --dry-run the file is reconciled and reported but nothing is saved.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			cfg := config.LoadConfig()
			if quietly {
				cfg.LogLevel = "error"
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx := cmd.Context()
			st, err := openStores(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer st.Close()

			ex, err := newExtractor(ctx, cfg, log)
			if err != nil {
				return err
			}

			contacts := service.NewContactService(st.Contacts, log)
			imports := service.NewImportService(contacts, service.NewReconciler(ex, log), st.Locker, nil, log)

			result, err := imports.Import(ctx, service.ImportRequest{
				FileName: filepath.Base(path),
				Data:     data,
				DryRun:   dryRun,
			})
			if err != nil {
				log.Debug("Import command failed", zap.Error(err))
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			fmt.Fprintf(out, "candidates: %d\nvalid:      %d\nduplicates: %d\nnew:        %d\n",
				result.Progress.Total, result.Progress.Valid, result.Duplicates(), len(result.NewContacts))
			if dryRun {
				fmt.Fprintln(out, "dry run, nothing saved")
			} else {
				fmt.Fprintf(out, "imported:   %d\n", result.Imported)
			}
			for _, c := range result.NewContacts {
				fmt.Fprintf(out, "  %s\n", c.PhoneNumber)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "reconcile without saving")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the import result as JSON")
	cmd.Flags().BoolVarP(&quietly, "quiet", "q", false, "only log errors")
	return cmd
}
