package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	backupOut string
	backupIn  string
)

// backupCmd groups backup subcommands.
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export and restore portable JSON backups",
}

var backupExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the ledger to a JSON backup document",
	Run: func(cmd *cobra.Command, args []string) {
		a, err := openApp()
		exitOnError(err, "failed to open ledger")
		defer a.Close()

		out := backupOut
		if out == "" {
			out = a.paths.ExportPath(time.Now())
		}
		exitOnError(a.paths.EnsureParentDir(out), "failed to create backup directory")

		f, err := os.Create(out)
		exitOnError(err, "failed to create backup file")
		defer f.Close()

		meta, err := a.engine.Export(cmd.Context(), f)
		exitOnError(err, "failed to export backup")

		fmt.Printf("Exported %d partners, %d transactions, %d rates to %s\n",
			meta.TotalPartners, meta.TotalTransactions, meta.TotalExchangeRates, out)
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Merge a JSON backup document into the ledger",
	Long: `Merge a JSON backup document into the ledger.

Partners are matched by name (case and whitespace insensitive), exact
duplicate transactions are skipped, and default rates fill in where none
are set. Per-record failures are reported but do not abort the restore.`,
	Run: func(cmd *cobra.Command, args []string) {
		a, err := openApp()
		exitOnError(err, "failed to open ledger")
		defer a.Close()

		f, err := os.Open(backupIn)
		exitOnError(err, "failed to open backup file")
		defer f.Close()

		res := a.engine.Restore(cmd.Context(), f)

		fmt.Println("=== Restore Result ===")
		fmt.Printf("Partners:     %d added, %d updated\n", res.PartnersAdded, res.PartnersUpdated)
		fmt.Printf("Transactions: %d added, %d skipped (duplicates)\n", res.TransactionsAdded, res.TransactionsSkipped)
		fmt.Printf("Rates:        %d added, %d updated\n", res.RatesAdded, res.RatesUpdated)

		if len(res.Errors) > 0 {
			fmt.Printf("%d record(s) failed:\n", len(res.Errors))
			for _, e := range res.Errors {
				fmt.Printf("  - %s\n", e)
			}
		}

		if !res.Success {
			os.Exit(1)
		}
	},
}

func init() {
	backupExportCmd.Flags().StringVar(&backupOut, "out", "", "output file (default under the data directory)")
	backupRestoreCmd.Flags().StringVar(&backupIn, "in", "", "backup file to restore (required)")
	backupRestoreCmd.MarkFlagRequired("in")

	backupCmd.AddCommand(backupExportCmd)
	backupCmd.AddCommand(backupRestoreCmd)
}
