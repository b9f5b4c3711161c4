package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jkimaro/fx-ledger/pkg/report"
)

var (
	statsFrom string
	statsTo   string
)

// statsCmd shows cumulative net positions, optionally narrowed to a range.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cumulative net positions",
	Long: `Show cumulative net positions across all active partners.

With --from and --to, a cross-partner analysis of the date range is shown
as well (inclusive full-day bounds).`,
	Run: func(cmd *cobra.Command, args []string) {
		a, err := openApp()
		exitOnError(err, "failed to open ledger")
		defer a.Close()

		totals, err := a.agg.CumulativeNetPositions(cmd.Context())
		exitOnError(err, "failed to compute cumulative positions")

		fmt.Println("=== Cumulative Net Positions ===")
		fmt.Printf("Partners:      %d\n", totals.Partners)
		fmt.Printf("Transactions:  %d\n", totals.Transactions)
		fmt.Printf("Net TZS:       %s\n", report.FormatAmount(totals.NetTzs))
		fmt.Printf("Net CNY:       %s\n", report.FormatAmount(totals.NetCny))
		fmt.Printf("Net USDT:      %s\n", report.FormatAmount(totals.NetUsdt))

		if statsFrom == "" || statsTo == "" {
			return
		}

		from, err := parseDate(statsFrom)
		exitOnError(err, "invalid --from date")
		to, err := parseDate(statsTo)
		exitOnError(err, "invalid --to date")

		analysis, err := a.agg.CrossPartnerAnalysis(cmd.Context(), from, to)
		exitOnError(err, "failed to analyze date range")

		fmt.Printf("\n=== %s to %s ===\n", statsFrom, statsTo)
		fmt.Printf("Partners with activity: %d\n", analysis.Partners)
		fmt.Printf("Transactions:           %d\n", analysis.Transactions)
		fmt.Printf("Total TZS received:     %s\n", report.FormatAmount(analysis.TotalTzsReceived))
		for currency, c := range analysis.ByCurrency {
			fmt.Printf("%-5s given %14s  net TZS %14s  (%d txns)\n",
				currency,
				report.FormatAmount(c.ForeignGiven),
				report.FormatAmount(c.NetTzs),
				c.Transactions,
			)
		}
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsFrom, "from", "", "range start YYYY-MM-DD")
	statsCmd.Flags().StringVar(&statsTo, "to", "", "range end YYYY-MM-DD")
}
