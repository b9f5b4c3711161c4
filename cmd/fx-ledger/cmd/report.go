package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jkimaro/fx-ledger/pkg/ledger"
	"github.com/jkimaro/fx-ledger/pkg/report"
)

var (
	reportPartner string
	reportFrom    string
	reportTo      string
	reportFormat  string
	reportOut     string
)

// reportCmd renders a partner statement as HTML or CSV.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export a partner statement (HTML or CSV)",
	Long: `Export a partner statement for a date range.

The HTML document is styled for print-to-PDF; the CSV document opens in
Excel and carries illustrative spreadsheet formulas next to the computed
values.

Example:
  fx-ledger report --partner "Acme Traders" --from 2024-01-01 --to 2024-01-31 --format html`,
	Run: func(cmd *cobra.Command, args []string) {
		from, err := parseDate(reportFrom)
		exitOnError(err, "invalid --from date")
		to, err := parseDate(reportTo)
		exitOnError(err, "invalid --to date")

		if reportFormat != "html" && reportFormat != "csv" {
			exitOnError(fmt.Errorf("unknown format %q", reportFormat), "invalid --format")
		}

		a, err := openApp()
		exitOnError(err, "failed to open ledger")
		defer a.Close()

		partner, err := a.partners.FindActiveByName(reportPartner)
		exitOnError(err, "failed to look up partner")
		if partner == nil {
			exitOnError(fmt.Errorf("no active partner named %q", reportPartner), "failed to look up partner")
		}

		start := ledger.StartOfDay(from)
		end := ledger.EndOfDay(to)
		txns, err := a.txns.ListByPartnerInRange(partner.ID, start.UnixMilli(), end.UnixMilli())
		exitOnError(err, "failed to load transactions")

		summary, err := a.txns.SummarizePartner(partner.ID)
		exitOnError(err, "failed to summarize partner")

		data := report.Data{
			Title:        a.cfg.Report.Title,
			PartnerName:  partner.Name,
			Start:        start,
			End:          end,
			Transactions: txns,
			Summary:      summary,
			GeneratedAt:  time.Now(),
		}

		out := reportOut
		if out == "" {
			out = a.paths.ReportPath(partner.Name, reportFormat, time.Now())
		}
		exitOnError(a.paths.EnsureParentDir(out), "failed to create report directory")

		f, err := os.Create(out)
		exitOnError(err, "failed to create report file")
		defer f.Close()

		if reportFormat == "html" {
			err = report.WriteHTML(f, data)
		} else {
			err = report.WriteCSV(f, data)
		}
		exitOnError(err, "failed to render report")

		fmt.Printf("Wrote %s report to %s (%d transactions)\n", reportFormat, out, len(txns))
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportPartner, "partner", "", "partner name (required)")
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "start date YYYY-MM-DD (required)")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "end date YYYY-MM-DD (required)")
	reportCmd.Flags().StringVar(&reportFormat, "format", "html", "output format: html or csv")
	reportCmd.Flags().StringVar(&reportOut, "out", "", "output file (default under the data directory)")

	reportCmd.MarkFlagRequired("partner")
	reportCmd.MarkFlagRequired("from")
	reportCmd.MarkFlagRequired("to")
}
