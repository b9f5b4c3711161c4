package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jkimaro/fx-ledger/pkg/ledger"
	"github.com/jkimaro/fx-ledger/pkg/report"
)

var (
	txnPartner  string
	txnDate     string
	txnTzs      float64
	txnForeign  float64
	txnCurrency string
	txnRate     float64
	txnNotes    string
)

// txnCmd groups transaction subcommands.
var txnCmd = &cobra.Command{
	Use:   "txn",
	Short: "Record and manage exchange transactions",
}

var txnAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a new exchange transaction",
	Long: `Record a new exchange transaction.

When --rate is omitted the currency's default rate is used. The net
position is always derived from the raw amounts.

Example:
  fx-ledger txn add --partner "Acme Traders" --tzs 1000000 --foreign 2660 --currency CNY --rate 376`,
	Run: func(cmd *cobra.Command, args []string) {
		a, err := openApp()
		exitOnError(err, "failed to open ledger")
		defer a.Close()

		in, err := buildInput(a)
		exitOnError(err, "invalid transaction")

		t, err := a.txnSvc.Create(*in)
		exitOnError(err, "failed to record transaction")

		// Remember the last used currency for the next entry.
		if err := a.settings.Set("last_currency", t.ForeignCurrency); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		}

		fmt.Printf("Recorded transaction %d: net TZS %s, net %s %s\n",
			t.ID, report.FormatAmount(t.NetTzs), t.ForeignCurrency, report.FormatAmount(t.NetForeign))
	},
}

var txnUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Update an exchange transaction (net fields are recomputed)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := strconv.ParseInt(args[0], 10, 64)
		exitOnError(err, "invalid transaction id")

		a, err := openApp()
		exitOnError(err, "failed to open ledger")
		defer a.Close()

		in, err := buildInput(a)
		exitOnError(err, "invalid transaction")

		t, err := a.txnSvc.Update(id, *in)
		exitOnError(err, "failed to update transaction")

		fmt.Printf("Updated transaction %d: net TZS %s\n", t.ID, report.FormatAmount(t.NetTzs))
	},
}

var txnDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete an exchange transaction",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := strconv.ParseInt(args[0], 10, 64)
		exitOnError(err, "invalid transaction id")

		a, err := openApp()
		exitOnError(err, "failed to open ledger")
		defer a.Close()

		exitOnError(a.txnSvc.Delete(id), "failed to delete transaction")
		fmt.Printf("Deleted transaction %d\n", id)
	},
}

var txnListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a partner's transactions",
	Run: func(cmd *cobra.Command, args []string) {
		a, err := openApp()
		exitOnError(err, "failed to open ledger")
		defer a.Close()

		partner, err := a.partners.FindActiveByName(txnPartner)
		exitOnError(err, "failed to look up partner")
		if partner == nil {
			exitOnError(fmt.Errorf("no active partner named %q", txnPartner), "failed to look up partner")
		}

		txns, err := a.txns.ListByPartner(partner.ID)
		exitOnError(err, "failed to list transactions")

		for _, t := range txns {
			fmt.Printf("%6d  %s  TZS %14s  %4s %12s @ %10s  net %14s  %s\n",
				t.ID,
				t.Date.Format("2006-01-02"),
				report.FormatAmount(t.TzsReceived),
				t.ForeignCurrency,
				report.FormatAmount(t.ForeignGiven),
				report.FormatAmount(t.ExchangeRate),
				report.FormatAmount(t.NetTzs),
				t.Notes,
			)
		}
	},
}

// buildInput turns the txn flags into a TransactionInput, resolving the
// partner name, the date and a defaulted rate.
func buildInput(a *app) (*ledger.TransactionInput, error) {
	partner, err := a.partners.FindActiveByName(txnPartner)
	if err != nil {
		return nil, err
	}
	if partner == nil {
		return nil, fmt.Errorf("no active partner named %q", txnPartner)
	}

	date := time.Now()
	if txnDate != "" {
		date, err = parseDate(txnDate)
		if err != nil {
			return nil, err
		}
	}

	currency := txnCurrency
	if currency == "" {
		// Fall back to the last used currency.
		currency, err = a.settings.Get("last_currency")
		if err != nil {
			return nil, err
		}
		if currency == "" {
			return nil, fmt.Errorf("--currency is required")
		}
	}

	rate := txnRate
	if rate == 0 {
		rate, err = a.txnSvc.DefaultRate(currency)
		if err != nil {
			return nil, err
		}
		if rate == 0 {
			return nil, fmt.Errorf("no default rate for %s, pass --rate", currency)
		}
	}

	return &ledger.TransactionInput{
		PartnerID:       partner.ID,
		Date:            date,
		TzsReceived:     txnTzs,
		ForeignGiven:    txnForeign,
		ForeignCurrency: currency,
		ExchangeRate:    rate,
		Notes:           txnNotes,
	}, nil
}

func init() {
	for _, c := range []*cobra.Command{txnAddCmd, txnUpdateCmd} {
		c.Flags().StringVar(&txnPartner, "partner", "", "partner name (required)")
		c.Flags().StringVar(&txnDate, "date", "", "transaction date YYYY-MM-DD (default today)")
		c.Flags().Float64Var(&txnTzs, "tzs", 0, "TZS received")
		c.Flags().Float64Var(&txnForeign, "foreign", 0, "foreign amount given")
		c.Flags().StringVar(&txnCurrency, "currency", "", "foreign currency code (CNY, USDT, ...)")
		c.Flags().Float64Var(&txnRate, "rate", 0, "exchange rate, foreign to TZS (default: currency's default rate)")
		c.Flags().StringVar(&txnNotes, "notes", "", "free-text notes")
		c.MarkFlagRequired("partner")
	}

	txnListCmd.Flags().StringVar(&txnPartner, "partner", "", "partner name (required)")
	txnListCmd.MarkFlagRequired("partner")

	txnCmd.AddCommand(txnAddCmd)
	txnCmd.AddCommand(txnUpdateCmd)
	txnCmd.AddCommand(txnDeleteCmd)
	txnCmd.AddCommand(txnListCmd)
}
