package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jkimaro/fx-ledger/pkg/model"
	"github.com/jkimaro/fx-ledger/pkg/report"
)

// ratesCmd groups exchange rate subcommands.
var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Manage default exchange rates",
}

var ratesSetCmd = &cobra.Command{
	Use:   "set CURRENCY RATE",
	Short: "Set the default exchange rate for a currency",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		currency := args[0]
		rate, err := strconv.ParseFloat(args[1], 64)
		exitOnError(err, "invalid rate")
		if rate <= 0 {
			exitOnError(fmt.Errorf("rate must be positive"), "invalid rate")
		}

		a, err := openApp()
		exitOnError(err, "failed to open ledger")
		defer a.Close()

		err = a.rates.SetDefaultRate(currency, rate, time.Now(), model.RateSourceUser)
		exitOnError(err, "failed to set default rate")

		// Keep the UI prefill string in the settings store too.
		if err := a.settings.Set("default_rate_"+currency, args[1]); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		}

		fmt.Printf("Default rate for %s set to %s\n", currency, report.FormatAmount(rate))
	},
}

var ratesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current default rates",
	Run: func(cmd *cobra.Command, args []string) {
		a, err := openApp()
		exitOnError(err, "failed to open ledger")
		defer a.Close()

		currencies, err := a.rates.Currencies()
		exitOnError(err, "failed to list currencies")

		if len(currencies) == 0 {
			fmt.Println("No rates recorded")
			return
		}

		for _, currency := range currencies {
			def, err := a.rates.GetDefault(currency)
			exitOnError(err, "failed to read default rate")
			if def == nil {
				fmt.Printf("%-6s  (no default)\n", currency)
				continue
			}
			fmt.Printf("%-6s  %14s  set %s (%s)\n",
				currency,
				report.FormatAmount(def.Rate),
				def.Date.Format("2006-01-02"),
				def.Source,
			)
		}
	},
}

var ratesHistoryCmd = &cobra.Command{
	Use:   "history CURRENCY",
	Short: "Show the rate history of a currency",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := openApp()
		exitOnError(err, "failed to open ledger")
		defer a.Close()

		history, err := a.rates.History(args[0])
		exitOnError(err, "failed to read rate history")

		for _, r := range history {
			marker := " "
			if r.IsDefault {
				marker = "*"
			}
			fmt.Printf("%s %14s  %s (%s)\n", marker, report.FormatAmount(r.Rate), r.Date.Format("2006-01-02"), r.Source)
		}
	},
}

func init() {
	ratesCmd.AddCommand(ratesSetCmd)
	ratesCmd.AddCommand(ratesShowCmd)
	ratesCmd.AddCommand(ratesHistoryCmd)
}
