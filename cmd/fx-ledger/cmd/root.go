// Package cmd provides CLI commands for fx-ledger.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jkimaro/fx-ledger/pkg/backup"
	"github.com/jkimaro/fx-ledger/pkg/config"
	"github.com/jkimaro/fx-ledger/pkg/db"
	"github.com/jkimaro/fx-ledger/pkg/ledger"
	"github.com/jkimaro/fx-ledger/pkg/pathutil"
)

var (
	cfgFile string
	debug   bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "fx-ledger",
	Short: "Personal currency exchange ledger",
	Long: `fx-ledger is a personal/small-business currency exchange ledger.

It records TZS received against foreign currency (CNY/USDT) given at an
exchange rate, tracks per-partner and cumulative net positions, keeps
per-currency default rates, and supports JSON backup/restore plus
HTML/CSV statement export.

Example:
  fx-ledger partner add "Acme Traders"
  fx-ledger txn add --partner "Acme Traders" --tzs 1000000 --foreign 2660 --currency CNY --rate 376
  fx-ledger stats`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logLevel := slog.LevelInfo
		if debug {
			logLevel = slog.LevelDebug
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML, optional)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(partnerCmd)
	rootCmd.AddCommand(txnCmd)
	rootCmd.AddCommand(ratesCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(statsCmd)
}

// app bundles the opened store and the services built on it. Everything is
// constructed here and passed down explicitly.
type app struct {
	cfg      *config.Config
	paths    *pathutil.PathResolver
	conn     *db.Connection
	settings *db.SettingsStore

	partners *db.PartnerRepository
	txns     *db.TransactionRepository
	rates    *db.ExchangeRateRepository

	partnerSvc *ledger.PartnerService
	txnSvc     *ledger.TransactionService
	agg        *ledger.Aggregator
	engine     *backup.Engine
}

// openApp loads configuration and opens the stores.
func openApp() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	paths := pathutil.New(pathutil.Config{
		DataDir:      cfg.Ledger.DataDir,
		DatabasePath: cfg.Ledger.DBPath,
		SettingsPath: cfg.Ledger.SettingsPath,
	})

	slog.Debug("opening ledger database", "path", paths.DatabasePath())
	conn, err := db.Open(paths.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}

	settings, err := db.OpenSettings(paths.SettingsPath())
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open settings store: %w", err)
	}

	a := &app{cfg: cfg, paths: paths, conn: conn, settings: settings}
	a.partners = db.NewPartnerRepository(conn)
	a.txns = db.NewTransactionRepository(conn)
	a.rates = db.NewExchangeRateRepository(conn)

	log := slog.Default()
	a.partnerSvc = ledger.NewPartnerService(a.partners, a.txns, log)
	a.txnSvc = ledger.NewTransactionService(a.txns, a.partners, a.rates, log)
	a.agg = ledger.NewAggregator(a.partners, a.txns, a.txns, log)
	a.engine = backup.NewEngine(a.partners, a.txns, a.rates, cfg.App.Version, cfg.App.Device, log)

	return a, nil
}

// Close closes the stores.
func (a *app) Close() {
	a.settings.Close()
	a.conn.Close()
}

// exitOnError logs err and exits when it is non-nil.
func exitOnError(err error, msg string) {
	if err != nil {
		slog.Error(msg, "error", err)
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
		os.Exit(1)
	}
}

// parseDate parses a YYYY-MM-DD argument.
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}
