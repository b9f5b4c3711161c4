package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	partnerNotes string
	partnerPurge bool
)

// partnerCmd groups partner management subcommands.
var partnerCmd = &cobra.Command{
	Use:   "partner",
	Short: "Manage partners (counterparties)",
}

var partnerAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a new partner",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := openApp()
		exitOnError(err, "failed to open ledger")
		defer a.Close()

		p, err := a.partnerSvc.AddPartner(args[0], partnerNotes)
		exitOnError(err, "failed to add partner")

		fmt.Printf("Added partner %q (id %d)\n", p.Name, p.ID)
	},
}

var partnerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active partners",
	Run: func(cmd *cobra.Command, args []string) {
		a, err := openApp()
		exitOnError(err, "failed to open ledger")
		defer a.Close()

		partners, err := a.partners.ListActive()
		exitOnError(err, "failed to list partners")

		if len(partners) == 0 {
			fmt.Println("No partners")
			return
		}

		for _, p := range partners {
			fmt.Printf("%6d  %-30s  since %s\n", p.ID, p.Name, p.CreatedAt.Format("2006-01-02"))
		}
	},
}

var partnerRenameCmd = &cobra.Command{
	Use:   "rename ID NEW_NAME",
	Short: "Rename a partner",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := strconv.ParseInt(args[0], 10, 64)
		exitOnError(err, "invalid partner id")

		a, err := openApp()
		exitOnError(err, "failed to open ledger")
		defer a.Close()

		exitOnError(a.partnerSvc.RenamePartner(id, args[1]), "failed to rename partner")
		fmt.Printf("Renamed partner %d to %q\n", id, args[1])
	},
}

var partnerDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a partner (soft delete; --purge removes it and its transactions)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := strconv.ParseInt(args[0], 10, 64)
		exitOnError(err, "invalid partner id")

		a, err := openApp()
		exitOnError(err, "failed to open ledger")
		defer a.Close()

		if partnerPurge {
			exitOnError(a.partnerSvc.PurgePartner(id), "failed to purge partner")
			fmt.Printf("Purged partner %d and its transactions\n", id)
			return
		}

		exitOnError(a.partnerSvc.DeletePartner(id), "failed to delete partner")
		fmt.Printf("Deleted partner %d\n", id)
	},
}

func init() {
	partnerAddCmd.Flags().StringVar(&partnerNotes, "notes", "", "free-text notes")
	partnerDeleteCmd.Flags().BoolVar(&partnerPurge, "purge", false, "permanently remove the partner and its transactions")

	partnerCmd.AddCommand(partnerAddCmd)
	partnerCmd.AddCommand(partnerListCmd)
	partnerCmd.AddCommand(partnerRenameCmd)
	partnerCmd.AddCommand(partnerDeleteCmd)
}
