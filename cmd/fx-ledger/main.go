// fx-ledger is a command-line currency exchange ledger.
package main

import (
	"os"

	"github.com/jkimaro/fx-ledger/cmd/fx-ledger/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
