// Command ledgerctl runs the ledger's pure helpers from a shell: amount/rate/
// total reconciliation, Jalali date and digit normalization, month calendars
// and offline validation of import files.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
