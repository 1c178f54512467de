// Command budgetcal-cli runs the cashflow projection over a JSON export of
// calendar events and prints the result as terminal tables.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
