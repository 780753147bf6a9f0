package main

import (
	"os"

	"github.com/payerlink/accumfeed/internal/exitcode"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitcode.UsageError)
	}
}
