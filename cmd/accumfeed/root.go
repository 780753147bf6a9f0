package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/payerlink/accumfeed/internal/config"
)

var cfg config.Config

var configPath string

var rootCmd = &cobra.Command{
	Use:   "accumfeed",
	Short: "Payer accumulator interchange codec",
	Long:  "Encodes outbound accumulator submissions into segment-based interchange files and decodes payer fixed-width responses into normalized ledger entries.",
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.DSN, "dsn", os.Getenv("ACCUMFEED_DB_URL"), "Postgres connection string (or set ACCUMFEED_DB_URL)")
	pf.StringVar(&cfg.LogFormat, "log-format", "text", "Log format: text or json")
	pf.StringVar(&configPath, "config", "", "Path to YAML config (separators, layout columns)")
}

// loadConfig merges the optional config file into cfg, applying defaults
// when none is given.
func loadConfig() error {
	if configPath != "" {
		return cfg.LoadFromFile(configPath)
	}
	return cfg.ApplyDefaults()
}
