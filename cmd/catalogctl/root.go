package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	appconfig "github.com/vitaldent/clinic-site/internal/config"
	"github.com/vitaldent/clinic-site/pkg/logging"
)

var cfg *appconfig.Config

func newRootCmd() *cobra.Command {
	_ = godotenv.Load()
	cfg = appconfig.Load()

	root := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Treatment catalog and staff tooling for the Vitaldent site",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&cfg.DatabaseURL, "dsn", cfg.DatabaseURL, "Postgres connection string (or set DATABASE_URL)")
	pf.StringVar(&cfg.LogFormat, "log-format", "text", "Log format: text or json")

	root.AddCommand(newSeedCmd(), newExportCmd(), newQuoteCmd(), newTokenCmd())
	return root
}

func logger() *logging.Logger {
	return logging.NewWithFormat(cfg.LogLevel, cfg.LogFormat, os.Stderr).Component("catalogctl")
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
