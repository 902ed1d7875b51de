package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vitaldent/clinic-site/internal/app/bootstrap"
	"github.com/vitaldent/clinic-site/internal/catalog"
)

func newSeedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert a YAML catalog into Postgres, keeping treatment ids",
		RunE: func(cmd *cobra.Command, args []string) error {
			treatments, err := readCatalog(file)
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("--dsn or DATABASE_URL is required")
			}
			log := logger()
			pool, err := bootstrap.BuildPostgresPool(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer pool.Close()

			n, err := catalog.NewPostgresRepository(pool).Seed(cmd.Context(), treatments)
			if err != nil {
				return err
			}
			log.Info("catalog seeded", "treatments", n)
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d treatments\n", n)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML catalog file (defaults to the bundled catalog)")
	return cmd
}

// readCatalog parses file, or the bundled catalog when file is empty.
func readCatalog(file string) ([]catalog.Treatment, error) {
	if file == "" {
		return catalog.NewStaticSource().Load(context.Background())
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	treatments, err := catalog.ParseSeed(data)
	if err != nil {
		return nil, err
	}
	deduped, dropped := catalog.Dedupe(treatments)
	if dropped > 0 {
		return nil, fmt.Errorf("%s: %d duplicate treatment ids", file, dropped)
	}
	return deduped, nil
}
