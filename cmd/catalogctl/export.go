package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vitaldent/clinic-site/internal/app/bootstrap"
	"github.com/vitaldent/clinic-site/internal/catalog"
)

func newExportCmd() *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the catalog from the configured source as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			treatments, err := loadCatalog(cmd, source)
			if err != nil {
				return err
			}
			doc, err := catalog.MarshalSeed(treatments)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(doc)
			return err
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "static, remote or postgres (defaults to CATALOG_SOURCE)")
	return cmd
}

// loadCatalog reads treatments from source, surfacing load failures instead
// of degrading to an empty catalog.
func loadCatalog(cmd *cobra.Command, source string) ([]catalog.Treatment, error) {
	if source != "" {
		cfg.CatalogSource = source
	}
	log := logger()
	pool, err := bootstrap.BuildPostgresPool(cmd.Context(), cfg, log)
	if err != nil {
		return nil, err
	}
	if pool != nil {
		defer pool.Close()
	}
	built, err := bootstrap.BuildCatalog(cfg, pool, nil, nil, log)
	if err != nil {
		return nil, err
	}
	treatments, err := built.Loader.Source().Load(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return treatments, nil
}
