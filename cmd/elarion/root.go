package main

import (
	"os"

	"github.com/spf13/cobra"

	"finitefield.org/elarion-web/internal/catalog"
	"finitefield.org/elarion-web/internal/config"
)

type rootOptions struct {
	envFile     string
	catalogFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "elarion",
		Short:         "Browse the Élarion collection from a terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file with local overrides")
	cmd.PersistentFlags().StringVar(&opts.catalogFile, "catalog", "", "catalog YAML file (overrides ELARION_CATALOG_FILE)")

	cmd.AddCommand(newBrowseCmd(opts), newCatalogCmd(opts))
	return cmd
}

func (o *rootOptions) load(cmd *cobra.Command) (config.Config, *catalog.Catalog, error) {
	cfg, err := config.Load(cmd.Context(), config.WithEnvFile(o.envFile))
	if err != nil {
		return config.Config{}, nil, err
	}
	if o.catalogFile != "" {
		cfg.Storefront.CatalogFile = o.catalogFile
	}
	cat, err := catalog.LoadFile(cfg.Storefront.CatalogFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, cat, nil
}

// localesDir returns the override directory only when it exists.
func localesDir(cfg config.Config) string {
	if fi, err := os.Stat(cfg.Paths.Locales); err == nil && fi.IsDir() {
		return cfg.Paths.Locales
	}
	return ""
}
