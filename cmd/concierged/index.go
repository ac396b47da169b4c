package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wanderplan/concierge/config"
	srv "github.com/wanderplan/concierge/internal/server"
)

func indexCMD() *cobra.Command {
	var cfgPath string
	var index = &cobra.Command{
		Use:   "index",
		Short: "Embed and index the travel catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			prov := srv.NewProviderFromConfig(cfg)
			if prov == nil {
				return fmt.Errorf("llm provider not configured (providers.openai.api_key or OPENAI_API_KEY)")
			}
			engine, err := srv.NewEngineFromConfig(cfg, prov)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), cfg.General.DefaultTimeout)
			defer cancel()
			return engine.IndexCatalog(ctx)
		},
	}
	index.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return index
}
