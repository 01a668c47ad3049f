package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"caprun/internal/provider"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check config, store, entities, and provider health",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			if _, err := os.Stat(cfgPath); err != nil {
				fmt.Printf("config:   missing (%s), defaults in use\n", cfgPath)
			} else {
				fmt.Printf("config:   %s\n", cfgPath)
			}

			cfg := loadConfig()
			rt, err := setupRuntime(cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			purged, err := rt.kv.PurgeExpired(context.Background())
			if err != nil {
				fmt.Printf("store:    ERROR: %s\n", err)
			} else {
				fmt.Printf("store:    ok (%s, purged %d expired entries)\n", cfg.Store.DBPath, purged)
			}

			fmt.Printf("entities: %d agents loaded\n", len(rt.entities.List("agent")))
			fmt.Printf("tools:    %d capabilities registered\n", len(rt.registry.List("")))

			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			prov := provider.NewOllama(provider.OllamaConfig{
				APIBase:      cfg.Provider.APIBase,
				DefaultModel: cfg.Provider.Model,
				Logger:       logger,
			})
			if err := prov.Healthy(ctx); err != nil {
				fmt.Printf("provider: unreachable (%s)\n", err)
			} else {
				fmt.Printf("provider: ok (%s)\n", prov.Name())
			}
			return nil
		},
	}
}
