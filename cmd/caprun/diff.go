package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"caprun/internal/builtin"
	"caprun/internal/confdiff"
)

func diffCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Diff the active config trees against staging",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			active := confdiff.NewDirSource(cfg.Trees.ActiveDir)
			staging := confdiff.NewDirSource(cfg.Trees.StagingDir)

			res, err := confdiff.Diff(context.Background(), active, staging)
			if err != nil {
				return err
			}
			if asJSON {
				data, err := json.MarshalIndent(res, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}
			fmt.Println(builtin.RenderDiff(res))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the diff result as JSON")
	return cmd
}
