package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func scratchCmd() *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "scratch",
		Short: "Inspect and manage the scoped scratch store",
	}
	cmd.PersistentFlags().StringVar(&owner, "owner", "", "owner id (default: configured owner)")

	resolveOwner := func(rt *runtime) string {
		if owner != "" {
			return owner
		}
		return rt.cfg.General.Owner
	}

	save := &cobra.Command{
		Use:   "save <key> <payload>",
		Short: "Save a payload under an owner-scoped key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setupRuntime(loadConfig())
			if err != nil {
				return err
			}
			defer rt.Close()
			key, replaced, err := rt.store.Save(context.Background(), resolveOwner(rt), args[0], args[1])
			if err != nil {
				return err
			}
			if replaced {
				fmt.Printf("%s (replaced)\n", key)
				return nil
			}
			fmt.Println(key)
			return nil
		},
	}

	load := &cobra.Command{
		Use:   "load <key>",
		Short: "Read a payload without consuming it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setupRuntime(loadConfig())
			if err != nil {
				return err
			}
			defer rt.Close()
			payload, found, err := rt.store.Load(context.Background(), resolveOwner(rt), args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no entry under %q", args[0])
			}
			fmt.Println(payload)
			return nil
		},
	}

	consume := &cobra.Command{
		Use:   "consume <key>",
		Short: "Read a payload and delete it in one step",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setupRuntime(loadConfig())
			if err != nil {
				return err
			}
			defer rt.Close()
			payload, found, err := rt.store.Consume(context.Background(), resolveOwner(rt), args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no entry under %q", args[0])
			}
			fmt.Println(payload)
			return nil
		},
	}

	cmd.AddCommand(save, load, consume)
	return cmd
}
