package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"caprun/internal/domain"
)

func callCmd() *cobra.Command {
	var (
		contextJSON string
		asJSON      bool
		owner       string
	)

	cmd := &cobra.Command{
		Use:   "call <id-or-function> [name=value ...]",
		Short: "Invoke a capability directly",
		Long: `Invokes a capability by id or function name. Context values come from
name=value arguments and/or a combined JSON object via --context-json;
both go through the same coercion rules.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if owner != "" {
				cfg.General.Owner = owner
			}
			rt, err := setupRuntime(cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			assignments, err := parseAssignments(args[1:])
			if err != nil {
				return err
			}

			var payload map[string]any
			if strings.TrimSpace(contextJSON) != "" {
				dec := json.NewDecoder(strings.NewReader(contextJSON))
				dec.UseNumber()
				if err := dec.Decode(&payload); err != nil {
					return domain.InvalidInputf("malformed context payload: %v", err)
				}
			}

			inv, err := rt.invoker.Invoke(context.Background(), rt.principal(), args[0], assignments, payload)
			if err != nil {
				return err
			}

			if asJSON {
				data, err := json.MarshalIndent(inv, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}
			fmt.Println(inv.Output)
			return nil
		},
	}

	cmd.Flags().StringVar(&contextJSON, "context-json", "", "combined context values as a JSON object")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full invocation payload as JSON")
	cmd.Flags().StringVar(&owner, "owner", "", "invoke as this principal instead of the configured owner")
	return cmd
}

func parseAssignments(args []string) (map[string]string, error) {
	if len(args) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, domain.InvalidInputf("context assignment %q is not name=value", arg)
		}
		out[name] = value
	}
	return out, nil
}
