package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"caprun/internal/auth"
	"caprun/internal/builtin"
	"caprun/internal/capability"
	"caprun/internal/confdiff"
	"caprun/internal/config"
	"caprun/internal/domain"
	"caprun/internal/entity"
	"caprun/internal/ephemeral"
	"caprun/internal/metrics"
)

var (
	version    = "0.1.0"
	logger     *slog.Logger
	configPath string // overridable via --config flag
)

func main() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	root := &cobra.Command{
		Use:     "caprun",
		Short:   "caprun: capability invocation runtime",
		Long:    "caprun discovers, validates, and executes schema-described capabilities, directly or through an agent chat loop.",
		Version: version,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.json (default: ~/.caprun/config.json)")

	root.AddCommand(initCmd())
	root.AddCommand(toolsCmd())
	root.AddCommand(describeCmd())
	root.AddCommand(callCmd())
	root.AddCommand(scratchCmd())
	root.AddCommand(diffCmd())
	root.AddCommand(chatCmd())
	root.AddCommand(statusCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfigPath returns the config path from --config flag or default.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultConfigPath()
}

func loadConfig() *config.Config {
	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Warn("config not found, using defaults", "path", cfgPath, "err", err)
		cfg = config.Defaults()
	}
	return cfg
}

// runtime bundles the wired-up invocation stack for one command.
type runtime struct {
	cfg       *config.Config
	kv        *ephemeral.SQLiteKV
	store     *ephemeral.Store
	entities  domain.EntityStore
	registry  *capability.Registry
	invoker   *capability.Invoker
	collector *metrics.Collector
}

func setupRuntime(cfg *config.Config) (*runtime, error) {
	kv, err := ephemeral.NewSQLiteKV(cfg.Store.DBPath, logger)
	if err != nil {
		return nil, err
	}
	store := ephemeral.NewStore(kv, logger)

	entities, err := entity.LoadFile(cfg.Entities.Path)
	if err != nil {
		kv.Close()
		return nil, err
	}

	authEngine, err := auth.NewEngine(cfg.Auth, kv, logger)
	if err != nil {
		kv.Close()
		return nil, err
	}

	registry := capability.NewRegistry(logger)
	err = builtin.Register(registry, builtin.Deps{
		Store:     store,
		Active:    confdiff.NewDirSource(cfg.Trees.ActiveDir),
		Staging:   confdiff.NewDirSource(cfg.Trees.StagingDir),
		SchemaDir: cfg.General.SchemaDir,
	})
	if err != nil {
		kv.Close()
		return nil, err
	}

	collector := metrics.NewCollector()
	invoker := capability.NewInvoker(capability.InvokerConfig{
		Registry: registry,
		Entities: entities,
		Auth:     authEngine,
		Metrics:  collector,
		Logger:   logger,
	})

	return &runtime{
		cfg:       cfg,
		kv:        kv,
		store:     store,
		entities:  entities,
		registry:  registry,
		invoker:   invoker,
		collector: collector,
	}, nil
}

func (r *runtime) Close() {
	r.kv.Close()
}

func (r *runtime) principal() *domain.Principal {
	return &domain.Principal{ID: r.cfg.General.Owner, Name: r.cfg.General.Owner}
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize config, workspace, and sample entity catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			cfg := config.Defaults()
			if err := config.Save(cfgPath, cfg); err != nil {
				return err
			}
			for _, dir := range []string{
				cfg.General.Workspace,
				cfg.General.SchemaDir,
				cfg.Trees.ActiveDir,
				cfg.Trees.StagingDir,
			} {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return err
				}
			}
			if _, err := os.Stat(cfg.Entities.Path); os.IsNotExist(err) {
				if err := os.WriteFile(cfg.Entities.Path, []byte(sampleEntities), 0o644); err != nil {
					return err
				}
			}
			logger.Info("initialized", "config", cfgPath, "workspace", cfg.General.Workspace)
			return nil
		},
	}
}

const sampleEntities = `entities:
  - kind: agent
    id: "1"
    name: triage
    attrs:
      model: llama3.1:8b
      role: Route incoming requests to the right queue.
`

func toolsCmd() *cobra.Command {
	var group string

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List available capabilities",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setupRuntime(loadConfig())
			if err != nil {
				return err
			}
			defer rt.Close()

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"ID", "Function", "Group", "Label"})
			for _, d := range rt.registry.List(group) {
				t.AppendRow(table.Row{d.ID, d.FunctionName, d.Group, d.Label})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().StringVarP(&group, "group", "g", "", "only show capabilities in this group")
	return cmd
}

func describeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <id-or-function>",
		Short: "Show a capability's schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setupRuntime(loadConfig())
			if err != nil {
				return err
			}
			defer rt.Close()

			d, ok := rt.registry.Describe(args[0])
			if !ok {
				return domain.NotFoundf("capability %q", args[0])
			}
			fmt.Printf("%s (%s)\n", d.ID, d.FunctionName)
			fmt.Printf("group: %s\n", d.Group)
			fmt.Printf("%s\n", d.Description)
			if len(d.Contexts) > 0 {
				fmt.Println("contexts:")
			}
			for _, c := range d.Contexts {
				line := fmt.Sprintf("  %s (%s)", c.Name, c.Type)
				if c.Required {
					line += " required"
				}
				if !c.Default.IsAbsent() {
					line += fmt.Sprintf(" default=%s", c.Default.Render())
				}
				if c.Label != "" {
					line += "  " + c.Label
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}
