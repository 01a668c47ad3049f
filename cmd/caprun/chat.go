package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"caprun/internal/agent"
	"caprun/internal/provider"
	"caprun/internal/run"
)

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive chat driving capabilities through the agent loop",
		RunE:  runChat,
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	rt, err := setupRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	prov := provider.NewOllama(provider.OllamaConfig{
		APIBase:      cfg.Provider.APIBase,
		DefaultModel: cfg.Provider.Model,
		Logger:       logger,
	})
	if err := prov.Healthy(ctx); err != nil {
		logger.Warn("provider health check failed, continuing anyway", "err", err)
	}

	ledger := run.NewLedger()
	loop := agent.NewLoop(agent.LoopConfig{
		Provider:      prov,
		Invoker:       rt.invoker,
		Ledger:        ledger,
		Logger:        logger,
		MaxIterations: cfg.General.MaxIterations,
		Model:         cfg.Provider.Model,
	})

	fmt.Println("caprun chat. Type a message, or /quit to exit.")
	scanner := bufio.NewScanner(os.Stdin)
	caller := rt.principal()

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			break
		}

		reply, records, err := loop.ProcessDirect(ctx, caller, line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
			continue
		}
		fmt.Println(reply)
		for _, rec := range records {
			fmt.Printf("  [%s] %s\n", rec.FunctionName, firstLine(rec.Output))
		}
		if ctx.Err() != nil {
			break
		}
	}

	printSessionStats(rt)
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func printSessionStats(rt *runtime) {
	stats := rt.collector.Snapshot()
	if len(stats) == 0 {
		return
	}
	fmt.Println("\nsession stats:")
	for id, s := range stats {
		fmt.Printf("  %s: %d invocations, %d failures, avg %s\n",
			id, s.Invocations, s.Failures, s.Mean())
	}
}
