// Package agent drives the conversational loop: call the provider, execute
// requested capabilities through the invoker, feed results back, repeat.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"caprun/internal/capability"
	"caprun/internal/domain"
	"caprun/internal/run"
)

const (
	defaultMaxIterations = 10
	defaultMaxTokens     = 4096
	defaultTemperature   = 0.7
)

// Loop is the agent engine. One ProcessDirect call is one run: the ledger
// is cleared at the start and holds every completed invocation afterwards.
type Loop struct {
	provider      domain.Provider
	invoker       *capability.Invoker
	ledger        *run.Ledger
	logger        *slog.Logger
	maxIterations int
	model         string
	systemPrompt  string
}

type LoopConfig struct {
	Provider      domain.Provider
	Invoker       *capability.Invoker
	Ledger        *run.Ledger
	Logger        *slog.Logger
	MaxIterations int
	Model         string
	SystemPrompt  string
}

func NewLoop(cfg LoopConfig) *Loop {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = defaultMaxIterations
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = defaultSystemPrompt
	}
	return &Loop{
		provider:      cfg.Provider,
		invoker:       cfg.Invoker,
		ledger:        cfg.Ledger,
		logger:        cfg.Logger,
		maxIterations: cfg.MaxIterations,
		model:         cfg.Model,
		systemPrompt:  cfg.SystemPrompt,
	}
}

const defaultSystemPrompt = "You are an operations assistant. Use the available tools to " +
	"inspect configuration, stash drafts, and describe agents. Answer concisely."

// ProcessDirect handles one user message synchronously and returns the
// final reply plus the run's invocation records.
func (l *Loop) ProcessDirect(ctx context.Context, caller *domain.Principal, content string) (string, []domain.InvocationRecord, error) {
	runID := l.ledger.StartRun()
	l.logger.Info("run started", "run_id", runID, "content_len", len(content))

	messages := []domain.Message{
		{Role: "system", Content: l.systemPrompt},
		{Role: "user", Content: content},
	}
	toolDefs := l.invoker.Registry().Definitions()

	var finalContent string
	for iteration := 0; iteration < l.maxIterations; iteration++ {
		l.logger.Debug("agent iteration", "iteration", iteration+1, "messages", len(messages))

		resp, err := l.provider.Chat(ctx, domain.ChatRequest{
			Messages:    messages,
			Tools:       toolDefs,
			Model:       l.model,
			MaxTokens:   defaultMaxTokens,
			Temperature: defaultTemperature,
		})
		if err != nil {
			return "", l.ledger.Entries(), fmt.Errorf("provider error: %w", err)
		}

		// Smaller models sometimes embed tool calls as JSON in the
		// content field instead of using the structured slot.
		if !resp.HasToolCalls() && resp.Content != "" {
			if extracted := extractToolCalls(resp.Content); len(extracted) > 0 {
				resp.ToolCalls = extracted
				resp.Content = ""
				l.logger.Info("extracted tool calls from content text", "count", len(extracted))
			}
		}

		if !resp.HasToolCalls() {
			finalContent = resp.Content
			break
		}

		messages = append(messages, domain.Message{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		// One invocation at a time; each completes before the next starts.
		for _, tc := range resp.ToolCalls {
			messages = append(messages, domain.Message{
				Role:       "tool",
				ToolCallID: tc.ID,
				ToolName:   tc.Name,
				Content:    l.executeToolCall(ctx, caller, tc),
			})
		}
	}

	return finalContent, l.ledger.Entries(), nil
}

func (l *Loop) executeToolCall(ctx context.Context, caller *domain.Principal, tc domain.ToolCall) string {
	inv, err := l.invoker.Invoke(ctx, caller, tc.Name, nil, tc.Arguments)
	if err != nil {
		l.logger.Warn("tool call failed", "tool", tc.Name, "error", err)
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Sprintf("Error: no such tool %q", tc.Name)
		}
		return fmt.Sprintf("Error executing %s: %s", tc.Name, err.Error())
	}
	l.ledger.Record(domain.InvocationRecord{
		CapabilityID: inv.CapabilityID,
		FunctionName: inv.FunctionName,
		Output:       inv.Output,
	})
	return inv.Output
}
