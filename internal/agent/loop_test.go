package agent

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"caprun/internal/capability"
	"caprun/internal/domain"
	"caprun/internal/run"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// scriptedProvider replays a fixed sequence of chat responses.
type scriptedProvider struct {
	responses []domain.ChatResponse
	requests  []domain.ChatRequest
}

func (p *scriptedProvider) Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	p.requests = append(p.requests, req)
	if len(p.responses) == 0 {
		return &domain.ChatResponse{Content: "out of script"}, nil
	}
	resp := p.responses[0]
	p.responses = p.responses[1:]
	return &resp, nil
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Healthy(ctx context.Context) error { return nil }

type echoCapability struct{}

func (echoCapability) Execute(ctx context.Context, call *domain.Call) (string, domain.Value, error) {
	msg := call.Str("message")
	return "echo: " + msg, domain.StringValue(msg), nil
}

func testLoop(t *testing.T, prov domain.Provider) (*Loop, *run.Ledger) {
	t.Helper()
	r := capability.NewRegistry(testLogger())
	desc := domain.Descriptor{
		ID:           "core.echo",
		FunctionName: "echo",
		Contexts: []domain.ContextSpec{
			{Name: "message", Type: domain.TypeString, Required: true},
		},
	}
	if err := r.Register(desc, func() domain.Capability { return echoCapability{} }); err != nil {
		t.Fatalf("register: %s", err)
	}
	invoker := capability.NewInvoker(capability.InvokerConfig{
		Registry: r,
		Logger:   testLogger(),
	})
	ledger := run.NewLedger()
	loop := NewLoop(LoopConfig{
		Provider: prov,
		Invoker:  invoker,
		Ledger:   ledger,
		Logger:   testLogger(),
	})
	return loop, ledger
}

func TestProcessDirect_PlainReply(t *testing.T) {
	prov := &scriptedProvider{responses: []domain.ChatResponse{
		{Content: "hello there"},
	}}
	loop, _ := testLoop(t, prov)

	reply, records, err := loop.ProcessDirect(context.Background(),
		&domain.Principal{ID: "u1"}, "hi")
	if err != nil {
		t.Fatalf("process: %s", err)
	}
	if reply != "hello there" {
		t.Fatalf("unexpected reply %q", reply)
	}
	if len(records) != 0 {
		t.Fatalf("no tools were called, got %d records", len(records))
	}
	if len(prov.requests) != 1 {
		t.Fatalf("expected a single provider round trip, got %d", len(prov.requests))
	}
	if len(prov.requests[0].Tools) != 1 {
		t.Fatalf("tool definitions not passed to the provider: %d", len(prov.requests[0].Tools))
	}
}

func TestProcessDirect_ToolCallRoundTrip(t *testing.T) {
	prov := &scriptedProvider{responses: []domain.ChatResponse{
		{ToolCalls: []domain.ToolCall{
			{ID: "c1", Name: "echo", Arguments: map[string]any{"message": "ping"}},
		}},
		{Content: "done"},
	}}
	loop, ledger := testLoop(t, prov)

	reply, records, err := loop.ProcessDirect(context.Background(),
		&domain.Principal{ID: "u1"}, "run echo")
	if err != nil {
		t.Fatalf("process: %s", err)
	}
	if reply != "done" {
		t.Fatalf("unexpected reply %q", reply)
	}
	if len(records) != 1 || records[0].FunctionName != "echo" {
		t.Fatalf("ledger records wrong: %+v", records)
	}
	if records[0].Output != "echo: ping" {
		t.Fatalf("output wrong: %q", records[0].Output)
	}

	// The tool result went back to the provider as a tool-role message.
	second := prov.requests[1]
	last := second.Messages[len(second.Messages)-1]
	if last.Role != "tool" || last.ToolCallID != "c1" || last.Content != "echo: ping" {
		t.Fatalf("tool result message wrong: %+v", last)
	}

	if len(ledger.Entries()) != 1 {
		t.Fatalf("ledger holds %d entries", len(ledger.Entries()))
	}
}

func TestProcessDirect_ExtractsEmbeddedToolCall(t *testing.T) {
	prov := &scriptedProvider{responses: []domain.ChatResponse{
		{Content: "Let me check that.\n" + `{"name": "echo", "arguments": {"message": "embedded"}}`},
		{Content: "all good"},
	}}
	loop, _ := testLoop(t, prov)

	reply, records, err := loop.ProcessDirect(context.Background(),
		&domain.Principal{ID: "u1"}, "go")
	if err != nil {
		t.Fatalf("process: %s", err)
	}
	if reply != "all good" {
		t.Fatalf("unexpected reply %q", reply)
	}
	if len(records) != 1 || records[0].Output != "echo: embedded" {
		t.Fatalf("embedded tool call not executed: %+v", records)
	}
}

func TestProcessDirect_FailedToolCallBecomesMessage(t *testing.T) {
	prov := &scriptedProvider{responses: []domain.ChatResponse{
		{ToolCalls: []domain.ToolCall{
			{ID: "c1", Name: "no_such_tool", Arguments: map[string]any{}},
		}},
		{Content: "sorry"},
	}}
	loop, _ := testLoop(t, prov)

	_, records, err := loop.ProcessDirect(context.Background(),
		&domain.Principal{ID: "u1"}, "go")
	if err != nil {
		t.Fatalf("process: %s", err)
	}
	if len(records) != 0 {
		t.Fatalf("failed call must not reach the ledger: %+v", records)
	}
	last := prov.requests[1].Messages[len(prov.requests[1].Messages)-1]
	if last.Role != "tool" || last.Content != `Error: no such tool "no_such_tool"` {
		t.Fatalf("error message wrong: %+v", last)
	}
}

func TestProcessDirect_IterationCap(t *testing.T) {
	// The provider asks for a tool on every turn and never concludes.
	endless := &endlessProvider{}
	r := capability.NewRegistry(testLogger())
	desc := domain.Descriptor{ID: "core.echo", FunctionName: "echo",
		Contexts: []domain.ContextSpec{{Name: "message", Type: domain.TypeString}}}
	if err := r.Register(desc, func() domain.Capability { return echoCapability{} }); err != nil {
		t.Fatalf("register: %s", err)
	}
	loop := NewLoop(LoopConfig{
		Provider:      endless,
		Invoker:       capability.NewInvoker(capability.InvokerConfig{Registry: r, Logger: testLogger()}),
		Ledger:        run.NewLedger(),
		Logger:        testLogger(),
		MaxIterations: 3,
	})

	_, records, err := loop.ProcessDirect(context.Background(),
		&domain.Principal{ID: "u1"}, "loop forever")
	if err != nil {
		t.Fatalf("process: %s", err)
	}
	if endless.calls != 3 {
		t.Fatalf("expected 3 provider calls, got %d", endless.calls)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 invocations, got %d", len(records))
	}
}

type endlessProvider struct{ calls int }

func (p *endlessProvider) Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	p.calls++
	return &domain.ChatResponse{ToolCalls: []domain.ToolCall{
		{ID: "x", Name: "echo", Arguments: map[string]any{"message": "again"}},
	}}, nil
}

func (p *endlessProvider) Name() string { return "endless" }

func (p *endlessProvider) Healthy(ctx context.Context) error { return nil }
