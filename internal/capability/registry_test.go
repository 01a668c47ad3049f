package capability

import (
	"context"
	"testing"

	"caprun/internal/domain"
)

type noopCapability struct{}

func (noopCapability) Execute(ctx context.Context, call *domain.Call) (string, domain.Value, error) {
	return "ok", domain.Absent(), nil
}

func noopFactory() domain.Capability { return noopCapability{} }

func TestRegistry_LookupByIDAndFunctionName(t *testing.T) {
	r := NewRegistry(testLogger())
	desc := domain.Descriptor{ID: "core.echo", FunctionName: "echo", Group: "core"}
	if err := r.Register(desc, noopFactory); err != nil {
		t.Fatalf("register: %s", err)
	}

	for _, identifier := range []string{"core.echo", "echo"} {
		if _, _, ok := r.Lookup(identifier); !ok {
			t.Fatalf("lookup %q failed", identifier)
		}
	}
	if _, _, ok := r.Lookup("missing"); ok {
		t.Fatal("lookup of unknown identifier should fail")
	}
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	r := NewRegistry(testLogger())
	desc := domain.Descriptor{ID: "core.echo", FunctionName: "echo"}
	if err := r.Register(desc, noopFactory); err != nil {
		t.Fatalf("register: %s", err)
	}
	if err := r.Register(desc, noopFactory); err == nil {
		t.Fatal("duplicate id accepted")
	}
	other := domain.Descriptor{ID: "core.other", FunctionName: "echo"}
	if err := r.Register(other, noopFactory); err == nil {
		t.Fatal("duplicate function name accepted")
	}
}

func TestRegistry_ListKeepsRegistrationOrder(t *testing.T) {
	r := NewRegistry(testLogger())
	ids := []string{"b.second", "a.first", "c.third"}
	for i, id := range ids {
		desc := domain.Descriptor{ID: id, FunctionName: "fn" + string(rune('a'+i)), Group: "g"}
		if err := r.Register(desc, noopFactory); err != nil {
			t.Fatalf("register %s: %s", id, err)
		}
	}
	got := r.List("")
	for i, d := range got {
		if d.ID != ids[i] {
			t.Fatalf("position %d: expected %s, got %s", i, ids[i], d.ID)
		}
	}
	if n := len(r.List("nope")); n != 0 {
		t.Fatalf("group filter leaked %d entries", n)
	}
}

func TestSchemaFor(t *testing.T) {
	desc := domain.Descriptor{
		ID:           "core.echo",
		FunctionName: "echo",
		Contexts: []domain.ContextSpec{
			{Name: "message", Type: domain.TypeString, Required: true},
			{Name: "times", Type: domain.TypeInteger, Default: domain.IntValue(1)},
			{Name: "agent", Type: domain.EntityRef("agent")},
		},
	}
	schema := SchemaFor(desc)
	props, ok := schema["properties"].(map[string]any)
	if !ok || len(props) != 3 {
		t.Fatalf("expected three properties, got %v", schema["properties"])
	}
	times := props["times"].(map[string]any)
	if times["type"] != "integer" {
		t.Fatalf("times should map to integer, got %v", times["type"])
	}
	agent := props["agent"].(map[string]any)
	if agent["type"] != "string" {
		t.Fatalf("entity slot should map to string, got %v", agent["type"])
	}
	required, _ := schema["required"].([]string)
	if len(required) != 1 || required[0] != "message" {
		t.Fatalf("expected only message required, got %v", required)
	}
}
