package builtin

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"caprun/internal/domain"
)

// EntityDescribe renders a resolved agent entity.
type EntityDescribe struct{}

func entityDescribeDescriptor() domain.Descriptor {
	return domain.Descriptor{
		ID:           "core.entity.describe",
		FunctionName: "entity_describe",
		Label:        "Describe agent",
		Description:  "Show the definition of a configured agent. Accepts an agent reference or a bare id.",
		Group:        "entities",
		EntityKind:   "agent",
		Contexts: []domain.ContextSpec{
			{Name: "agent", Type: domain.EntityRef("agent"), Required: true, Label: "Agent"},
		},
	}
}

func (c *EntityDescribe) Execute(ctx context.Context, call *domain.Call) (string, domain.Value, error) {
	ent, ok := call.Value("agent").AsEntity()
	if !ok {
		// Resolution left a raw identifier in place: nothing was loaded.
		return "", domain.Absent(), fmt.Errorf("unknown agent %q", call.Str("agent"))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s:%s)\n", ent.Name, ent.Kind, ent.ID)
	keys := make([]string, 0, len(ent.Attrs))
	for k := range ent.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "  %s: %v\n", k, ent.Attrs[k])
	}
	return strings.TrimRight(b.String(), "\n"), domain.EntityValue(ent), nil
}
