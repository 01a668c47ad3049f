// Package builtin holds the capabilities that ship with the runtime.
package builtin

import (
	"context"
	"fmt"

	"caprun/internal/domain"
	"caprun/internal/ephemeral"
)

// ScratchSave stores a payload in the caller's scratch namespace.
type ScratchSave struct {
	store *ephemeral.Store
}

func scratchSaveDescriptor() domain.Descriptor {
	return domain.Descriptor{
		ID:           "core.scratch.save",
		FunctionName: "scratch_save",
		Label:        "Save scratch entry",
		Description:  "Store a payload under an owner-scoped key. Entries expire after 24 hours.",
		Group:        "storage",
		Contexts: []domain.ContextSpec{
			{Name: "key", Type: domain.TypeString, Required: true, Label: "Key"},
			{Name: "data", Type: domain.TypeString, Required: true, Label: "Payload"},
		},
	}
}

func (c *ScratchSave) Execute(ctx context.Context, call *domain.Call) (string, domain.Value, error) {
	key, replaced, err := c.store.Save(ctx, call.Principal.ID, call.Str("key"), call.Str("data"))
	if err != nil {
		return "", domain.Absent(), err
	}
	out := fmt.Sprintf("Saved %s", key)
	if replaced {
		out += " (replaced an existing entry)"
	}
	return out, domain.MapValue(map[string]domain.Value{
		"key":      domain.StringValue(key),
		"replaced": domain.BoolValue(replaced),
	}), nil
}

// ScratchLoad reads a payload back without consuming it.
type ScratchLoad struct {
	store *ephemeral.Store
}

func scratchLoadDescriptor() domain.Descriptor {
	return domain.Descriptor{
		ID:           "core.scratch.load",
		FunctionName: "scratch_load",
		Label:        "Load scratch entry",
		Description:  "Read a payload previously saved under an owner-scoped key.",
		Group:        "storage",
		Contexts: []domain.ContextSpec{
			{Name: "key", Type: domain.TypeString, Required: true, Label: "Key"},
		},
	}
}

func (c *ScratchLoad) Execute(ctx context.Context, call *domain.Call) (string, domain.Value, error) {
	payload, found, err := c.store.Load(ctx, call.Principal.ID, call.Str("key"))
	if err != nil {
		return "", domain.Absent(), err
	}
	if !found {
		return "", domain.Absent(), fmt.Errorf("no scratch entry under %q", call.Str("key"))
	}
	return payload, domain.StringValue(payload), nil
}
