package builtin

import (
	"fmt"

	"caprun/internal/capability"
	"caprun/internal/domain"
	"caprun/internal/ephemeral"
)

// Deps holds everything the built-in capabilities are wired to.
type Deps struct {
	Store     *ephemeral.Store
	Active    domain.ConfigSource
	Staging   domain.ConfigSource
	SchemaDir string
}

// Register adds all built-in capabilities to the registry.
func Register(reg *capability.Registry, deps Deps) error {
	entries := []struct {
		desc    domain.Descriptor
		factory domain.Factory
	}{
		{scratchSaveDescriptor(), func() domain.Capability { return &ScratchSave{store: deps.Store} }},
		{scratchLoadDescriptor(), func() domain.Capability { return &ScratchLoad{store: deps.Store} }},
		{configDiffDescriptor(), func() domain.Capability { return &ConfigDiff{active: deps.Active, staging: deps.Staging} }},
		{schemaWriteDescriptor(), func() domain.Capability { return &SchemaWrite{store: deps.Store, dir: deps.SchemaDir} }},
		{entityDescribeDescriptor(), func() domain.Capability { return &EntityDescribe{} }},
	}
	for _, e := range entries {
		if err := reg.Register(e.desc, e.factory); err != nil {
			return fmt.Errorf("register %s: %w", e.desc.ID, err)
		}
	}
	return nil
}
