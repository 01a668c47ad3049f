package capability

import (
	"context"

	"caprun/internal/domain"
)

// Instance binds one capability object to one invocation. It executes
// exactly once; afterwards it exposes the readable output and the
// structured result.
type Instance struct {
	desc     domain.Descriptor
	impl     domain.Capability
	executed bool
	output   string
	result   domain.Value
}

func NewInstance(desc domain.Descriptor, impl domain.Capability) *Instance {
	return &Instance{desc: desc, impl: impl, result: domain.Absent()}
}

func (i *Instance) Descriptor() domain.Descriptor { return i.desc }
func (i *Instance) Executed() bool                { return i.executed }
func (i *Instance) Output() string                { return i.output }
func (i *Instance) Result() domain.Value          { return i.result }

// Execute runs the capability. A second call fails without touching the
// underlying implementation.
func (i *Instance) Execute(ctx context.Context, call *domain.Call) (string, domain.Value, error) {
	if i.executed {
		return "", domain.Absent(), domain.Executionf("capability %s was already executed", i.desc.ID)
	}
	i.executed = true
	out, res, err := i.impl.Execute(ctx, call)
	if err != nil {
		return "", domain.Absent(), err
	}
	i.output = out
	i.result = res
	return out, res, nil
}
