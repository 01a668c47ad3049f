package capability

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"caprun/internal/auth"
	"caprun/internal/domain"
	"caprun/internal/metrics"
)

// Invoker orchestrates one capability invocation: lookup, authorization,
// context coercion, entity resolution, validation, and a single execution
// under an elevated principal.
type Invoker struct {
	registry  *Registry
	entities  domain.EntityStore
	auth      domain.Authorizer
	collector *metrics.Collector
	logger    *slog.Logger
}

// InvokerConfig holds the invoker's collaborators. Entities, Auth, and
// Metrics are optional.
type InvokerConfig struct {
	Registry *Registry
	Entities domain.EntityStore
	Auth     domain.Authorizer
	Metrics  *metrics.Collector
	Logger   *slog.Logger
}

func NewInvoker(cfg InvokerConfig) *Invoker {
	return &Invoker{
		registry:  cfg.Registry,
		entities:  cfg.Entities,
		auth:      cfg.Auth,
		collector: cfg.Metrics,
		logger:    cfg.Logger,
	}
}

// InvokeJSON invokes with a combined JSON object payload, as produced by a
// chat provider's tool call or the --context-json flag.
func (iv *Invoker) InvokeJSON(ctx context.Context, caller *domain.Principal, identifier, contextJSON string) (*domain.Invocation, error) {
	payload := map[string]any{}
	if strings.TrimSpace(contextJSON) != "" {
		dec := json.NewDecoder(strings.NewReader(contextJSON))
		dec.UseNumber()
		if err := dec.Decode(&payload); err != nil {
			return nil, domain.InvalidInputf("malformed context payload: %v", err)
		}
	}
	return iv.Invoke(ctx, caller, identifier, nil, payload)
}

// Invoke runs one capability. Raw context values come from two sources: a
// combined structured payload and individual textual name=value
// assignments; both go through the same coercion rules, and an unknown
// context name in either is a hard input error.
func (iv *Invoker) Invoke(ctx context.Context, caller *domain.Principal, identifier string, assignments map[string]string, payload map[string]any) (*domain.Invocation, error) {
	desc, factory, ok := iv.registry.Lookup(identifier)
	if !ok {
		return nil, domain.NotFoundf("capability %q", identifier)
	}

	if iv.auth != nil {
		if err := iv.auth.Authorize(ctx, caller, desc.ID); err != nil {
			return nil, err
		}
	}

	values := make(map[string]domain.Value, len(desc.Contexts))
	provided := make(map[string]any)

	for name, raw := range payload {
		spec, known := desc.Context(name)
		if !known {
			return nil, domain.InvalidInputf("unknown context %q for capability %s", name, desc.ID)
		}
		v := ApplyType(domain.FromAny(raw), spec.Type)
		values[name] = v
		provided[name] = v.ToAny()
	}
	for name, raw := range assignments {
		spec, known := desc.Context(name)
		if !known {
			return nil, domain.InvalidInputf("unknown context %q for capability %s", name, desc.ID)
		}
		v := ApplyType(CoerceScalar(raw), spec.Type)
		values[name] = v
		provided[name] = v.ToAny()
	}

	// Defaults fill unset slots before resolution so entity-typed defaults
	// resolve like supplied values.
	for _, spec := range desc.Contexts {
		if _, set := values[spec.Name]; !set && !spec.Default.IsAbsent() {
			values[spec.Name] = spec.Default
		}
	}

	// Entity resolution runs exactly once per declared entity-shaped
	// context, before validation.
	for _, spec := range desc.Contexts {
		v, set := values[spec.Name]
		if !set || !spec.Type.IsEntity() {
			continue
		}
		values[spec.Name] = Resolve(v, spec.Type, desc.EntityKind, iv.entities)
	}

	if violations := Validate(desc, values); len(violations) > 0 {
		return nil, &domain.ValidationError{Violations: violations}
	}

	inst := NewInstance(desc, factory())

	// Execution runs as the system principal; the elevation is call-local
	// and released on every exit path.
	sys, release := auth.Elevate(caller)
	defer release()

	start := time.Now()
	out, res, err := inst.Execute(ctx, &domain.Call{
		Descriptor: desc,
		Principal:  sys,
		Values:     values,
	})
	elapsed := time.Since(start)
	if iv.collector != nil {
		iv.collector.Record(desc.ID, elapsed, err != nil)
	}
	if err != nil {
		iv.logger.Error("capability execution failed",
			"id", desc.ID,
			"function", desc.FunctionName,
			"error", err,
		)
		if errorsIsTaxonomy(err) {
			return nil, err
		}
		return nil, domain.Executionf("capability %s: %v", desc.ID, err)
	}

	iv.logger.Info("capability executed",
		"id", desc.ID,
		"function", desc.FunctionName,
		"elapsed_ms", elapsed.Milliseconds(),
	)

	return &domain.Invocation{
		CapabilityID: desc.ID,
		FunctionName: desc.FunctionName,
		Output:       out,
		Result:       res.ToAny(),
		Provided:     provided,
		Resolved:     resolvedSnapshot(desc, values),
	}, nil
}

// errorsIsTaxonomy reports whether an execution error already carries one
// of the failure classes, so it is surfaced as-is instead of being
// rewrapped as ExecutionFailed.
func errorsIsTaxonomy(err error) bool {
	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrUnauthorized) ||
		errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrExecution)
}

// Registry exposes the underlying registry for the discovery surface.
func (iv *Invoker) Registry() *Registry { return iv.registry }

func resolvedSnapshot(desc domain.Descriptor, values map[string]domain.Value) map[string]any {
	out := make(map[string]any, len(values))
	for _, spec := range desc.Contexts {
		if v, ok := values[spec.Name]; ok {
			out[spec.Name] = v.ToAny()
		}
	}
	return out
}
