package capability

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"caprun/internal/domain"
)

type entry struct {
	desc    domain.Descriptor
	factory domain.Factory
}

// Registry maps capability ids and function names to descriptors and
// instance factories. Registration happens once at startup; lookups are
// safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byID   map[string]*entry
	byFunc map[string]*entry
	order  []string
	logger *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		byID:   make(map[string]*entry),
		byFunc: make(map[string]*entry),
		logger: logger,
	}
}

// Register adds a capability to the table. Both the id and the function
// name must be unique.
func (r *Registry) Register(desc domain.Descriptor, factory domain.Factory) error {
	if desc.ID == "" || desc.FunctionName == "" {
		return fmt.Errorf("capability needs both an id and a function name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.byID[desc.ID]; dup {
		return fmt.Errorf("duplicate capability id %q", desc.ID)
	}
	if _, dup := r.byFunc[desc.FunctionName]; dup {
		return fmt.Errorf("duplicate function name %q", desc.FunctionName)
	}
	e := &entry{desc: desc, factory: factory}
	r.byID[desc.ID] = e
	r.byFunc[desc.FunctionName] = e
	r.order = append(r.order, desc.ID)
	r.logger.Debug("registered capability", "id", desc.ID, "function", desc.FunctionName)
	return nil
}

// Lookup resolves an identifier, trying it as an id first and as a function
// name second.
func (r *Registry) Lookup(identifier string) (domain.Descriptor, domain.Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byID[identifier]
	if !ok {
		e, ok = r.byFunc[identifier]
	}
	if !ok {
		return domain.Descriptor{}, nil, false
	}
	return e.desc, e.factory, true
}

// Describe returns the descriptor for an id or function name.
func (r *Registry) Describe(identifier string) (domain.Descriptor, bool) {
	desc, _, ok := r.Lookup(identifier)
	return desc, ok
}

// List returns descriptors in registration order, optionally filtered by
// group.
func (r *Registry) List(group string) []domain.Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Descriptor, 0, len(r.order))
	for _, id := range r.order {
		d := r.byID[id].desc
		if group != "" && d.Group != group {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Definitions renders every capability as a tool definition for the chat
// provider, function name as the callable name.
func (r *Registry) Definitions() []domain.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.ToolDefinition, 0, len(r.order))
	for _, id := range r.order {
		d := r.byID[id].desc
		out = append(out, domain.ToolDefinition{
			Name:        d.FunctionName,
			Description: d.Description,
			Parameters:  SchemaFor(d),
		})
	}
	return out
}

// SchemaFor builds a JSON Schema "parameters" object from a descriptor's
// context specs.
func SchemaFor(d domain.Descriptor) map[string]any {
	props := make(map[string]any, len(d.Contexts))
	var required []string
	for _, c := range d.Contexts {
		props[c.Name] = map[string]any{
			"type":        jsonType(c.Type),
			"description": c.DisplayName(),
		}
		if c.Required && c.Default.IsAbsent() {
			required = append(required, c.Name)
		}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func jsonType(t domain.ContextType) string {
	ts := string(t)
	switch {
	case strings.HasPrefix(ts, string(domain.TypeInteger)):
		return "integer"
	case strings.HasPrefix(ts, string(domain.TypeFloat)):
		return "number"
	case strings.HasPrefix(ts, string(domain.TypeBoolean)):
		return "boolean"
	case t == domain.TypeList:
		return "array"
	default:
		return "string"
	}
}
