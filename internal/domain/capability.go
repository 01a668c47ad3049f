package domain

import (
	"context"
	"strings"
)

// ContextType is the declared data type of a context slot. Entity references
// carry their kind after a colon, e.g. "entity:agent".
type ContextType string

const (
	TypeString  ContextType = "string"
	TypeInteger ContextType = "integer"
	TypeFloat   ContextType = "float"
	TypeBoolean ContextType = "boolean"
	TypeList    ContextType = "list"
	TypeEntity  ContextType = "entity"
	TypeOpaque  ContextType = "opaque"
)

// EntityRef builds the context type for a reference to a specific entity kind.
func EntityRef(kind string) ContextType {
	return ContextType(string(TypeEntity) + ":" + kind)
}

// IsEntity reports whether the type names an entity or entity reference.
func (t ContextType) IsEntity() bool {
	return t == TypeEntity || strings.HasPrefix(string(t), string(TypeEntity)+":")
}

// EntityKind returns the kind of an entity-reference type ("" for plain
// "entity" and for non-entity types).
func (t ContextType) EntityKind() string {
	if rest, ok := strings.CutPrefix(string(t), string(TypeEntity)+":"); ok {
		return rest
	}
	return ""
}

// ContextSpec declares one named input slot of a capability.
type ContextSpec struct {
	Name     string
	Type     ContextType
	Required bool
	Default  Value // Absent when the slot has no default
	Label    string
}

// DisplayName prefers the human label over the raw context name.
func (s ContextSpec) DisplayName() string {
	if s.Label != "" {
		return s.Label
	}
	return s.Name
}

// Descriptor is the immutable declaration of a capability: identity, lookup
// keys, and the ordered context schema. Built once at registration time.
type Descriptor struct {
	ID           string
	FunctionName string
	Label        string
	Description  string
	Group        string
	Contexts     []ContextSpec

	// EntityKind is the capability's operating kind, used as the implicit
	// resolution hint for plain "entity" contexts.
	EntityKind string
}

// Context returns the spec for a named slot.
func (d Descriptor) Context(name string) (ContextSpec, bool) {
	for _, c := range d.Contexts {
		if c.Name == name {
			return c, true
		}
	}
	return ContextSpec{}, false
}

// Call is the execution context handed to a capability: the resolved context
// values plus the (elevated) principal the execution runs as.
type Call struct {
	Descriptor Descriptor
	Principal  *Principal
	Values     map[string]Value
}

// Value returns the resolved value for a context slot, Absent if unset.
func (c *Call) Value(name string) Value {
	if c.Values == nil {
		return Absent()
	}
	v, ok := c.Values[name]
	if !ok {
		return Absent()
	}
	return v
}

// Str is a convenience accessor rendering the slot's value as text.
func (c *Call) Str(name string) string {
	return c.Value(name).Render()
}

// Capability is a live, single-use executable bound to one descriptor.
// Execute returns the readable output and an optional structured result.
type Capability interface {
	Execute(ctx context.Context, call *Call) (string, Value, error)
}

// Factory builds a fresh capability instance for one invocation.
type Factory func() Capability
