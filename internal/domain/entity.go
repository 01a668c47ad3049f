package domain

// Entity is a loaded domain object (an agent definition, a channel, ...).
// Entities are immutable for the duration of an invocation.
type Entity struct {
	Kind  string         `json:"kind" yaml:"kind"`
	ID    string         `json:"id" yaml:"id"`
	Name  string         `json:"name" yaml:"name"`
	Attrs map[string]any `json:"attrs,omitempty" yaml:"attrs,omitempty"`
}

// EntityStore resolves entity references to loaded objects.
type EntityStore interface {
	// Get performs a single lookup by kind and id.
	Get(kind, id string) (*Entity, bool)

	// List returns all entities of a kind in catalog order.
	List(kind string) []*Entity
}
