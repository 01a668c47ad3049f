package domain

import "context"

// ConfigSource is one side of a config comparison: a read-only store of
// named hierarchical key/value trees.
type ConfigSource interface {
	// ListAll enumerates item names in store order.
	ListAll(ctx context.Context) ([]string, error)

	// Read returns the tree for a name. The second return is false when
	// the item is absent.
	Read(ctx context.Context, name string) (map[string]any, bool, error)
}
