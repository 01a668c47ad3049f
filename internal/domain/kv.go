package domain

import (
	"context"
	"time"
)

// KV is the backing key/value service under the ephemeral store. The core
// only layers namespacing and sanitization on top of it.
type KV interface {
	SetWithExpire(ctx context.Context, key, value string, ttl time.Duration) error

	// Get returns the live value for key. The second return is false when
	// the key is missing or expired.
	Get(ctx context.Context, key string) (string, bool, error)

	Delete(ctx context.Context, key string) error
}

// KVConsumer is implemented by backends that can read and delete a key in
// one atomic step. Consume-once semantics require it: of two concurrent
// consumers exactly one sees the payload.
type KVConsumer interface {
	GetDelete(ctx context.Context, key string) (string, bool, error)
}
