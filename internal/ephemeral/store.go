// Package ephemeral is the scoped scratch store: owner-namespaced,
// expiring key/value entries layered over an external KV backend. It is
// how two otherwise independent invocations exchange data.
package ephemeral

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"caprun/internal/domain"
)

// TTL is the fixed lifetime of every entry. Reads never refresh it.
const TTL = 24 * time.Hour

const keyPrefix = "scratch."

// Store owns namespacing and key sanitization; storage itself is the
// backend's problem.
type Store struct {
	kv     domain.KV
	logger *slog.Logger
}

func NewStore(kv domain.KV, logger *slog.Logger) *Store {
	return &Store{kv: kv, logger: logger}
}

// NamespacedKey normalizes a caller-supplied key into its owner-scoped
// form "scratch.<owner>:<suffix>". A key carrying a foreign owner prefix
// is rejected, so callers cannot forge cross-owner access.
func (s *Store) NamespacedKey(owner, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", domain.InvalidInputf("empty key")
	}
	ns := keyPrefix + owner + ":"
	if !strings.Contains(raw, ":") {
		raw = ns + raw
	}
	if !strings.HasPrefix(raw, ns) {
		return "", domain.InvalidInputf("key %q does not belong to owner %s", raw, owner)
	}
	suffix := sanitizeSuffix(raw[len(ns):])
	if suffix == "" {
		return "", domain.InvalidInputf("key %q has no usable suffix", raw)
	}
	return ns + suffix, nil
}

// sanitizeSuffix replaces every character outside [A-Za-z0-9_.-] with an
// underscore.
func sanitizeSuffix(suffix string) string {
	var b strings.Builder
	for _, r := range suffix {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '_', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// Save writes the payload under the owner-scoped key with the fixed TTL.
// It returns the namespaced key and whether a live entry was overwritten.
func (s *Store) Save(ctx context.Context, owner, rawKey, payload string) (string, bool, error) {
	key, err := s.NamespacedKey(owner, rawKey)
	if err != nil {
		return "", false, err
	}
	_, replaced, err := s.kv.Get(ctx, key)
	if err != nil {
		return "", false, err
	}
	if err := s.kv.SetWithExpire(ctx, key, payload, TTL); err != nil {
		return "", false, err
	}
	s.logger.Debug("scratch entry saved", "key", key, "replaced", replaced)
	return key, replaced, nil
}

// Load reads the payload. The second return is false when the entry is
// missing or expired.
func (s *Store) Load(ctx context.Context, owner, rawKey string) (string, bool, error) {
	key, err := s.NamespacedKey(owner, rawKey)
	if err != nil {
		return "", false, err
	}
	return s.kv.Get(ctx, key)
}

// Consume reads and deletes in one step. When the backend supports atomic
// read-and-delete, two concurrent consumers of one key cannot both see the
// payload.
func (s *Store) Consume(ctx context.Context, owner, rawKey string) (string, bool, error) {
	key, err := s.NamespacedKey(owner, rawKey)
	if err != nil {
		return "", false, err
	}
	if c, ok := s.kv.(domain.KVConsumer); ok {
		return c.GetDelete(ctx, key)
	}
	value, found, err := s.kv.Get(ctx, key)
	if err != nil || !found {
		return "", false, err
	}
	if err := s.kv.Delete(ctx, key); err != nil {
		return "", false, err
	}
	return value, true, nil
}
