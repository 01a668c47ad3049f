package ephemeral

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"caprun/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mapKV is a plain in-memory backend without atomic consume, exercising
// the get-then-delete fallback path.
type mapKV struct {
	data map[string]string
}

func newMapKV() *mapKV { return &mapKV{data: make(map[string]string)} }

func (m *mapKV) SetWithExpire(ctx context.Context, key, value string, ttl time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *mapKV) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mapKV) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func TestNamespacedKey(t *testing.T) {
	s := NewStore(newMapKV(), testLogger())

	cases := []struct {
		owner, raw string
		want       string
		wantErr    bool
	}{
		{"1", "draft", "scratch.1:draft", false},
		{"1", "  draft  ", "scratch.1:draft", false},
		{"1", "scratch.1:draft", "scratch.1:draft", false},
		{"1", "../etc/passwd", "scratch.1:.._etc_passwd", false},
		{"1", "scratch.1:../etc/passwd", "scratch.1:.._etc_passwd", false},
		{"1", "scratch.2:draft", "", true},
		{"1", "", "", true},
		{"1", "scratch.1:", "", true},
	}
	for _, tc := range cases {
		got, err := s.NamespacedKey(tc.owner, tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("owner %s key %q: expected error, got %q", tc.owner, tc.raw, got)
			}
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("owner %s key %q: expected ErrInvalidInput, got %v", tc.owner, tc.raw, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("owner %s key %q: %s", tc.owner, tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("owner %s key %q: expected %q, got %q", tc.owner, tc.raw, tc.want, got)
		}
	}
}

func TestStore_SaveLoadConsume(t *testing.T) {
	ctx := context.Background()
	s := NewStore(newMapKV(), testLogger())

	key, replaced, err := s.Save(ctx, "1", "draft", "payload-a")
	if err != nil {
		t.Fatalf("save: %s", err)
	}
	if replaced {
		t.Fatal("first save reported a replacement")
	}
	if key != "scratch.1:draft" {
		t.Fatalf("unexpected key %q", key)
	}

	_, replaced, err = s.Save(ctx, "1", "draft", "payload-b")
	if err != nil {
		t.Fatalf("second save: %s", err)
	}
	if !replaced {
		t.Fatal("overwrite not reported")
	}

	got, found, err := s.Load(ctx, "1", "draft")
	if err != nil || !found {
		t.Fatalf("load: found=%v err=%v", found, err)
	}
	if got != "payload-b" {
		t.Fatalf("expected payload-b, got %q", got)
	}

	got, found, err = s.Consume(ctx, "1", "draft")
	if err != nil || !found || got != "payload-b" {
		t.Fatalf("consume: got=%q found=%v err=%v", got, found, err)
	}
	if _, found, _ := s.Load(ctx, "1", "draft"); found {
		t.Fatal("entry survived consume")
	}
}

func TestStore_OwnersAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := NewStore(newMapKV(), testLogger())

	if _, _, err := s.Save(ctx, "1", "draft", "mine"); err != nil {
		t.Fatalf("save: %s", err)
	}
	if _, found, err := s.Load(ctx, "2", "draft"); err != nil || found {
		t.Fatalf("owner 2 saw owner 1's entry: found=%v err=%v", found, err)
	}
	if _, _, err := s.Load(ctx, "2", "scratch.1:draft"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("forged prefix should be rejected, got %v", err)
	}
}
