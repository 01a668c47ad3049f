package confdiff

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %s", name, err)
	}
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "alpha.yaml", "a: 1\nb:\n  c: two\n")
	writeFile(t, dir, "beta.yml", "x: true\n")
	writeFile(t, dir, "ignored.txt", "not yaml")

	src := NewDirSource(dir)
	ctx := context.Background()

	names, err := src.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %s", err)
	}
	if len(names) != 2 {
		t.Fatalf("expected alpha and beta, got %v", names)
	}

	tree, ok, err := src.Read(ctx, "alpha")
	if err != nil || !ok {
		t.Fatalf("read alpha: ok=%v err=%v", ok, err)
	}
	if tree["a"] != 1 {
		t.Fatalf("expected a=1, got %v", tree["a"])
	}

	if _, ok, _ := src.Read(ctx, "missing"); ok {
		t.Fatal("missing file reported present")
	}
}

func TestDirSource_NonMappingFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "scalar.yaml", "just a bare scalar\n")

	tree, ok, err := NewDirSource(dir).Read(context.Background(), "scalar")
	if err != nil || !ok {
		t.Fatalf("read: ok=%v err=%v", ok, err)
	}
	if tree != nil {
		t.Fatalf("non-mapping file should yield a nil tree, got %v", tree)
	}
}

func TestDirSource_MissingDirectory(t *testing.T) {
	src := NewDirSource(filepath.Join(t.TempDir(), "nope"))
	names, err := src.ListAll(context.Background())
	if err != nil {
		t.Fatalf("missing directory should list empty, got %s", err)
	}
	if len(names) != 0 {
		t.Fatalf("expected no names, got %v", names)
	}
}
