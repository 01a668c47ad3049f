package config

import (
	"path/filepath"
	"testing"
)

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := Defaults()
	cfg.General.Owner = "42"
	cfg.Auth.DefaultPolicy = "deny"
	cfg.Provider.Model = "qwen2.5"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %s", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %s", err)
	}
	if loaded.General.Owner != "42" {
		t.Fatalf("owner lost: %q", loaded.General.Owner)
	}
	if loaded.Auth.DefaultPolicy != "deny" {
		t.Fatalf("auth policy lost: %q", loaded.Auth.DefaultPolicy)
	}
	if loaded.Provider.Model != "qwen2.5" {
		t.Fatalf("provider model lost: %q", loaded.Provider.Model)
	}
	// Fields absent from the file keep their defaults.
	if loaded.General.MaxIterations != 10 {
		t.Fatalf("default maxIterations lost: %d", loaded.General.MaxIterations)
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("missing file should error")
	}
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %s", err)
	}

	cfg.General.Owner = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty owner accepted")
	}

	cfg = Defaults()
	cfg.Auth.DefaultPolicy = "maybe"
	if err := cfg.Validate(); err == nil {
		t.Fatal("bad default policy accepted")
	}

	cfg = Defaults()
	cfg.General.MaxIterations = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("negative maxIterations accepted")
	}
}
