package config

import (
	"path/filepath"

	"caprun/internal/auth"
)

func authDefaults() auth.Config {
	return auth.Config{DefaultPolicy: "allow"}
}

// Defaults returns a runnable configuration rooted in the default config
// directory.
func Defaults() *Config {
	dir := DefaultConfigDir()
	return &Config{
		General: GeneralConfig{
			Workspace:     filepath.Join(dir, "workspace"),
			LogLevel:      "info",
			Owner:         "local",
			MaxIterations: 10,
			SchemaDir:     filepath.Join(dir, "schemas"),
		},
		Store: StoreConfig{
			DBPath: filepath.Join(dir, "caprun.db"),
		},
		Auth: authDefaults(),
		Entities: EntitiesConfig{
			Path: filepath.Join(dir, "entities.yaml"),
		},
		Trees: TreesConfig{
			ActiveDir:  filepath.Join(dir, "trees", "active"),
			StagingDir: filepath.Join(dir, "trees", "staging"),
		},
		Provider: ProviderConfig{},
	}
}
