package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvCacheDir, "")
	t.Setenv(EnvAppsDir, "")
}

func TestDefault_IsValid(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("Default() should validate: %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Cache.MemoryEntries != Default().Cache.MemoryEntries {
		t.Errorf("MemoryEntries: got %d, want default", cfg.Cache.MemoryEntries)
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
log_level = "debug"
log_json = true

[cache]
dir = "` + filepath.ToSlash(filepath.Join(dir, "icons")) + `"
memory_entries = 16
icon_max_size = 96

[apps]
dir = "/data/app"
watch = false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.LogLevel != "debug" || !cfg.LogJSON {
		t.Errorf("logging: got %q json=%v", cfg.LogLevel, cfg.LogJSON)
	}
	if cfg.Cache.MemoryEntries != 16 {
		t.Errorf("MemoryEntries: got %d, want 16", cfg.Cache.MemoryEntries)
	}
	if cfg.Cache.IconMaxSize != 96 {
		t.Errorf("IconMaxSize: got %d, want 96", cfg.Cache.IconMaxSize)
	}
	if cfg.Apps.Dir != "/data/app" || cfg.Apps.Watch {
		t.Errorf("apps: got %+v", cfg.Apps)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvLogLevel, "WARN")
	t.Setenv(EnvCacheDir, "/tmp/icons")
	t.Setenv(EnvAppsDir, "/opt/apps")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel: got %q, want warn", cfg.LogLevel)
	}
	if cfg.Cache.Dir != "/tmp/icons" {
		t.Errorf("Cache.Dir: got %q", cfg.Cache.Dir)
	}
	if cfg.Apps.Dir != "/opt/apps" {
		t.Errorf("Apps.Dir: got %q", cfg.Apps.Dir)
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("log_level = "), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load should fail on malformed TOML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad level", func(c *Config) { c.LogLevel = "loud" }},
		{"empty cache dir", func(c *Config) { c.Cache.Dir = "" }},
		{"zero memory entries", func(c *Config) { c.Cache.MemoryEntries = 0 }},
		{"negative icon size", func(c *Config) { c.Cache.IconMaxSize = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := Validate(cfg); err == nil {
				t.Error("Validate should fail")
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := expandHome("~/icons"); got != filepath.Join(home, "icons") {
		t.Errorf("expandHome: got %q", got)
	}
	if got := expandHome("/abs"); got != "/abs" {
		t.Errorf("expandHome should leave absolute paths alone: got %q", got)
	}
}
