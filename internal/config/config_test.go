package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hylla/ritning/internal/timeline"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default("/tmp/ritning.db")
	if cfg.Database.Path != "/tmp/ritning.db" {
		t.Fatalf("unexpected db path %q", cfg.Database.Path)
	}
	if cfg.Logging.Level != "info" || !cfg.Logging.DevFile.Enabled {
		t.Fatalf("unexpected logging defaults %#v", cfg.Logging)
	}
	if cfg.ViewMode() != timeline.ModeMonth {
		t.Fatalf("unexpected default mode %q", cfg.Timeline.DefaultMode)
	}
	if cfg.Server.HTTPBind != "127.0.0.1:8080" || cfg.Server.APIEndpoint != "/api/v1" || cfg.Server.MCPEndpoint != "/mcp" {
		t.Fatalf("unexpected server defaults %#v", cfg.Server)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	defaults := Default("/tmp/ritning.db")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"), defaults)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != defaults.Database.Path {
		t.Fatalf("expected default db path, got %q", cfg.Database.Path)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[database]
path = "/custom/ritning.db"

[logging]
level = "debug"

[logging.dev_file]
enabled = false

[timeline]
default_mode = "Quarter"

[server]
http_bind = "0.0.0.0:9090"
mcp_endpoint = "/agents"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path, Default("/tmp/default.db"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != "/custom/ritning.db" {
		t.Fatalf("unexpected db path %q", cfg.Database.Path)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.DevFile.Enabled {
		t.Fatalf("unexpected logging %#v", cfg.Logging)
	}
	if cfg.Logging.DevFile.Dir != ".ritning/log" {
		t.Fatalf("expected dev file dir default kept, got %q", cfg.Logging.DevFile.Dir)
	}
	if cfg.ViewMode() != timeline.ModeQuarter {
		t.Fatalf("unexpected mode %q", cfg.Timeline.DefaultMode)
	}
	if cfg.Server.HTTPBind != "0.0.0.0:9090" || cfg.Server.APIEndpoint != "/api/v1" || cfg.Server.MCPEndpoint != "/agents" {
		t.Fatalf("unexpected server %#v", cfg.Server)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"empty db path": `
[database]
path = "  "
`,
		"unknown mode": `
[timeline]
default_mode = "year"
`,
		"unknown log level": `
[logging]
level = "loud"
`,
		"colliding endpoints": `
[server]
api_endpoint = "/mcp/"
`,
		"bad toml": `[database`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
			if _, err := Load(path, Default("/tmp/default.db")); err == nil {
				t.Fatal("expected load error")
			}
		})
	}
}

func TestEnsureConfigDir(t *testing.T) {
	target := filepath.Join(t.TempDir(), "a", "b", "config.toml")
	if err := EnsureConfigDir(target); err != nil {
		t.Fatalf("EnsureConfigDir() error = %v", err)
	}
	if _, err := os.Stat(filepath.Dir(target)); err != nil {
		t.Fatalf("expected dir to exist, stat error %v", err)
	}
}
