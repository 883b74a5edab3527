package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/hylla/ritning/internal/timeline"
)

// supportedLogLevels lists levels accepted by the runtime logger.
var supportedLogLevels = []string{"debug", "info", "warn", "error", "fatal"}

type Config struct {
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
	Timeline TimelineConfig `toml:"timeline"`
	Server   ServerConfig   `toml:"server"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

// LoggingConfig configures console and dev-file log sinks.
type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

// DevFileConfig controls the logfmt file sink used in dev mode.
type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type TimelineConfig struct {
	DefaultMode string `toml:"default_mode"` // week | month | quarter
}

type ServerConfig struct {
	HTTPBind    string `toml:"http_bind"`
	APIEndpoint string `toml:"api_endpoint"`
	MCPEndpoint string `toml:"mcp_endpoint"`
}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     ".ritning/log",
			},
		},
		Timeline: TimelineConfig{
			DefaultMode: string(timeline.ModeMonth),
		},
		Server: ServerConfig{
			HTTPBind:    "127.0.0.1:8080",
			APIEndpoint: "/api/v1",
			MCPEndpoint: "/mcp",
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}

	level := strings.TrimSpace(strings.ToLower(c.Logging.Level))
	if !slices.Contains(supportedLogLevels, level) {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	if _, err := timeline.ParseViewMode(c.Timeline.DefaultMode); err != nil {
		return fmt.Errorf("invalid timeline.default_mode: %q", c.Timeline.DefaultMode)
	}

	api := trimEndpoint(c.Server.APIEndpoint)
	mcp := trimEndpoint(c.Server.MCPEndpoint)
	if api != "" && api == mcp {
		return fmt.Errorf("server.api_endpoint and server.mcp_endpoint must differ: %q", c.Server.APIEndpoint)
	}

	return nil
}

// ViewMode returns the parsed default view mode, falling back to month.
func (c Config) ViewMode() timeline.ViewMode {
	mode, err := timeline.ParseViewMode(c.Timeline.DefaultMode)
	if err != nil {
		return timeline.ModeMonth
	}
	return mode
}

func trimEndpoint(path string) string {
	return strings.Trim(strings.TrimSpace(path), "/")
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
