package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const defaultAppName = "ritning"

// Paths holds the per-user locations ritning reads and writes.
type Paths struct {
	ConfigPath  string
	DataDir     string
	DBPath      string
	LogDir      string
	SnapshotDir string
}

// Options selects the app name and whether dev-suffixed paths are used.
type Options struct {
	AppName string
	DevMode bool
}

// dirOverrides names the env vars that replace the user config and data bases on one OS.
type dirOverrides struct {
	config string
	data   string
}

// overridesByOS lists the OSes whose env vars take precedence. Others keep the Go defaults.
var overridesByOS = map[string]dirOverrides{
	"linux":   {config: "XDG_CONFIG_HOME", data: "XDG_DATA_HOME"},
	"windows": {config: "APPDATA", data: "LOCALAPPDATA"},
}

// DefaultPaths resolves paths for the production app name.
func DefaultPaths() (Paths, error) {
	return DefaultPathsWithOptions(Options{AppName: defaultAppName})
}

// DefaultPathsWithOptions resolves paths from the host OS and its env vars.
func DefaultPathsWithOptions(opts Options) (Paths, error) {
	appName := strings.TrimSpace(opts.AppName)
	if appName == "" {
		appName = defaultAppName
	}
	if opts.DevMode {
		appName += "-dev"
	}

	configBase, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("user config dir: %w", err)
	}
	dataBase, err := userDataDir(runtime.GOOS, configBase)
	if err != nil {
		return Paths{}, err
	}

	env := map[string]string{}
	if o, ok := overridesByOS[runtime.GOOS]; ok {
		env[o.config] = os.Getenv(o.config)
		env[o.data] = os.Getenv(o.data)
	}
	return PathsFor(runtime.GOOS, env, configBase, dataBase, appName)
}

// userDataDir is ~/.local/share on linux and the config base elsewhere.
func userDataDir(goos, configBase string) (string, error) {
	if goos != "linux" {
		return configBase, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("user home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share"), nil
}

// PathsFor resolves paths for one OS and environment snapshot.
func PathsFor(goos string, env map[string]string, userConfigDir, userDataDir, appName string) (Paths, error) {
	if userConfigDir == "" || userDataDir == "" {
		return Paths{}, fmt.Errorf("empty base dirs")
	}
	appName = strings.TrimSpace(appName)
	if appName == "" {
		return Paths{}, fmt.Errorf("empty app name")
	}

	configBase, dataBase := userConfigDir, userDataDir
	if o, ok := overridesByOS[goos]; ok {
		if v := strings.TrimSpace(env[o.config]); v != "" {
			configBase = v
		}
		if v := strings.TrimSpace(env[o.data]); v != "" {
			dataBase = v
		}
	}

	dataDir := filepath.Join(dataBase, appName)
	return Paths{
		ConfigPath:  filepath.Join(configBase, appName, "config.toml"),
		DataDir:     dataDir,
		DBPath:      filepath.Join(dataDir, appName+".db"),
		LogDir:      filepath.Join(dataDir, "log"),
		SnapshotDir: filepath.Join(dataDir, "snapshots"),
	}, nil
}

// SnapshotPath names a timestamped backup file under SnapshotDir, e.g. snapshot-20241218-091500.yaml.
func (p Paths) SnapshotPath(now time.Time, ext string) string {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		ext = "json"
	}
	return filepath.Join(p.SnapshotDir, fmt.Sprintf("snapshot-%s.%s", now.UTC().Format("20060102-150405"), ext))
}
