package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	serveradapter "github.com/hylla/ritning/internal/adapters/server"
	"github.com/hylla/ritning/internal/adapters/storage/sqlite"
	"github.com/hylla/ritning/internal/app"
	"github.com/hylla/ritning/internal/config"
	"github.com/hylla/ritning/internal/platform"
	"github.com/hylla/ritning/internal/tui"
)

var version = "dev"

type program interface {
	Run() (tea.Model, error)
}

// programFactory is swapped in tests so no terminal is needed.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// serveCommandRunner starts the HTTP+MCP serve flow.
var serveCommandRunner = func(ctx context.Context, cfg serveradapter.Config, deps serveradapter.Dependencies) error {
	return serveradapter.Run(ctx, cfg, deps)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := fang.Execute(ctx, newRootCommand(os.Stdout, os.Stderr), fang.WithVersion(version))
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// run executes one command line without fang's terminal chrome.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// cliOptions holds global flags shared by every command.
type cliOptions struct {
	configPath string
	dbPath     string
	appName    string
	devMode    bool

	stdout io.Writer
	stderr io.Writer
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	opts := &cliOptions{
		appName: "ritning",
		devMode: version == "dev",
		stdout:  stdout,
		stderr:  stderr,
	}
	if envDev, ok := parseBoolEnv("RITNING_DEV_MODE"); ok {
		opts.devMode = envDev
	}
	if envApp := strings.TrimSpace(os.Getenv("RITNING_APP_NAME")); envApp != "" {
		opts.appName = envApp
	}

	var projectID, assigneeID string
	root := &cobra.Command{
		Use:   "ritning",
		Short: "Plan project timelines from the terminal",
		Long: `ritning keeps projects, people and tasks in a local sqlite store and
draws them as a Gantt timeline. Run it without a command to open the
planning view, or use serve to expose the same timeline over HTTP and MCP.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withSession(cmd.Context(), "tui", func(_ context.Context, s *session) error {
				m := tui.NewModel(s.svc, tui.WithFilter(projectID, assigneeID))
				s.logger.Info("starting tui program loop")
				if _, err := programFactory(m).Run(); err != nil {
					s.logger.Error("tui program terminated with error", "err", err)
					return fmt.Errorf("run tui program: %w", err)
				}
				return nil
			})
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config TOML")
	flags.StringVar(&opts.dbPath, "db", "", "path to sqlite database")
	flags.StringVar(&opts.appName, "app", opts.appName, "application name for config/data path resolution")
	flags.BoolVar(&opts.devMode, "dev", opts.devMode, "use dev mode paths (<app>-dev)")
	root.Flags().StringVar(&projectID, "project", "", "only show tasks of this project id")
	root.Flags().StringVar(&assigneeID, "assignee", "", "only show tasks of this person id")

	root.AddCommand(
		newServeCommand(opts),
		newTimelineCommand(opts),
		newGroupsCommand(opts),
		newDepsCommand(opts),
		newExportCommand(opts),
		newImportCommand(opts),
		newPathsCommand(opts),
	)
	return root
}

// session is the opened runtime for one command: config, logger, store and service.
type session struct {
	paths      platform.Paths
	configPath string
	cfg        config.Config
	logger     *runtimeLogger
	repo       *sqlite.Repository
	svc        *app.Service
}

func (o *cliOptions) resolvePaths() (platform.Paths, error) {
	return platform.DefaultPathsWithOptions(platform.Options{
		AppName: o.appName,
		DevMode: o.devMode,
	})
}

// open resolves config and opens the store. The TUI command keeps console logs muted.
func (o *cliOptions) open(command string) (*session, error) {
	paths, err := o.resolvePaths()
	if err != nil {
		return nil, err
	}

	configPath := strings.TrimSpace(o.configPath)
	if configPath == "" {
		configPath = paths.ConfigPath
		if envPath := strings.TrimSpace(os.Getenv("RITNING_CONFIG")); envPath != "" {
			configPath = envPath
		}
	}
	dbPath := strings.TrimSpace(o.dbPath)
	if dbPath == "" {
		dbPath = strings.TrimSpace(os.Getenv("RITNING_DB_PATH"))
	}
	dbOverridden := dbPath != ""
	if !dbOverridden {
		dbPath = paths.DBPath
	}

	cfg, err := config.Load(configPath, config.Default(dbPath))
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dbOverridden {
		cfg.Database.Path = dbPath
	}

	logger, err := newRuntimeLogger(o.stderr, o.appName, o.devMode, cfg.Logging, time.Now)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	if command == "tui" {
		logger.SetConsoleEnabled(false)
	}

	logger.Info("startup configuration resolved", "app", o.appName, "dev_mode", o.devMode, "command", command)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir, "db_path", dbPath)
	logger.Info("configuration loaded", "config_path", configPath, "db_path", cfg.Database.Path, "log_level", cfg.Logging.Level, "default_mode", cfg.ViewMode())
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	logger.Info("opening sqlite repository", "db_path", cfg.Database.Path)
	repo, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("sqlite open failed", "db_path", cfg.Database.Path, "err", err)
		_ = logger.Close()
		return nil, fmt.Errorf("open sqlite repository: %w", err)
	}
	logger.Info("sqlite repository ready", "db_path", cfg.Database.Path, "migrations", "ensured")

	svc := app.NewService(repo, uuid.NewString, nil, app.ServiceConfig{DefaultMode: cfg.ViewMode()})
	return &session{
		paths:      paths,
		configPath: configPath,
		cfg:        cfg,
		logger:     logger,
		repo:       repo,
		svc:        svc,
	}, nil
}

// Close releases the store and the log file.
func (s *session) Close(stderr io.Writer) {
	if err := s.repo.Close(); err != nil {
		s.logger.Warn("sqlite close failed", "db_path", s.cfg.Database.Path, "err", err)
	}
	if err := s.logger.Close(); err != nil && s.logger.shouldLogToSink(s.logger.consoleSink) {
		_, _ = fmt.Fprintf(stderr, "warning: close runtime log sink: %v\n", err)
	}
}

// withSession opens a session, runs fn inside start/complete log lines, and closes it.
func (o *cliOptions) withSession(ctx context.Context, command string, fn func(context.Context, *session) error) error {
	s, err := o.open(command)
	if err != nil {
		return err
	}
	defer s.Close(o.stderr)

	s.logger.Info("command flow start", "command", command)
	if err := fn(ctx, s); err != nil {
		s.logger.Error("command flow failed", "command", command, "err", err)
		return fmt.Errorf("run %s command: %w", command, err)
	}
	s.logger.Info("command flow complete", "command", command)
	return nil
}

// parseBoolEnv reports the parsed value and whether the variable held a valid bool.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
