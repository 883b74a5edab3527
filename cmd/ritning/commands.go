package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	serveradapter "github.com/hylla/ritning/internal/adapters/server"
	servercommon "github.com/hylla/ritning/internal/adapters/server/common"
	"github.com/hylla/ritning/internal/app"
)

// Snapshot file formats.
const (
	formatJSON = "json"
	formatYAML = "yaml"
)

func newServeCommand(opts *cliOptions) *cobra.Command {
	var httpBind, apiEndpoint, mcpEndpoint string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API and MCP tools over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withSession(cmd.Context(), "serve", func(ctx context.Context, s *session) error {
				server := s.cfg.Server
				if cmd.Flags().Changed("http") {
					server.HTTPBind = httpBind
				}
				if cmd.Flags().Changed("api-endpoint") {
					server.APIEndpoint = apiEndpoint
				}
				if cmd.Flags().Changed("mcp-endpoint") {
					server.MCPEndpoint = mcpEndpoint
				}
				s.logger.Info("serve endpoints resolved", "http", server.HTTPBind, "api", server.APIEndpoint, "mcp", server.MCPEndpoint)

				return serveCommandRunner(ctx, serveradapter.Config{
					HTTPBind:      server.HTTPBind,
					APIEndpoint:   server.APIEndpoint,
					MCPEndpoint:   server.MCPEndpoint,
					ServerName:    opts.appName,
					ServerVersion: version,
				}, serveradapter.Dependencies{
					Timeline:  servercommon.NewAppServiceAdapter(s.svc),
					Readiness: s.repo,
				})
			})
		},
	}
	cmd.Flags().StringVar(&httpBind, "http", "", "HTTP listen address (default from [server] http_bind)")
	cmd.Flags().StringVar(&apiEndpoint, "api-endpoint", "", "HTTP API base endpoint (default from [server] api_endpoint)")
	cmd.Flags().StringVar(&mcpEndpoint, "mcp-endpoint", "", "MCP streamable HTTP endpoint (default from [server] mcp_endpoint)")
	return cmd
}

func newTimelineCommand(opts *cliOptions) *cobra.Command {
	var (
		req    servercommon.TimelineRequest
		width  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Print the Gantt timeline for one window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withSession(cmd.Context(), "timeline", func(ctx context.Context, s *session) error {
				out, err := servercommon.NewAppServiceAdapter(s.svc).Timeline(ctx, req)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(opts.stdout, out)
				}
				_, err = fmt.Fprintln(opts.stdout, renderTimelineTable(out, width))
				return err
			})
		},
	}
	cmd.Flags().StringVar(&req.Mode, "mode", "", "view mode: week, month or quarter (default from [timeline] default_mode)")
	cmd.Flags().StringVar(&req.Anchor, "anchor", "", "anchor date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&req.ProjectID, "project", "", "only show tasks of this project id")
	cmd.Flags().StringVar(&req.AssigneeID, "assignee", "", "only show tasks of this person id")
	cmd.Flags().IntVar(&width, "width", 40, "timeline column width in cells")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the render model as JSON")
	return cmd
}

func newGroupsCommand(opts *cliOptions) *cobra.Command {
	var (
		by     string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Print the project or assignee rollup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withSession(cmd.Context(), "groups", func(ctx context.Context, s *session) error {
				buckets, err := servercommon.NewAppServiceAdapter(s.svc).Groups(ctx, by)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(opts.stdout, map[string]any{"group_by": strings.TrimSpace(by), "buckets": buckets})
				}
				_, err = fmt.Fprintln(opts.stdout, renderBucketsTable(buckets))
				return err
			})
		},
	}
	cmd.Flags().StringVar(&by, "by", servercommon.GroupByProject, "rollup key: project or assignee")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print buckets as JSON")
	return cmd
}

func newDepsCommand(opts *cliOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "deps <task-id>",
		Short: "Print the resolved dependencies of one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd.Context(), "deps", func(ctx context.Context, s *session) error {
				deps, err := servercommon.NewAppServiceAdapter(s.svc).TaskDependencies(ctx, args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(opts.stdout, deps)
				}
				_, err = fmt.Fprintln(opts.stdout, renderDependencies(deps))
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the task and its dependencies as JSON")
	return cmd
}

func newExportCommand(opts *cliOptions) *cobra.Command {
	var (
		outPath, format string
		backup          bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every project, person and task to a snapshot file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withSession(cmd.Context(), "export", func(ctx context.Context, s *session) error {
				if !backup {
					return runExport(ctx, s.svc, outPath, format, opts.stdout)
				}
				resolved, err := snapshotFormat(format, "")
				if err != nil {
					return err
				}
				target := s.paths.SnapshotPath(time.Now(), resolved)
				if err := runExport(ctx, s.svc, target, resolved, opts.stdout); err != nil {
					return err
				}
				s.logger.Info("snapshot backup written", "path", target)
				_, err = fmt.Fprintln(opts.stdout, target)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "-", "output file path ('-' for stdout)")
	cmd.Flags().StringVar(&format, "format", "", "snapshot format: json or yaml (default from --out extension)")
	cmd.Flags().BoolVar(&backup, "backup", false, "write a timestamped snapshot under the data dir and print its path")
	cmd.MarkFlagsMutuallyExclusive("out", "backup")
	return cmd
}

func newImportCommand(opts *cliOptions) *cobra.Command {
	var inPath, format string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Validate and upsert a snapshot file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(inPath) == "" {
				return errors.New("--in is required")
			}
			return opts.withSession(cmd.Context(), "import", func(ctx context.Context, s *session) error {
				return runImport(ctx, s.svc, inPath, format)
			})
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "input snapshot file (.json, .yaml or .yml)")
	cmd.Flags().StringVar(&format, "format", "", "snapshot format: json or yaml (default from --in extension)")
	return cmd
}

func newPathsCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config, data and log paths",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			paths, err := opts.resolvePaths()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(opts.stdout, "app: %s\n", opts.appName)
			_, _ = fmt.Fprintf(opts.stdout, "dev_mode: %t\n", opts.devMode)
			_, _ = fmt.Fprintf(opts.stdout, "config: %s\n", paths.ConfigPath)
			_, _ = fmt.Fprintf(opts.stdout, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(opts.stdout, "db: %s\n", paths.DBPath)
			_, _ = fmt.Fprintf(opts.stdout, "log_dir: %s\n", paths.LogDir)
			_, _ = fmt.Fprintf(opts.stdout, "snapshot_dir: %s\n", paths.SnapshotDir)
			return nil
		},
	}
}

// runExport encodes the snapshot and writes it to outPath or stdout.
func runExport(ctx context.Context, svc *app.Service, outPath, format string, stdout io.Writer) error {
	format, err := snapshotFormat(format, outPath)
	if err != nil {
		return err
	}
	snap, err := svc.ExportSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("export snapshot: %w", err)
	}

	var encoded []byte
	switch format {
	case formatYAML:
		encoded, err = yaml.Marshal(snap)
	default:
		encoded, err = json.MarshalIndent(snap, "", "  ")
		encoded = append(encoded, '\n')
	}
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", format, err)
	}

	if outPath == "" || outPath == "-" {
		if _, err := stdout.Write(encoded); err != nil {
			return fmt.Errorf("write snapshot to stdout: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create export output dir: %w", err)
	}
	if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	return nil
}

// runImport decodes one snapshot file and imports it.
func runImport(ctx context.Context, svc *app.Service, inPath, format string) error {
	format, err := snapshotFormat(format, inPath)
	if err != nil {
		return err
	}
	content, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("read import file: %w", err)
	}

	var snap app.Snapshot
	switch format {
	case formatYAML:
		err = yaml.Unmarshal(content, &snap)
	default:
		err = json.Unmarshal(content, &snap)
	}
	if err != nil {
		return fmt.Errorf("decode snapshot %s: %w", format, err)
	}
	if err := svc.ImportSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("import snapshot: %w", err)
	}
	return nil
}

// snapshotFormat picks an explicit format or infers one from the file extension.
func snapshotFormat(explicit, path string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(explicit)) {
	case formatJSON:
		return formatJSON, nil
	case formatYAML, "yml":
		return formatYAML, nil
	case "":
	default:
		return "", fmt.Errorf("unsupported snapshot format %q", explicit)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML, nil
	default:
		return formatJSON, nil
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
