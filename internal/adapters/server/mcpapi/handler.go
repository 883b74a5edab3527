// Package mcpapi provides a stateless MCP streamable-HTTP adapter.
package mcpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hylla/ritning/internal/adapters/server/common"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Config captures MCP transport configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// NewHandler builds one stateless MCP adapter exposing the read-only timeline tools.
func NewHandler(cfg Config, timeline common.TimelineService) (*Handler, error) {
	if timeline == nil {
		return nil, fmt.Errorf("timeline service is required")
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerTimelineTool(mcpSrv, timeline)
	registerGroupsTool(mcpSrv, timeline)
	registerDependenciesTool(mcpSrv, timeline)
	registerNavigateTool(mcpSrv, timeline)

	streamable := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

// ServeHTTP handles one MCP streamable HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

// normalizeConfig applies deterministic defaults to MCP adapter config.
func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "ritning"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = strings.TrimSpace(cfg.EndpointPath)
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/mcp"
	}
	cfg.EndpointPath = "/" + strings.Trim(cfg.EndpointPath, "/")
	return cfg
}

// registerTimelineTool registers the `ritning.timeline` tool.
func registerTimelineTool(srv *mcpserver.MCPServer, timeline common.TimelineService) {
	srv.AddTool(
		mcp.NewTool(
			"ritning.timeline",
			mcp.WithDescription("Compute the Gantt render model (columns, month headers, bar positions, today marker) for one view window."),
			mcp.WithString("mode", mcp.Description("View mode (defaults to the configured mode)"), mcp.Enum("week", "month", "quarter")),
			mcp.WithString("anchor", mcp.Description("Anchor date YYYY-MM-DD (defaults to today)")),
			mcp.WithString("project_id", mcp.Description("Only include tasks of this project")),
			mcp.WithString("assignee_id", mcp.Description("Only include tasks of this assignee")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			out, err := timeline.Timeline(ctx, common.TimelineRequest{
				Mode:       req.GetString("mode", ""),
				Anchor:     req.GetString("anchor", ""),
				ProjectID:  req.GetString("project_id", ""),
				AssigneeID: req.GetString("assignee_id", ""),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(out)
			if err != nil {
				return nil, fmt.Errorf("encode timeline result: %w", err)
			}
			return result, nil
		},
	)
}

// registerGroupsTool registers the `ritning.groups` rollup tool.
func registerGroupsTool(srv *mcpserver.MCPServer, timeline common.TimelineService) {
	srv.AddTool(
		mcp.NewTool(
			"ritning.groups",
			mcp.WithDescription("Group top-level tasks by project or assignee with completion counts."),
			mcp.WithString("by", mcp.Required(), mcp.Description("Grouping dimension"), mcp.Enum(common.GroupByProject, common.GroupByAssignee)),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			by, err := req.RequireString("by")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			buckets, err := timeline.Groups(ctx, by)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{
				"group_by": by,
				"buckets":  buckets,
			})
			if err != nil {
				return nil, fmt.Errorf("encode groups result: %w", err)
			}
			return result, nil
		},
	)
}

// registerDependenciesTool registers the `ritning.task_dependencies` tool.
func registerDependenciesTool(srv *mcpserver.MCPServer, timeline common.TimelineService) {
	srv.AddTool(
		mcp.NewTool(
			"ritning.task_dependencies",
			mcp.WithDescription("Return one task and the tasks it depends on. Unknown dependency ids are skipped."),
			mcp.WithString("task_id", mcp.Required(), mcp.Description("Task identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			taskID, err := req.RequireString("task_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			deps, err := timeline.TaskDependencies(ctx, taskID)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(deps)
			if err != nil {
				return nil, fmt.Errorf("encode task_dependencies result: %w", err)
			}
			return result, nil
		},
	)
}

// registerNavigateTool registers the `ritning.navigate` tool.
func registerNavigateTool(srv *mcpserver.MCPServer, timeline common.TimelineService) {
	srv.AddTool(
		mcp.NewTool(
			"ritning.navigate",
			mcp.WithDescription("Step a view window one unit backward or forward, or jump back to today."),
			mcp.WithString("mode", mcp.Description("View mode"), mcp.Enum("week", "month", "quarter")),
			mcp.WithString("anchor", mcp.Description("Current anchor date YYYY-MM-DD")),
			mcp.WithString("step", mcp.Required(), mcp.Description("Navigation step"), mcp.Enum("prev", "next", "today")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			step, err := req.RequireString("step")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			in := common.NavigateRequest{
				Mode:   req.GetString("mode", ""),
				Anchor: req.GetString("anchor", ""),
			}
			switch strings.ToLower(strings.TrimSpace(step)) {
			case "prev":
				in.Direction = -1
			case "next":
				in.Direction = 1
			case "today":
				in.Today = true
			default:
				return mcp.NewToolResultError(fmt.Sprintf("invalid_request: unknown step %q", step)), nil
			}
			window, err := timeline.Navigate(ctx, in)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(window)
			if err != nil {
				return nil, fmt.Errorf("encode navigate result: %w", err)
			}
			return result, nil
		},
	)
}

// toolResultFromError maps adapter errors into stable tool error prefixes.
func toolResultFromError(err error) *mcp.CallToolResult {
	switch {
	case err == nil:
		return mcp.NewToolResultError("unknown error")
	case errors.Is(err, common.ErrInvalidRequest):
		return mcp.NewToolResultError("invalid_request: " + err.Error())
	case errors.Is(err, common.ErrNotFound):
		return mcp.NewToolResultError("not_found: " + err.Error())
	default:
		return mcp.NewToolResultError("internal_error: " + err.Error())
	}
}
