// Package common provides transport-agnostic server contracts used by HTTP and MCP adapters.
package common

import (
	"context"
	"errors"
)

// DateLayout is the calendar-date encoding used on the wire.
const DateLayout = "2006-01-02"

// GroupByProject and GroupByAssignee name the two rollups.
const (
	GroupByProject  = "project"
	GroupByAssignee = "assignee"
)

// ErrInvalidRequest reports malformed transport input.
var ErrInvalidRequest = errors.New("invalid request")

// ErrNotFound reports missing transport-visible resources.
var ErrNotFound = errors.New("not found")

// TimelineRequest captures one timeline query in wire form.
type TimelineRequest struct {
	Mode       string
	Anchor     string
	ProjectID  string
	AssigneeID string
}

// NavigateRequest captures one navigation step in wire form.
type NavigateRequest struct {
	Mode      string `json:"mode"`
	Anchor    string `json:"anchor,omitempty"`
	Direction int    `json:"direction,omitempty"`
	Today     bool   `json:"today,omitempty"`
}

// Task is one task with calendar dates.
type Task struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Start         string   `json:"start"`
	End           string   `json:"end"`
	Progress      int      `json:"progress"`
	Status        string   `json:"status"`
	IsMilestone   bool     `json:"is_milestone"`
	AssigneeID    string   `json:"assignee_id,omitempty"`
	ProjectID     string   `json:"project_id,omitempty"`
	ParentTaskID  string   `json:"parent_task_id,omitempty"`
	DependencyIDs []string `json:"dependency_ids"`
}

// Column is one grid column header.
type Column struct {
	Date           string `json:"date"`
	Label          string `json:"label"`
	IsWeekend      bool   `json:"is_weekend"`
	IsToday        bool   `json:"is_today"`
	IsFirstOfMonth bool   `json:"is_first_of_month"`
}

// MonthGroup is one month header spanning consecutive columns.
type MonthGroup struct {
	Label       string `json:"label"`
	Year        int    `json:"year"`
	Month       int    `json:"month"`
	ColumnCount int    `json:"column_count"`
}

// Bar is one positioned task.
type Bar struct {
	Task         Task    `json:"task"`
	LeftPercent  float64 `json:"left_percent"`
	WidthPercent float64 `json:"width_percent"`
	IsMilestone  bool    `json:"is_milestone"`
	Visible      bool    `json:"visible"`
	Overdue      bool    `json:"overdue"`
}

// Window is the navigable view state.
type Window struct {
	Mode       string `json:"mode"`
	Anchor     string `json:"anchor"`
	RangeStart string `json:"range_start"`
	RangeEnd   string `json:"range_end"`
	TotalDays  int    `json:"total_days"`
}

// Timeline is the full render model returned to clients.
type Timeline struct {
	Window       Window       `json:"window"`
	Columns      []Column     `json:"columns"`
	Months       []MonthGroup `json:"months"`
	Bars         []Bar        `json:"bars"`
	TodayPercent float64      `json:"today_percent"`
	TodayVisible bool         `json:"today_visible"`
}

// TaskNode is a top-level task with its subtasks.
type TaskNode struct {
	Task     Task   `json:"task"`
	Subtasks []Task `json:"subtasks"`
}

// Bucket is one rollup group.
type Bucket struct {
	Key               string     `json:"key"`
	Kind              string     `json:"kind"`
	Label             string     `json:"label"`
	Health            string     `json:"health,omitempty"`
	TotalCount        int        `json:"total_count"`
	DoneCount         int        `json:"done_count"`
	InProgressCount   int        `json:"in_progress_count"`
	CompletionPercent float64    `json:"completion_percent"`
	Tasks             []TaskNode `json:"tasks"`
}

// Dependencies is one task with its resolved dependencies.
type Dependencies struct {
	Task         Task   `json:"task"`
	Dependencies []Task `json:"dependencies"`
}

// TimelineService is the read surface shared by HTTP and MCP adapters.
type TimelineService interface {
	Timeline(context.Context, TimelineRequest) (Timeline, error)
	Groups(context.Context, string) ([]Bucket, error)
	TaskDependencies(context.Context, string) (Dependencies, error)
	Navigate(context.Context, NavigateRequest) (Window, error)
}

// ReadinessChecker reports whether backing storage is reachable.
type ReadinessChecker interface {
	Ping(context.Context) error
}
