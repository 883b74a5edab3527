package common

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hylla/ritning/internal/app"
	"github.com/hylla/ritning/internal/domain"
	"github.com/hylla/ritning/internal/timeline"
)

// AppServiceAdapter maps transport contracts onto app.Service timeline APIs.
type AppServiceAdapter struct {
	service *app.Service
}

// NewAppServiceAdapter builds one common adapter over an app.Service instance.
func NewAppServiceAdapter(service *app.Service) *AppServiceAdapter {
	return &AppServiceAdapter{service: service}
}

// Timeline parses the wire request and returns the computed render model.
func (a *AppServiceAdapter) Timeline(ctx context.Context, in TimelineRequest) (Timeline, error) {
	if a == nil || a.service == nil {
		return Timeline{}, fmt.Errorf("app service adapter is not configured: %w", ErrInvalidRequest)
	}
	mode, err := parseMode(in.Mode)
	if err != nil {
		return Timeline{}, err
	}
	anchor, err := parseDate("anchor", in.Anchor)
	if err != nil {
		return Timeline{}, err
	}

	model, err := a.service.Timeline(ctx, app.TimelineRequest{
		Mode:       mode,
		Anchor:     anchor,
		ProjectID:  strings.TrimSpace(in.ProjectID),
		AssigneeID: strings.TrimSpace(in.AssigneeID),
	})
	if err != nil {
		return Timeline{}, mapAppError("timeline", err)
	}
	return MapRenderModel(model), nil
}

// Groups returns the project or assignee rollup.
func (a *AppServiceAdapter) Groups(ctx context.Context, by string) ([]Bucket, error) {
	if a == nil || a.service == nil {
		return nil, fmt.Errorf("app service adapter is not configured: %w", ErrInvalidRequest)
	}
	var (
		buckets []timeline.Bucket
		err     error
	)
	switch strings.ToLower(strings.TrimSpace(by)) {
	case "", GroupByProject:
		buckets, err = a.service.GroupByProject(ctx)
	case GroupByAssignee:
		buckets, err = a.service.GroupByAssignee(ctx)
	default:
		return nil, fmt.Errorf("group by %q: %w", by, ErrInvalidRequest)
	}
	if err != nil {
		return nil, mapAppError("groups", err)
	}
	return MapBuckets(buckets), nil
}

// TaskDependencies returns one task with its resolved dependencies.
func (a *AppServiceAdapter) TaskDependencies(ctx context.Context, taskID string) (Dependencies, error) {
	if a == nil || a.service == nil {
		return Dependencies{}, fmt.Errorf("app service adapter is not configured: %w", ErrInvalidRequest)
	}
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return Dependencies{}, fmt.Errorf("task id is required: %w", ErrInvalidRequest)
	}
	task, deps, err := a.service.TaskDependencies(ctx, taskID)
	if err != nil {
		return Dependencies{}, mapAppError("task dependencies", err)
	}
	return Dependencies{Task: MapTask(task), Dependencies: MapTasks(deps)}, nil
}

// Navigate moves one window a step or back to today.
func (a *AppServiceAdapter) Navigate(_ context.Context, in NavigateRequest) (Window, error) {
	if a == nil || a.service == nil {
		return Window{}, fmt.Errorf("app service adapter is not configured: %w", ErrInvalidRequest)
	}
	mode, err := parseMode(in.Mode)
	if err != nil {
		return Window{}, err
	}
	anchor, err := parseDate("anchor", in.Anchor)
	if err != nil {
		return Window{}, err
	}
	window, err := a.service.Navigate(app.NavigateRequest{
		Mode:      mode,
		Anchor:    anchor,
		Direction: timeline.Direction(in.Direction),
		Today:     in.Today,
	})
	if err != nil {
		return Window{}, mapAppError("navigate", err)
	}
	return MapWindow(window)
}

// parseMode allows an empty mode so the service default applies.
func parseMode(raw string) (timeline.ViewMode, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	mode, err := timeline.ParseViewMode(raw)
	if err != nil {
		return "", fmt.Errorf("mode: %w", errors.Join(ErrInvalidRequest, err))
	}
	return mode, nil
}

// parseDate parses an optional YYYY-MM-DD value.
func parseDate(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be YYYY-MM-DD: %w", field, ErrInvalidRequest)
	}
	return parsed, nil
}

// mapAppError maps app and engine errors onto transport sentinels.
func mapAppError(operation string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, app.ErrNotFound):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrNotFound, err))
	case errors.Is(err, timeline.ErrInvalidViewMode),
		errors.Is(err, timeline.ErrInvalidDirection),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidDateRange):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrInvalidRequest, err))
	default:
		return fmt.Errorf("%s: %w", operation, err)
	}
}
