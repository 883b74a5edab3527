package app

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/hylla/ritning/internal/domain"
	"github.com/hylla/ritning/internal/timeline"
)

// ServiceConfig holds configuration for service.
type ServiceConfig struct {
	DefaultMode timeline.ViewMode
}

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// Service represents service data used by this package.
type Service struct {
	repo        Repository
	idGen       IDGenerator
	clock       Clock
	defaultMode timeline.ViewMode
}

// NewService constructs a new value for this package.
func NewService(repo Repository, idGen IDGenerator, clock Clock, cfg ServiceConfig) *Service {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	if cfg.DefaultMode.Validate() != nil {
		cfg.DefaultMode = timeline.ModeMonth
	}

	return &Service{
		repo:        repo,
		idGen:       idGen,
		clock:       clock,
		defaultMode: cfg.DefaultMode,
	}
}

// Today returns the current calendar date.
func (s *Service) Today() time.Time {
	return domain.DateOf(s.clock())
}

// DefaultMode returns the configured startup view mode.
func (s *Service) DefaultMode() timeline.ViewMode {
	return s.defaultMode
}

// DefaultWindow returns the startup window: the configured mode anchored on today.
func (s *Service) DefaultWindow() timeline.ViewWindow {
	return timeline.ViewWindow{Mode: s.defaultMode, Anchor: s.Today()}
}

// CreateProjectInput holds input values for create project operations.
type CreateProjectInput struct {
	Code   string
	Name   string
	Health domain.ProjectHealth
}

// CreateProject creates project.
func (s *Service) CreateProject(ctx context.Context, in CreateProjectInput) (domain.Project, error) {
	project, err := domain.NewProject(s.idGen(), in.Code, in.Name, in.Health, s.clock())
	if err != nil {
		return domain.Project{}, err
	}
	if err := s.repo.CreateProject(ctx, project); err != nil {
		return domain.Project{}, err
	}
	return project, nil
}

// SetProjectHealth stores the health value computed outside this module.
func (s *Service) SetProjectHealth(ctx context.Context, projectID string, health domain.ProjectHealth) (domain.Project, error) {
	project, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		return domain.Project{}, err
	}
	if err := project.SetHealth(health, s.clock()); err != nil {
		return domain.Project{}, err
	}
	if err := s.repo.UpdateProject(ctx, project); err != nil {
		return domain.Project{}, err
	}
	return project, nil
}

// CreatePerson creates person.
func (s *Service) CreatePerson(ctx context.Context, name string) (domain.Person, error) {
	person, err := domain.NewPerson(s.idGen(), name, s.clock())
	if err != nil {
		return domain.Person{}, err
	}
	if err := s.repo.CreatePerson(ctx, person); err != nil {
		return domain.Person{}, err
	}
	return person, nil
}

// CreateTaskInput holds input values for create task operations.
type CreateTaskInput struct {
	Name          string
	Start         time.Time
	End           time.Time
	Progress      int
	Status        domain.TaskStatus
	IsMilestone   bool
	AssigneeID    string
	ProjectID     string
	ParentTaskID  string
	DependencyIDs []string
}

// CreateTask creates task.
//
// Subtasks nest one level deep and inherit nothing from the parent.
func (s *Service) CreateTask(ctx context.Context, in CreateTaskInput) (domain.Task, error) {
	parentID := strings.TrimSpace(in.ParentTaskID)
	if parentID != "" {
		parent, err := s.repo.GetTask(ctx, parentID)
		if err != nil {
			return domain.Task{}, fmt.Errorf("load parent task %q: %w", parentID, err)
		}
		if !parent.IsTopLevel() {
			return domain.Task{}, fmt.Errorf("%w: %q is itself a subtask", ErrInvalidParent, parentID)
		}
	}

	task, err := domain.NewTask(domain.TaskInput{
		ID:            s.idGen(),
		Name:          in.Name,
		Start:         in.Start,
		End:           in.End,
		Progress:      in.Progress,
		Status:        in.Status,
		IsMilestone:   in.IsMilestone,
		AssigneeID:    in.AssigneeID,
		ProjectID:     in.ProjectID,
		ParentTaskID:  parentID,
		DependencyIDs: in.DependencyIDs,
	}, s.clock())
	if err != nil {
		return domain.Task{}, err
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// UpdateTaskProgress records a progress report for one task.
func (s *Service) UpdateTaskProgress(ctx context.Context, taskID string, progress int, status domain.TaskStatus) (domain.Task, error) {
	task, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return domain.Task{}, err
	}
	if err := task.SetProgress(progress, status, s.clock()); err != nil {
		return domain.Task{}, err
	}
	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// DeleteTask deletes a task together with its subtasks, whatever project they carry.
func (s *Service) DeleteTask(ctx context.Context, taskID string) error {
	task, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	children, err := s.repo.ListTasks(ctx, TaskFilter{ParentTaskID: task.ID})
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := s.repo.DeleteTask(ctx, child.ID); err != nil {
			return err
		}
	}
	return s.repo.DeleteTask(ctx, task.ID)
}

// ListProjects lists projects ordered by code.
func (s *Service) ListProjects(ctx context.Context) ([]domain.Project, error) {
	return s.repo.ListProjects(ctx)
}

// ListPeople lists people ordered by name.
func (s *Service) ListPeople(ctx context.Context) ([]domain.Person, error) {
	return s.repo.ListPeople(ctx)
}

// ListTasks lists tasks matching the filter.
func (s *Service) ListTasks(ctx context.Context, filter TaskFilter) ([]domain.Task, error) {
	filter.ProjectID = strings.TrimSpace(filter.ProjectID)
	filter.AssigneeID = strings.TrimSpace(filter.AssigneeID)
	return s.repo.ListTasks(ctx, filter)
}

// TimelineRequest holds input values for timeline operations.
type TimelineRequest struct {
	Mode       timeline.ViewMode
	Anchor     time.Time
	ProjectID  string
	AssigneeID string
}

// Timeline computes the Gantt layout for the requested window.
//
// An empty mode falls back to the configured default and a zero anchor to today.
func (s *Service) Timeline(ctx context.Context, req TimelineRequest) (timeline.RenderModel, error) {
	window, err := s.resolveWindow(req.Mode, req.Anchor)
	if err != nil {
		return timeline.RenderModel{}, err
	}
	tasks, err := s.ListTasks(ctx, TaskFilter{ProjectID: req.ProjectID, AssigneeID: req.AssigneeID})
	if err != nil {
		return timeline.RenderModel{}, err
	}
	return timeline.Compute(window, tasks, s.Today())
}

// GroupByProject returns the project rollup over every stored task.
func (s *Service) GroupByProject(ctx context.Context) ([]timeline.Bucket, error) {
	tasks, err := s.repo.ListTasks(ctx, TaskFilter{})
	if err != nil {
		return nil, err
	}
	projects, err := s.repo.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	return timeline.GroupByProject(tasks, projects), nil
}

// GroupByAssignee returns the assignee rollup over every stored task.
func (s *Service) GroupByAssignee(ctx context.Context) ([]timeline.Bucket, error) {
	tasks, err := s.repo.ListTasks(ctx, TaskFilter{})
	if err != nil {
		return nil, err
	}
	people, err := s.repo.ListPeople(ctx)
	if err != nil {
		return nil, err
	}
	return timeline.GroupByAssignee(tasks, people), nil
}

// TaskDependencies returns the resolved same-project dependencies of one task.
func (s *Service) TaskDependencies(ctx context.Context, taskID string) (domain.Task, []domain.Task, error) {
	task, err := s.repo.GetTask(ctx, strings.TrimSpace(taskID))
	if err != nil {
		return domain.Task{}, nil, err
	}
	tasks, err := s.repo.ListTasks(ctx, TaskFilter{ProjectID: task.ProjectID})
	if err != nil {
		return domain.Task{}, nil, err
	}
	return task, timeline.ResolveDependencies(task, tasks), nil
}

// NavigateRequest holds input values for navigate operations.
type NavigateRequest struct {
	Mode      timeline.ViewMode
	Anchor    time.Time
	Direction timeline.Direction
	Today     bool
}

// Navigate moves a window one step or back to today.
func (s *Service) Navigate(req NavigateRequest) (timeline.ViewWindow, error) {
	window, err := s.resolveWindow(req.Mode, req.Anchor)
	if err != nil {
		return timeline.ViewWindow{}, err
	}
	if req.Today {
		return timeline.JumpToToday(window, s.Today())
	}
	return timeline.Navigate(window, req.Direction)
}

// resolveWindow applies defaults and validates the requested window.
func (s *Service) resolveWindow(mode timeline.ViewMode, anchor time.Time) (timeline.ViewWindow, error) {
	if strings.TrimSpace(string(mode)) == "" {
		mode = s.defaultMode
	}
	if anchor.IsZero() {
		anchor = s.Today()
	}
	return timeline.NewViewWindow(mode, anchor)
}

// taskSeedOrder sorts top-level tasks ahead of subtasks so parents exist first.
func taskSeedOrder(tasks []domain.Task) []domain.Task {
	out := slices.Clone(tasks)
	slices.SortStableFunc(out, func(a, b domain.Task) int {
		switch {
		case a.IsTopLevel() == b.IsTopLevel():
			return strings.Compare(a.ID, b.ID)
		case a.IsTopLevel():
			return -1
		default:
			return 1
		}
	})
	return out
}
