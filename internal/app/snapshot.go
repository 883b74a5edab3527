package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hylla/ritning/internal/domain"
)

// SnapshotVersion defines a package constant value.
const SnapshotVersion = "ritning.snapshot.v1"

// SnapshotDateLayout is the calendar-date encoding used for task dates.
const SnapshotDateLayout = "2006-01-02"

// Snapshot represents snapshot data used by this package.
type Snapshot struct {
	Version    string            `json:"version" yaml:"version"`
	ExportedAt time.Time         `json:"exported_at" yaml:"exported_at"`
	Projects   []SnapshotProject `json:"projects" yaml:"projects"`
	People     []SnapshotPerson  `json:"people" yaml:"people"`
	Tasks      []SnapshotTask    `json:"tasks" yaml:"tasks"`
}

// SnapshotProject represents snapshot project data used by this package.
type SnapshotProject struct {
	ID        string               `json:"id" yaml:"id"`
	Code      string               `json:"code" yaml:"code"`
	Name      string               `json:"name" yaml:"name"`
	Health    domain.ProjectHealth `json:"health,omitempty" yaml:"health,omitempty"`
	CreatedAt time.Time            `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time            `json:"updated_at" yaml:"updated_at"`
}

// SnapshotPerson represents snapshot person data used by this package.
type SnapshotPerson struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// SnapshotTask represents snapshot task data used by this package.
//
// Start and End are calendar dates in SnapshotDateLayout.
type SnapshotTask struct {
	ID            string            `json:"id" yaml:"id"`
	Name          string            `json:"name" yaml:"name"`
	Start         string            `json:"start" yaml:"start"`
	End           string            `json:"end" yaml:"end"`
	Progress      int               `json:"progress" yaml:"progress"`
	Status        domain.TaskStatus `json:"status" yaml:"status"`
	IsMilestone   bool              `json:"is_milestone,omitempty" yaml:"is_milestone,omitempty"`
	AssigneeID    string            `json:"assignee_id,omitempty" yaml:"assignee_id,omitempty"`
	ProjectID     string            `json:"project_id,omitempty" yaml:"project_id,omitempty"`
	ParentTaskID  string            `json:"parent_task_id,omitempty" yaml:"parent_task_id,omitempty"`
	DependencyIDs []string          `json:"dependency_ids,omitempty" yaml:"dependency_ids,omitempty"`
	CreatedAt     time.Time         `json:"created_at" yaml:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at" yaml:"updated_at"`
}

// ExportSnapshot exports every project, person and task.
func (s *Service) ExportSnapshot(ctx context.Context) (Snapshot, error) {
	projects, err := s.repo.ListProjects(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	people, err := s.repo.ListPeople(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	tasks, err := s.repo.ListTasks(ctx, TaskFilter{})
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: s.clock().UTC(),
		Projects:   make([]SnapshotProject, 0, len(projects)),
		People:     make([]SnapshotPerson, 0, len(people)),
		Tasks:      make([]SnapshotTask, 0, len(tasks)),
	}
	for _, project := range projects {
		snap.Projects = append(snap.Projects, snapshotProjectFromDomain(project))
	}
	for _, person := range people {
		snap.People = append(snap.People, snapshotPersonFromDomain(person))
	}
	for _, task := range tasks {
		snap.Tasks = append(snap.Tasks, snapshotTaskFromDomain(task))
	}
	snap.sort()
	return snap, nil
}

// ImportSnapshot validates every record and upserts it.
//
// Nothing is written when any record fails validation.
func (s *Service) ImportSnapshot(ctx context.Context, snap Snapshot) error {
	projects, people, tasks, err := snap.toDomain()
	if err != nil {
		return err
	}

	for _, project := range projects {
		if err := upsert(ctx, project.ID, project, s.repo.GetProject, s.repo.CreateProject, s.repo.UpdateProject); err != nil {
			return fmt.Errorf("import project %q: %w", project.ID, err)
		}
	}
	for _, person := range people {
		if err := upsert(ctx, person.ID, person, s.repo.GetPerson, s.repo.CreatePerson, s.repo.UpdatePerson); err != nil {
			return fmt.Errorf("import person %q: %w", person.ID, err)
		}
	}
	for _, task := range taskSeedOrder(tasks) {
		if err := upsert(ctx, task.ID, task, s.repo.GetTask, s.repo.CreateTask, s.repo.UpdateTask); err != nil {
			return fmt.Errorf("import task %q: %w", task.ID, err)
		}
	}
	return nil
}

// upsert updates an existing row or creates a missing one.
func upsert[T any](
	ctx context.Context,
	id string,
	value T,
	get func(context.Context, string) (T, error),
	create func(context.Context, T) error,
	update func(context.Context, T) error,
) error {
	if _, err := get(ctx, id); err == nil {
		return update(ctx, value)
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	return create(ctx, value)
}

// Validate checks versions, required fields and subtask parents.
//
// Unknown project and assignee ids are kept; the rollups bucket them by id.
func (s Snapshot) Validate() error {
	_, _, _, err := s.toDomain()
	return err
}

// toDomain converts every record through the domain constructors.
func (s Snapshot) toDomain() ([]domain.Project, []domain.Person, []domain.Task, error) {
	if s.Version != "" && s.Version != SnapshotVersion {
		return nil, nil, nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, s.Version)
	}

	projects := make([]domain.Project, 0, len(s.Projects))
	projectIDs := map[string]struct{}{}
	for i, p := range s.Projects {
		project, err := domain.NewProject(p.ID, p.Code, p.Name, p.Health, p.CreatedAt)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("projects[%d]: %w", i, err)
		}
		if _, exists := projectIDs[project.ID]; exists {
			return nil, nil, nil, fmt.Errorf("duplicate project id: %q", project.ID)
		}
		projectIDs[project.ID] = struct{}{}
		project.UpdatedAt = pickUpdatedAt(p.CreatedAt, p.UpdatedAt)
		projects = append(projects, project)
	}

	people := make([]domain.Person, 0, len(s.People))
	personIDs := map[string]struct{}{}
	for i, p := range s.People {
		person, err := domain.NewPerson(p.ID, p.Name, p.CreatedAt)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("people[%d]: %w", i, err)
		}
		if _, exists := personIDs[person.ID]; exists {
			return nil, nil, nil, fmt.Errorf("duplicate person id: %q", person.ID)
		}
		personIDs[person.ID] = struct{}{}
		person.UpdatedAt = pickUpdatedAt(p.CreatedAt, p.UpdatedAt)
		people = append(people, person)
	}

	tasks := make([]domain.Task, 0, len(s.Tasks))
	taskIDs := map[string]struct{}{}
	for i, t := range s.Tasks {
		task, err := t.toDomain()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("tasks[%d]: %w", i, err)
		}
		if _, exists := taskIDs[task.ID]; exists {
			return nil, nil, nil, fmt.Errorf("duplicate task id: %q", task.ID)
		}
		taskIDs[task.ID] = struct{}{}
		tasks = append(tasks, task)
	}

	topLevel := map[string]struct{}{}
	for _, task := range tasks {
		if task.IsTopLevel() {
			topLevel[task.ID] = struct{}{}
		}
	}
	for i, task := range tasks {
		if task.ParentTaskID != "" {
			if _, ok := topLevel[task.ParentTaskID]; !ok {
				return nil, nil, nil, fmt.Errorf("%w: tasks[%d] parent %q", ErrInvalidParent, i, task.ParentTaskID)
			}
		}
	}
	return projects, people, tasks, nil
}

// sort orders records by id so exports diff cleanly.
func (s *Snapshot) sort() {
	sort.Slice(s.Projects, func(i, j int) bool {
		return s.Projects[i].ID < s.Projects[j].ID
	})
	sort.Slice(s.People, func(i, j int) bool {
		return s.People[i].ID < s.People[j].ID
	})
	sort.Slice(s.Tasks, func(i, j int) bool {
		a := s.Tasks[i]
		b := s.Tasks[j]
		if a.ProjectID == b.ProjectID {
			return a.ID < b.ID
		}
		return a.ProjectID < b.ProjectID
	})
}

func snapshotProjectFromDomain(p domain.Project) SnapshotProject {
	return SnapshotProject{
		ID:        p.ID,
		Code:      p.Code,
		Name:      p.Name,
		Health:    p.Health,
		CreatedAt: p.CreatedAt.UTC(),
		UpdatedAt: p.UpdatedAt.UTC(),
	}
}

func snapshotPersonFromDomain(p domain.Person) SnapshotPerson {
	return SnapshotPerson{
		ID:        p.ID,
		Name:      p.Name,
		CreatedAt: p.CreatedAt.UTC(),
		UpdatedAt: p.UpdatedAt.UTC(),
	}
}

func snapshotTaskFromDomain(t domain.Task) SnapshotTask {
	return SnapshotTask{
		ID:            t.ID,
		Name:          t.Name,
		Start:         t.Start.Format(SnapshotDateLayout),
		End:           t.End.Format(SnapshotDateLayout),
		Progress:      t.Progress,
		Status:        t.Status,
		IsMilestone:   t.IsMilestone,
		AssigneeID:    t.AssigneeID,
		ProjectID:     t.ProjectID,
		ParentTaskID:  t.ParentTaskID,
		DependencyIDs: append([]string(nil), t.DependencyIDs...),
		CreatedAt:     t.CreatedAt.UTC(),
		UpdatedAt:     t.UpdatedAt.UTC(),
	}
}

func (t SnapshotTask) toDomain() (domain.Task, error) {
	start, err := parseSnapshotDate(t.Start)
	if err != nil {
		return domain.Task{}, fmt.Errorf("start: %w", err)
	}
	end, err := parseSnapshotDate(t.End)
	if err != nil {
		return domain.Task{}, fmt.Errorf("end: %w", err)
	}
	task, err := domain.NewTask(domain.TaskInput{
		ID:            t.ID,
		Name:          t.Name,
		Start:         start,
		End:           end,
		Progress:      t.Progress,
		Status:        t.Status,
		IsMilestone:   t.IsMilestone,
		AssigneeID:    t.AssigneeID,
		ProjectID:     t.ProjectID,
		ParentTaskID:  t.ParentTaskID,
		DependencyIDs: t.DependencyIDs,
	}, t.CreatedAt)
	if err != nil {
		return domain.Task{}, err
	}
	task.UpdatedAt = pickUpdatedAt(t.CreatedAt, t.UpdatedAt)
	return task, nil
}

// parseSnapshotDate accepts an empty value as "no date".
func parseSnapshotDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(SnapshotDateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidDateRange, raw)
	}
	return parsed, nil
}

func pickUpdatedAt(createdAt, updatedAt time.Time) time.Time {
	if updatedAt.IsZero() {
		return createdAt.UTC()
	}
	return updatedAt.UTC()
}
