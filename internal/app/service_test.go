package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/hylla/ritning/internal/domain"
	"github.com/hylla/ritning/internal/timeline"
)

type fakeRepo struct {
	projects map[string]domain.Project
	people   map[string]domain.Person
	tasks    map[string]domain.Task
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		projects: map[string]domain.Project{},
		people:   map[string]domain.Person{},
		tasks:    map[string]domain.Task{},
	}
}

func (f *fakeRepo) CreateProject(_ context.Context, p domain.Project) error {
	f.projects[p.ID] = p
	return nil
}

func (f *fakeRepo) UpdateProject(_ context.Context, p domain.Project) error {
	if _, ok := f.projects[p.ID]; !ok {
		return ErrNotFound
	}
	f.projects[p.ID] = p
	return nil
}

func (f *fakeRepo) GetProject(_ context.Context, id string) (domain.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return domain.Project{}, ErrNotFound
	}
	return p, nil
}

func (f *fakeRepo) ListProjects(_ context.Context) ([]domain.Project, error) {
	out := make([]domain.Project, 0, len(f.projects))
	for _, p := range f.projects {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b domain.Project) int { return strings.Compare(a.Code, b.Code) })
	return out, nil
}

func (f *fakeRepo) CreatePerson(_ context.Context, p domain.Person) error {
	f.people[p.ID] = p
	return nil
}

func (f *fakeRepo) UpdatePerson(_ context.Context, p domain.Person) error {
	if _, ok := f.people[p.ID]; !ok {
		return ErrNotFound
	}
	f.people[p.ID] = p
	return nil
}

func (f *fakeRepo) GetPerson(_ context.Context, id string) (domain.Person, error) {
	p, ok := f.people[id]
	if !ok {
		return domain.Person{}, ErrNotFound
	}
	return p, nil
}

func (f *fakeRepo) ListPeople(_ context.Context) ([]domain.Person, error) {
	out := make([]domain.Person, 0, len(f.people))
	for _, p := range f.people {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b domain.Person) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (f *fakeRepo) CreateTask(_ context.Context, t domain.Task) error {
	f.tasks[t.ID] = t
	return nil
}

func (f *fakeRepo) UpdateTask(_ context.Context, t domain.Task) error {
	if _, ok := f.tasks[t.ID]; !ok {
		return ErrNotFound
	}
	f.tasks[t.ID] = t
	return nil
}

func (f *fakeRepo) GetTask(_ context.Context, id string) (domain.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return domain.Task{}, ErrNotFound
	}
	return t, nil
}

func (f *fakeRepo) ListTasks(_ context.Context, filter TaskFilter) ([]domain.Task, error) {
	out := make([]domain.Task, 0, len(f.tasks))
	for _, t := range f.tasks {
		if filter.ProjectID != "" && t.ProjectID != filter.ProjectID {
			continue
		}
		if filter.AssigneeID != "" && t.AssigneeID != filter.AssigneeID {
			continue
		}
		if filter.ParentTaskID != "" && t.ParentTaskID != filter.ParentTaskID {
			continue
		}
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b domain.Task) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

func (f *fakeRepo) DeleteTask(_ context.Context, id string) error {
	if _, ok := f.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(f.tasks, id)
	return nil
}

func newTestService(repo *fakeRepo, now time.Time) *Service {
	idCounter := 0
	return NewService(repo, func() string {
		idCounter++
		return fmt.Sprintf("id-%d", idCounter)
	}, func() time.Time {
		return now
	}, ServiceConfig{DefaultMode: timeline.ModeMonth})
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewServiceDefaults(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, nil, ServiceConfig{DefaultMode: "fortnight"})
	if svc.DefaultMode() != timeline.ModeMonth {
		t.Fatalf("expected month fallback, got %q", svc.DefaultMode())
	}
	if svc.Today().IsZero() {
		t.Fatal("expected real clock fallback")
	}

	svc = NewService(newFakeRepo(), nil, nil, ServiceConfig{DefaultMode: timeline.ModeWeek})
	if svc.DefaultWindow().Mode != timeline.ModeWeek {
		t.Fatalf("expected configured mode, got %q", svc.DefaultWindow().Mode)
	}
}

func TestCreateEntities(t *testing.T) {
	repo := newFakeRepo()
	now := time.Date(2024, 12, 18, 9, 30, 0, 0, time.UTC)
	svc := newTestService(repo, now)
	ctx := context.Background()

	project, err := svc.CreateProject(ctx, CreateProjectInput{Code: "ark-12", Name: "Harbour Library"})
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}
	if project.Code != "ARK-12" || project.Health != domain.HealthGood {
		t.Fatalf("unexpected project %#v", project)
	}

	person, err := svc.CreatePerson(ctx, "Ingrid")
	if err != nil {
		t.Fatalf("CreatePerson() error = %v", err)
	}

	task, err := svc.CreateTask(ctx, CreateTaskInput{
		Name:       "Schematic design",
		Start:      day(2024, 12, 10),
		End:        day(2024, 12, 30),
		ProjectID:  project.ID,
		AssigneeID: person.ID,
	})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if task.Status != domain.StatusNotStarted {
		t.Fatalf("expected default status, got %q", task.Status)
	}

	sub, err := svc.CreateTask(ctx, CreateTaskInput{
		Name:         "Massing study",
		Start:        day(2024, 12, 11),
		ParentTaskID: task.ID,
		ProjectID:    project.ID,
	})
	if err != nil {
		t.Fatalf("CreateTask(sub) error = %v", err)
	}
	if !sub.End.Equal(sub.Start) {
		t.Fatalf("expected single-day subtask, got %s..%s", sub.Start, sub.End)
	}

	if _, err := svc.CreateTask(ctx, CreateTaskInput{Name: "deep", Start: day(2024, 12, 11), ParentTaskID: sub.ID}); !errors.Is(err, ErrInvalidParent) {
		t.Fatalf("expected ErrInvalidParent, got %v", err)
	}
	if _, err := svc.CreateTask(ctx, CreateTaskInput{Name: "orphan", Start: day(2024, 12, 11), ParentTaskID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.CreateTask(ctx, CreateTaskInput{Name: "backwards", Start: day(2024, 12, 11), End: day(2024, 12, 1)}); !errors.Is(err, domain.ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
}

func TestUpdateTaskProgressAndDelete(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, time.Date(2024, 12, 18, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	parent, err := svc.CreateTask(ctx, CreateTaskInput{Name: "Permit set", Start: day(2024, 12, 2), End: day(2024, 12, 20), ProjectID: "p1"})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if _, err := svc.CreateTask(ctx, CreateTaskInput{Name: "Sheets", Start: day(2024, 12, 3), ParentTaskID: parent.ID, ProjectID: "p1"}); err != nil {
		t.Fatalf("CreateTask(sub) error = %v", err)
	}

	updated, err := svc.UpdateTaskProgress(ctx, parent.ID, 100, domain.StatusInProgress)
	if err != nil {
		t.Fatalf("UpdateTaskProgress() error = %v", err)
	}
	if updated.Status != domain.StatusDone || updated.Progress != 100 {
		t.Fatalf("unexpected progress update %#v", updated)
	}
	if _, err := svc.UpdateTaskProgress(ctx, parent.ID, 120, ""); !errors.Is(err, domain.ErrInvalidProgress) {
		t.Fatalf("expected ErrInvalidProgress, got %v", err)
	}

	if err := svc.DeleteTask(ctx, parent.ID); err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}
	if len(repo.tasks) != 0 {
		t.Fatalf("expected subtasks deleted with parent, got %#v", repo.tasks)
	}
	if err := svc.DeleteTask(ctx, parent.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteTaskRemovesSubtasksAcrossProjects(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, time.Date(2024, 12, 18, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	parent, err := svc.CreateTask(ctx, CreateTaskInput{Name: "Facade", Start: day(2024, 12, 2), End: day(2024, 12, 20), ProjectID: "p1"})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	for _, projectID := range []string{"", "p2"} {
		if _, err := svc.CreateTask(ctx, CreateTaskInput{Name: "Panel " + projectID, Start: day(2024, 12, 4), ParentTaskID: parent.ID, ProjectID: projectID}); err != nil {
			t.Fatalf("CreateTask(sub %q) error = %v", projectID, err)
		}
	}
	other, err := svc.CreateTask(ctx, CreateTaskInput{Name: "Roof", Start: day(2024, 12, 5), ProjectID: "p1"})
	if err != nil {
		t.Fatalf("CreateTask(other) error = %v", err)
	}

	if err := svc.DeleteTask(ctx, parent.ID); err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}
	if len(repo.tasks) != 1 {
		t.Fatalf("expected only the unrelated task to remain, got %#v", repo.tasks)
	}
	if _, ok := repo.tasks[other.ID]; !ok {
		t.Fatalf("expected %q kept, got %#v", other.ID, repo.tasks)
	}
}

func TestTimelineDefaultsAndFilters(t *testing.T) {
	repo := newFakeRepo()
	repo.tasks["t1"] = domain.Task{ID: "t1", Name: "Slab", Start: day(2024, 12, 10), End: day(2024, 12, 30), ProjectID: "p1", AssigneeID: "u1"}
	repo.tasks["t2"] = domain.Task{ID: "t2", Name: "Roof", Start: day(2025, 1, 5), End: day(2025, 1, 9), ProjectID: "p2", AssigneeID: "u1"}
	svc := newTestService(repo, time.Date(2024, 12, 18, 15, 0, 0, 0, time.UTC))
	ctx := context.Background()

	model, err := svc.Timeline(ctx, TimelineRequest{})
	if err != nil {
		t.Fatalf("Timeline() error = %v", err)
	}
	if model.Window.Mode != timeline.ModeMonth || !model.Range.Start.Equal(day(2024, 12, 1)) {
		t.Fatalf("unexpected default window %#v", model.Window)
	}
	if len(model.Bars) != 2 || len(model.Columns) != 62 {
		t.Fatalf("unexpected model bars=%d columns=%d", len(model.Bars), len(model.Columns))
	}

	model, err = svc.Timeline(ctx, TimelineRequest{Mode: timeline.ModeWeek, Anchor: day(2025, 1, 6), ProjectID: "p2"})
	if err != nil {
		t.Fatalf("Timeline(filtered) error = %v", err)
	}
	if len(model.Bars) != 1 || model.Bars[0].Task.ID != "t2" {
		t.Fatalf("expected filtered bars, got %#v", model.Bars)
	}

	if _, err := svc.Timeline(ctx, TimelineRequest{Mode: "year"}); !errors.Is(err, timeline.ErrInvalidViewMode) {
		t.Fatalf("expected ErrInvalidViewMode, got %v", err)
	}
}

func TestGroupingsAndDependencies(t *testing.T) {
	repo := newFakeRepo()
	repo.projects["p1"] = domain.Project{ID: "p1", Code: "A-1", Name: "Alpha", Health: domain.HealthWarning}
	repo.people["u1"] = domain.Person{ID: "u1", Name: "Ingrid"}
	repo.tasks["a"] = domain.Task{ID: "a", Name: "Survey", Start: day(2024, 12, 1), End: day(2024, 12, 2), ProjectID: "p1", Status: domain.StatusDone}
	repo.tasks["b"] = domain.Task{ID: "b", Name: "Design", Start: day(2024, 12, 3), End: day(2024, 12, 9), ProjectID: "p1", AssigneeID: "u1", DependencyIDs: []string{"a", "x", "ghost"}}
	repo.tasks["x"] = domain.Task{ID: "x", Name: "Other", Start: day(2024, 12, 3), End: day(2024, 12, 9), ProjectID: "p2"}
	svc := newTestService(repo, time.Date(2024, 12, 18, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	byProject, err := svc.GroupByProject(ctx)
	if err != nil {
		t.Fatalf("GroupByProject() error = %v", err)
	}
	if len(byProject) != 2 || byProject[0].Key.ID != "p1" || byProject[0].Health != domain.HealthWarning || byProject[1].Label != "p2" {
		t.Fatalf("unexpected project buckets %#v", byProject)
	}

	byAssignee, err := svc.GroupByAssignee(ctx)
	if err != nil {
		t.Fatalf("GroupByAssignee() error = %v", err)
	}
	if len(byAssignee) != 2 || byAssignee[0].Label != "Ingrid" || byAssignee[1].Key.Kind != timeline.GroupUnassigned {
		t.Fatalf("unexpected assignee buckets %#v", byAssignee)
	}

	task, deps, err := svc.TaskDependencies(ctx, "b")
	if err != nil {
		t.Fatalf("TaskDependencies() error = %v", err)
	}
	if task.ID != "b" || len(deps) != 1 || deps[0].ID != "a" {
		t.Fatalf("unexpected dependencies %#v", deps)
	}
	if _, _, err := svc.TaskDependencies(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNavigate(t *testing.T) {
	svc := newTestService(newFakeRepo(), time.Date(2024, 12, 18, 9, 0, 0, 0, time.UTC))

	next, err := svc.Navigate(NavigateRequest{Mode: timeline.ModeMonth, Anchor: day(2024, 12, 18), Direction: timeline.Forward})
	if err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}
	if !next.Anchor.Equal(day(2025, 2, 18)) {
		t.Fatalf("unexpected anchor %s", next.Anchor)
	}

	back, err := svc.Navigate(NavigateRequest{Mode: timeline.ModeWeek, Anchor: day(2030, 1, 1), Today: true})
	if err != nil {
		t.Fatalf("Navigate(today) error = %v", err)
	}
	if !back.Anchor.Equal(day(2024, 12, 18)) || back.Mode != timeline.ModeWeek {
		t.Fatalf("unexpected today window %#v", back)
	}

	if _, err := svc.Navigate(NavigateRequest{Direction: 0}); !errors.Is(err, timeline.ErrInvalidDirection) {
		t.Fatalf("expected ErrInvalidDirection, got %v", err)
	}
}

func TestSetProjectHealth(t *testing.T) {
	repo := newFakeRepo()
	repo.projects["p1"] = domain.Project{ID: "p1", Code: "A-1", Name: "Alpha", Health: domain.HealthGood}
	svc := newTestService(repo, time.Date(2024, 12, 18, 9, 0, 0, 0, time.UTC))

	project, err := svc.SetProjectHealth(context.Background(), "p1", domain.HealthCritical)
	if err != nil {
		t.Fatalf("SetProjectHealth() error = %v", err)
	}
	if repo.projects["p1"].Health != domain.HealthCritical || project.Health != domain.HealthCritical {
		t.Fatalf("expected stored critical health, got %#v", repo.projects["p1"])
	}
	if _, err := svc.SetProjectHealth(context.Background(), "p1", "meh"); !errors.Is(err, domain.ErrInvalidHealth) {
		t.Fatalf("expected ErrInvalidHealth, got %v", err)
	}
}
