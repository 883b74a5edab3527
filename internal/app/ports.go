package app

import (
	"context"

	"github.com/hylla/ritning/internal/domain"
)

// TaskFilter narrows ListTasks. Empty fields match everything.
type TaskFilter struct {
	ProjectID    string
	AssigneeID   string
	ParentTaskID string
}

// Repository represents repository data used by this package.
type Repository interface {
	CreateProject(context.Context, domain.Project) error
	UpdateProject(context.Context, domain.Project) error
	GetProject(context.Context, string) (domain.Project, error)
	ListProjects(context.Context) ([]domain.Project, error)

	CreatePerson(context.Context, domain.Person) error
	UpdatePerson(context.Context, domain.Person) error
	GetPerson(context.Context, string) (domain.Person, error)
	ListPeople(context.Context) ([]domain.Person, error)

	CreateTask(context.Context, domain.Task) error
	UpdateTask(context.Context, domain.Task) error
	GetTask(context.Context, string) (domain.Task, error)
	ListTasks(context.Context, TaskFilter) ([]domain.Task, error)
	DeleteTask(context.Context, string) error
}
