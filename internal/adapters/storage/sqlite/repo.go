package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hylla/ritning/internal/app"
	"github.com/hylla/ritning/internal/domain"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// dateLayout stores task dates as calendar days.
const dateLayout = "2006-01-02"

// Repository represents repository data used by this package.
type Repository struct {
	db *sql.DB
}

// Open opens the requested operation.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// OpenInMemory opens a private in-memory database.
//
// Each call gets its own named shared-cache database, so connections in one
// pool see the same data while separate repositories stay isolated.
func OpenInMemory() (*Repository, error) {
	dsn := fmt.Sprintf("file:ritning-%s?mode=memory&cache=shared", uuid.NewString())
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the requested operation.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Ping reports whether the database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// migrate handles migrate.
func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			code TEXT NOT NULL,
			name TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS people (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			start_date TEXT NOT NULL,
			end_date TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'not_started',
			assignee_id TEXT NOT NULL DEFAULT '',
			project_id TEXT NOT NULL DEFAULT '',
			parent_task_id TEXT NOT NULL DEFAULT '',
			dependency_ids_json TEXT NOT NULL DEFAULT '[]',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}

	// Columns added after the first schema; older databases pick them up here.
	alterStatements := []string{
		`ALTER TABLE projects ADD COLUMN health TEXT NOT NULL DEFAULT 'good'`,
		`ALTER TABLE tasks ADD COLUMN progress INTEGER NOT NULL DEFAULT 0`,
		`ALTER TABLE tasks ADD COLUMN is_milestone INTEGER NOT NULL DEFAULT 0`,
	}
	for _, stmt := range alterStatements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil && !isDuplicateColumnErr(err) {
			return fmt.Errorf("migrate sqlite columns: %w", err)
		}
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id, start_date)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_assignee ON tasks(assignee_id)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_task_id)`,
	}
	for _, stmt := range indexes {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite index: %w", err)
		}
	}
	return nil
}

// CreateProject creates project.
func (r *Repository) CreateProject(ctx context.Context, p domain.Project) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO projects(id, code, name, health, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.ID, p.Code, p.Name, string(p.Health), ts(p.CreatedAt), ts(p.UpdatedAt))
	return err
}

// UpdateProject updates state for the requested operation.
func (r *Repository) UpdateProject(ctx context.Context, p domain.Project) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE projects
		SET code = ?, name = ?, health = ?, updated_at = ?
		WHERE id = ?
	`, p.Code, p.Name, string(p.Health), ts(p.UpdatedAt), p.ID)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// GetProject returns project.
func (r *Repository) GetProject(ctx context.Context, id string) (domain.Project, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, code, name, health, created_at, updated_at
		FROM projects
		WHERE id = ?
	`, id)
	return scanProject(row)
}

// ListProjects lists projects ordered by code.
func (r *Repository) ListProjects(ctx context.Context) ([]domain.Project, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, code, name, health, created_at, updated_at
		FROM projects
		ORDER BY code ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Project{}
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, project)
	}
	return out, rows.Err()
}

// CreatePerson creates person.
func (r *Repository) CreatePerson(ctx context.Context, p domain.Person) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO people(id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, p.ID, p.Name, ts(p.CreatedAt), ts(p.UpdatedAt))
	return err
}

// UpdatePerson updates state for the requested operation.
func (r *Repository) UpdatePerson(ctx context.Context, p domain.Person) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE people
		SET name = ?, updated_at = ?
		WHERE id = ?
	`, p.Name, ts(p.UpdatedAt), p.ID)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// GetPerson returns person.
func (r *Repository) GetPerson(ctx context.Context, id string) (domain.Person, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, created_at, updated_at
		FROM people
		WHERE id = ?
	`, id)
	return scanPerson(row)
}

// ListPeople lists people ordered by name.
func (r *Repository) ListPeople(ctx context.Context) ([]domain.Person, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, created_at, updated_at
		FROM people
		ORDER BY name COLLATE NOCASE ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Person{}
	for rows.Next() {
		person, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, person)
	}
	return out, rows.Err()
}

// taskColumns lists task columns in scanTask order.
const taskColumns = `id, name, start_date, end_date, progress, status, is_milestone, assignee_id, project_id, parent_task_id, dependency_ids_json, created_at, updated_at`

// CreateTask creates task.
func (r *Repository) CreateTask(ctx context.Context, t domain.Task) error {
	depsJSON, err := encodeDependencyIDs(t.DependencyIDs)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO tasks(`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		t.ID,
		t.Name,
		date(t.Start),
		date(t.End),
		t.Progress,
		string(t.Status),
		boolToInt(t.IsMilestone),
		t.AssigneeID,
		t.ProjectID,
		t.ParentTaskID,
		depsJSON,
		ts(t.CreatedAt),
		ts(t.UpdatedAt),
	)
	return err
}

// UpdateTask updates state for the requested operation.
func (r *Repository) UpdateTask(ctx context.Context, t domain.Task) error {
	depsJSON, err := encodeDependencyIDs(t.DependencyIDs)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET name = ?, start_date = ?, end_date = ?, progress = ?, status = ?, is_milestone = ?,
			assignee_id = ?, project_id = ?, parent_task_id = ?, dependency_ids_json = ?, updated_at = ?
		WHERE id = ?
	`,
		t.Name,
		date(t.Start),
		date(t.End),
		t.Progress,
		string(t.Status),
		boolToInt(t.IsMilestone),
		t.AssigneeID,
		t.ProjectID,
		t.ParentTaskID,
		depsJSON,
		ts(t.UpdatedAt),
		t.ID,
	)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// GetTask returns task.
func (r *Repository) GetTask(ctx context.Context, id string) (domain.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	return scanTask(row)
}

// ListTasks lists tasks matching the filter ordered by start date.
func (r *Repository) ListTasks(ctx context.Context, filter app.TaskFilter) ([]domain.Task, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.ProjectID != "" {
		clauses = append(clauses, `project_id = ?`)
		args = append(args, filter.ProjectID)
	}
	if filter.AssigneeID != "" {
		clauses = append(clauses, `assignee_id = ?`)
		args = append(args, filter.AssigneeID)
	}
	if filter.ParentTaskID != "" {
		clauses = append(clauses, `parent_task_id = ?`)
		args = append(args, filter.ParentTaskID)
	}
	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, ` AND `)
	}
	query += ` ORDER BY start_date ASC, name ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

// DeleteTask deletes task.
func (r *Repository) DeleteTask(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// scanner represents scanner data used by this package.
type scanner interface {
	Scan(dest ...any) error
}

// scanProject handles scan project.
func scanProject(s scanner) (domain.Project, error) {
	var (
		p          domain.Project
		health     string
		createdRaw string
		updatedRaw string
	)
	if err := s.Scan(&p.ID, &p.Code, &p.Name, &health, &createdRaw, &updatedRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Project{}, app.ErrNotFound
		}
		return domain.Project{}, err
	}
	p.Health = domain.ProjectHealth(health)
	if p.Health == "" {
		p.Health = domain.HealthGood
	}
	p.CreatedAt = parseTS(createdRaw)
	p.UpdatedAt = parseTS(updatedRaw)
	return p, nil
}

// scanPerson handles scan person.
func scanPerson(s scanner) (domain.Person, error) {
	var (
		p          domain.Person
		createdRaw string
		updatedRaw string
	)
	if err := s.Scan(&p.ID, &p.Name, &createdRaw, &updatedRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Person{}, app.ErrNotFound
		}
		return domain.Person{}, err
	}
	p.CreatedAt = parseTS(createdRaw)
	p.UpdatedAt = parseTS(updatedRaw)
	return p, nil
}

// scanTask handles scan task.
func scanTask(s scanner) (domain.Task, error) {
	var (
		t          domain.Task
		startRaw   string
		endRaw     string
		status     string
		milestone  int
		depsRaw    string
		createdRaw string
		updatedRaw string
	)
	if err := s.Scan(
		&t.ID,
		&t.Name,
		&startRaw,
		&endRaw,
		&t.Progress,
		&status,
		&milestone,
		&t.AssigneeID,
		&t.ProjectID,
		&t.ParentTaskID,
		&depsRaw,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Task{}, app.ErrNotFound
		}
		return domain.Task{}, err
	}
	t.Status = domain.TaskStatus(status)
	if t.Status == "" {
		t.Status = domain.StatusNotStarted
	}
	t.IsMilestone = milestone != 0
	t.Start = parseDate(startRaw)
	t.End = parseDate(endRaw)
	t.CreatedAt = parseTS(createdRaw)
	t.UpdatedAt = parseTS(updatedRaw)
	if strings.TrimSpace(depsRaw) == "" {
		depsRaw = "[]"
	}
	if err := json.Unmarshal([]byte(depsRaw), &t.DependencyIDs); err != nil {
		return domain.Task{}, fmt.Errorf("decode dependency_ids_json: %w", err)
	}
	return t, nil
}

// encodeDependencyIDs always writes a JSON array, never null.
func encodeDependencyIDs(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("encode dependency ids: %w", err)
	}
	return string(raw), nil
}

// translateNoRows handles translate no rows.
func translateNoRows(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return app.ErrNotFound
	}
	return nil
}

// ts handles ts.
func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTS parses input into a normalized form.
func parseTS(v string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}

func date(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func parseDate(v string) time.Time {
	parsed, err := time.Parse(dateLayout, strings.TrimSpace(v))
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

// isDuplicateColumnErr reports whether the expected condition is satisfied.
func isDuplicateColumnErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "duplicate column name")
}
