package domain

import (
	"slices"
	"strings"
	"time"
)

type TaskStatus string

const (
	StatusNotStarted TaskStatus = "not_started"
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
	StatusDelayed    TaskStatus = "delayed"
)

var validStatuses = []TaskStatus{StatusNotStarted, StatusPending, StatusInProgress, StatusDone, StatusDelayed}

// ParseTaskStatus normalizes and validates a raw status value.
func ParseTaskStatus(raw string) (TaskStatus, error) {
	status := TaskStatus(strings.ToLower(strings.TrimSpace(raw)))
	if status == "" {
		return StatusNotStarted, nil
	}
	if !slices.Contains(validStatuses, status) {
		return "", ErrInvalidStatus
	}
	return status, nil
}

type Task struct {
	ID            string
	Name          string
	Start         time.Time
	End           time.Time
	Progress      int
	Status        TaskStatus
	IsMilestone   bool
	AssigneeID    string
	ProjectID     string
	ParentTaskID  string
	DependencyIDs []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type TaskInput struct {
	ID            string
	Name          string
	Start         time.Time
	End           time.Time
	Progress      int
	Status        TaskStatus
	IsMilestone   bool
	AssigneeID    string
	ProjectID     string
	ParentTaskID  string
	DependencyIDs []string
}

func NewTask(in TaskInput, now time.Time) (Task, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Name = strings.TrimSpace(in.Name)
	in.AssigneeID = strings.TrimSpace(in.AssigneeID)
	in.ProjectID = strings.TrimSpace(in.ProjectID)
	in.ParentTaskID = strings.TrimSpace(in.ParentTaskID)

	if in.ID == "" {
		return Task{}, ErrInvalidID
	}
	if in.Name == "" {
		return Task{}, ErrInvalidName
	}
	if in.ParentTaskID == in.ID {
		return Task{}, ErrInvalidID
	}
	if in.Progress < 0 || in.Progress > 100 {
		return Task{}, ErrInvalidProgress
	}
	status, err := ParseTaskStatus(string(in.Status))
	if err != nil {
		return Task{}, err
	}
	if in.Start.IsZero() {
		return Task{}, ErrInvalidDateRange
	}

	start := DateOf(in.Start)
	end := DateOf(in.End)
	if in.IsMilestone || in.End.IsZero() {
		end = start
	}
	if end.Before(start) {
		return Task{}, ErrInvalidDateRange
	}

	return Task{
		ID:            in.ID,
		Name:          in.Name,
		Start:         start,
		End:           end,
		Progress:      in.Progress,
		Status:        status,
		IsMilestone:   in.IsMilestone,
		AssigneeID:    in.AssigneeID,
		ProjectID:     in.ProjectID,
		ParentTaskID:  in.ParentTaskID,
		DependencyIDs: normalizeDependencyIDs(in.ID, in.DependencyIDs),
		CreatedAt:     now.UTC(),
		UpdatedAt:     now.UTC(),
	}, nil
}

// IsTopLevel reports whether the task is a bucket member rather than a subtask.
func (t Task) IsTopLevel() bool {
	return t.ParentTaskID == ""
}

func (t Task) IsDone() bool {
	return t.Status == StatusDone
}

// SetProgress records a progress report. Reaching 100 marks the task done.
func (t *Task) SetProgress(progress int, status TaskStatus, now time.Time) error {
	if progress < 0 || progress > 100 {
		return ErrInvalidProgress
	}
	status, err := ParseTaskStatus(string(status))
	if err != nil {
		return err
	}
	if progress == 100 {
		status = StatusDone
	}
	t.Progress = progress
	t.Status = status
	t.UpdatedAt = now.UTC()
	return nil
}

// DateOf truncates a timestamp to its UTC calendar date.
func DateOf(ts time.Time) time.Time {
	if ts.IsZero() {
		return time.Time{}
	}
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func normalizeDependencyIDs(selfID string, ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := map[string]struct{}{}
	for _, raw := range ids {
		id := strings.TrimSpace(raw)
		if id == "" || id == selfID {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
