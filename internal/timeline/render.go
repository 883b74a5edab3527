package timeline

import (
	"slices"
	"time"

	"github.com/hylla/ritning/internal/domain"
)

// Bar is one task placed on the grid.
type Bar struct {
	Task        domain.Task
	Position    Position
	IsMilestone bool
	// Visible is false when the task lies entirely outside the range and its
	// position has collapsed onto an edge.
	Visible bool
	Overdue bool
}

// RenderModel is everything the Gantt view needs for one recomputation.
type RenderModel struct {
	Window       ViewWindow
	Range        Range
	Columns      []Column
	Months       []MonthGroup
	Bars         []Bar
	TodayPercent float64
	TodayVisible bool
}

// Compute derives the full Gantt layout for a window and a task snapshot.
func Compute(w ViewWindow, tasks []domain.Task, today time.Time) (RenderModel, error) {
	w, err := NewViewWindow(w.Mode, w.Anchor)
	if err != nil {
		return RenderModel{}, err
	}
	r, err := w.Range()
	if err != nil {
		return RenderModel{}, err
	}
	columns, err := BuildColumns(r, w.Mode, today)
	if err != nil {
		return RenderModel{}, err
	}
	today = domain.DateOf(today)

	ordered := slices.Clone(tasks)
	slices.SortStableFunc(ordered, compareTasks)
	bars := make([]Bar, 0, len(ordered))
	for _, task := range ordered {
		bars = append(bars, Bar{
			Task:        task,
			Position:    PositionTask(r, task.Start, task.End),
			IsMilestone: task.IsMilestone,
			Visible:     Overlaps(r, task.Start, task.End),
			Overdue:     isOverdue(task, today),
		})
	}

	return RenderModel{
		Window:       w,
		Range:        r,
		Columns:      columns,
		Months:       GroupMonths(columns),
		Bars:         bars,
		TodayPercent: PositionMilestone(r, today),
		TodayVisible: r.Contains(today),
	}, nil
}

// isOverdue reports an unfinished task whose end date has passed.
func isOverdue(task domain.Task, today time.Time) bool {
	if task.IsDone() || today.IsZero() {
		return false
	}
	_, end := normalizeSpan(task.Start, task.End)
	return end.Before(today)
}
