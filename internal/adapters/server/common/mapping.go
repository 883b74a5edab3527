package common

import (
	"time"

	"github.com/hylla/ritning/internal/domain"
	"github.com/hylla/ritning/internal/timeline"
)

// MapTask converts one domain task into its wire form.
func MapTask(t domain.Task) Task {
	deps := append([]string{}, t.DependencyIDs...)
	return Task{
		ID:            t.ID,
		Name:          t.Name,
		Start:         formatDate(t.Start),
		End:           formatDate(t.End),
		Progress:      t.Progress,
		Status:        string(t.Status),
		IsMilestone:   t.IsMilestone,
		AssigneeID:    t.AssigneeID,
		ProjectID:     t.ProjectID,
		ParentTaskID:  t.ParentTaskID,
		DependencyIDs: deps,
	}
}

// MapTasks converts tasks and never returns nil.
func MapTasks(tasks []domain.Task) []Task {
	out := make([]Task, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, MapTask(task))
	}
	return out
}

// MapWindow converts a view window and its derived range.
func MapWindow(w timeline.ViewWindow) (Window, error) {
	r, err := w.Range()
	if err != nil {
		return Window{}, err
	}
	return mapWindowRange(w, r), nil
}

func mapWindowRange(w timeline.ViewWindow, r timeline.Range) Window {
	return Window{
		Mode:       string(w.Mode),
		Anchor:     formatDate(w.Anchor),
		RangeStart: formatDate(r.Start),
		RangeEnd:   formatDate(r.End),
		TotalDays:  r.Days(),
	}
}

// MapRenderModel converts a computed render model.
func MapRenderModel(m timeline.RenderModel) Timeline {
	out := Timeline{
		Window:       mapWindowRange(m.Window, m.Range),
		Columns:      make([]Column, 0, len(m.Columns)),
		Months:       make([]MonthGroup, 0, len(m.Months)),
		Bars:         make([]Bar, 0, len(m.Bars)),
		TodayPercent: m.TodayPercent,
		TodayVisible: m.TodayVisible,
	}
	for _, c := range m.Columns {
		out.Columns = append(out.Columns, Column{
			Date:           formatDate(c.Date),
			Label:          c.Label,
			IsWeekend:      c.IsWeekend,
			IsToday:        c.IsToday,
			IsFirstOfMonth: c.IsFirstOfMonth,
		})
	}
	for _, g := range m.Months {
		out.Months = append(out.Months, MonthGroup{
			Label:       g.Label,
			Year:        g.Year,
			Month:       int(g.Month),
			ColumnCount: g.ColumnCount,
		})
	}
	for _, b := range m.Bars {
		out.Bars = append(out.Bars, Bar{
			Task:         MapTask(b.Task),
			LeftPercent:  b.Position.LeftPercent,
			WidthPercent: b.Position.WidthPercent,
			IsMilestone:  b.IsMilestone,
			Visible:      b.Visible,
			Overdue:      b.Overdue,
		})
	}
	return out
}

// MapBuckets converts rollup buckets.
func MapBuckets(buckets []timeline.Bucket) []Bucket {
	out := make([]Bucket, 0, len(buckets))
	for _, b := range buckets {
		nodes := make([]TaskNode, 0, len(b.Tasks))
		for _, node := range b.Tasks {
			nodes = append(nodes, TaskNode{Task: MapTask(node.Task), Subtasks: MapTasks(node.Subtasks)})
		}
		out = append(out, Bucket{
			Key:               b.Key.String(),
			Kind:              string(b.Key.Kind),
			Label:             b.Label,
			Health:            string(b.Health),
			TotalCount:        b.TotalCount,
			DoneCount:         b.DoneCount,
			InProgressCount:   b.InProgressCount,
			CompletionPercent: b.CompletionPercent(),
			Tasks:             nodes,
		})
	}
	return out
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
