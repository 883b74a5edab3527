package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	servercommon "github.com/hylla/ritning/internal/adapters/server/common"
)

var (
	tableBorder = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
	tableHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Padding(0, 1)
	tableCell   = lipgloss.NewStyle().Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorder).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeader
			}
			return tableCell
		})
}

// renderTimelineTable prints one row per bar with a text sparkline of its span.
func renderTimelineTable(tl servercommon.Timeline, width int) string {
	width = max(width, 10)
	title := titleStyle.Render(fmt.Sprintf("%s  %s .. %s  (%d days)",
		tl.Window.Mode, tl.Window.RangeStart, tl.Window.RangeEnd, tl.Window.TotalDays))
	if len(tl.Bars) == 0 {
		return title + "\nno tasks"
	}

	t := newTable("Task", "Start", "End", "Status", "%", timelineHeader(tl.Months, len(tl.Columns), width))
	for _, bar := range tl.Bars {
		name := bar.Task.Name
		if bar.Task.ParentTaskID != "" {
			name = "  " + name
		}
		status := strings.ReplaceAll(bar.Task.Status, "_", " ")
		if bar.Overdue {
			status += " (overdue)"
		}
		t.Row(name, bar.Task.Start, bar.Task.End, status, fmt.Sprintf("%d", bar.Task.Progress), sparkline(bar, tl, width))
	}
	return title + "\n" + t.String()
}

// timelineHeader labels the first month and pads to the sparkline width.
func timelineHeader(months []servercommon.MonthGroup, columns, width int) string {
	if len(months) == 0 || columns <= 0 {
		return strings.Repeat(" ", width)
	}
	var b strings.Builder
	used, seen := 0, 0
	for i, m := range months {
		seen += m.ColumnCount
		end := int(math.Round(float64(seen) / float64(columns) * float64(width)))
		if i == len(months)-1 {
			end = width
		}
		cells := end - used
		if cells <= 0 {
			continue
		}
		label := []rune(m.Label)
		if len(label) > cells {
			label = label[:cells]
		}
		b.WriteString(string(label) + strings.Repeat(" ", cells-len(label)))
		used += cells
	}
	return b.String()
}

// sparkline draws a bar as a row of cells: █ for the span, ◆ for a milestone, │ for today.
func sparkline(bar servercommon.Bar, tl servercommon.Timeline, width int) string {
	cells := []rune(strings.Repeat("·", width))
	if tl.TodayVisible {
		cells[scaleCell(tl.TodayPercent, width)] = '│'
	}
	if !bar.Visible {
		return string(cells)
	}
	if bar.IsMilestone {
		cells[scaleCell(bar.LeftPercent, width)] = '◆'
		return string(cells)
	}
	start := scaleCell(bar.LeftPercent, width)
	length := int(math.Round(bar.WidthPercent / 100 * float64(width)))
	length = min(max(length, 1), width-start)
	for i := start; i < start+length; i++ {
		cells[i] = '█'
	}
	return string(cells)
}

func scaleCell(percent float64, width int) int {
	cell := int(math.Floor(percent / 100 * float64(width)))
	return min(max(cell, 0), width-1)
}

// renderBucketsTable prints rollup counts followed by each bucket's task tree.
func renderBucketsTable(buckets []servercommon.Bucket) string {
	if len(buckets) == 0 {
		return "no tasks"
	}
	t := newTable("Group", "Health", "Done", "In progress", "Total", "Complete")
	for _, b := range buckets {
		health := b.Health
		if health == "" {
			health = "-"
		}
		t.Row(b.Label, health, fmt.Sprintf("%d", b.DoneCount), fmt.Sprintf("%d", b.InProgressCount),
			fmt.Sprintf("%d", b.TotalCount), fmt.Sprintf("%.0f%%", b.CompletionPercent))
	}

	var out strings.Builder
	out.WriteString(t.String())
	for _, b := range buckets {
		out.WriteString("\n\n" + titleStyle.Render(b.Label))
		for _, node := range b.Tasks {
			fmt.Fprintf(&out, "\n  ▸ %s  %s → %s", node.Task.Name, node.Task.Start, node.Task.End)
			for _, sub := range node.Subtasks {
				fmt.Fprintf(&out, "\n      · %s  %s → %s", sub.Name, sub.Start, sub.End)
			}
		}
	}
	return out.String()
}

func renderDependencies(deps servercommon.Dependencies) string {
	title := titleStyle.Render(fmt.Sprintf("%s (%s)", deps.Task.Name, deps.Task.ID))
	if len(deps.Dependencies) == 0 {
		return title + "\nno dependencies"
	}
	t := newTable("Depends on", "Start", "End", "Status")
	for _, dep := range deps.Dependencies {
		t.Row(dep.Name, dep.Start, dep.End, strings.ReplaceAll(dep.Status, "_", " "))
	}
	return title + "\n" + t.String()
}
