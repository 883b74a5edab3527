package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/hylla/ritning/internal/domain"
	"github.com/hylla/ritning/internal/timeline"
)

const (
	labelWidth    = 26
	minChartWidth = 10
	barGlyph      = "█"
	milestoneMark = "◆"
	todayMark     = "│"
)

// ganttStyles bundles the colors used by the chart.
type ganttStyles struct {
	bar      lipgloss.Style
	done     lipgloss.Style
	overdue  lipgloss.Style
	today    lipgloss.Style
	muted    lipgloss.Style
	selected lipgloss.Style
	header   lipgloss.Style
}

func newGanttStyles() ganttStyles {
	return ganttStyles{
		bar:      lipgloss.NewStyle().Foreground(lipgloss.Color("62")),
		done:     lipgloss.NewStyle().Foreground(lipgloss.Color("35")),
		overdue:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		today:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")),
		header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")),
	}
}

// chartWidth returns the number of cells available to the bars.
func chartWidth(totalWidth int) int {
	return max(minChartWidth, totalWidth-labelWidth-3)
}

// barCells scales a percentage position onto a row of width cells.
//
// The span always covers at least one cell and never runs past the row end.
func barCells(pos timeline.Position, width int) (int, int) {
	if width <= 0 {
		return 0, 0
	}
	start := int(math.Floor(pos.LeftPercent / 100 * float64(width)))
	start = min(max(start, 0), width-1)
	length := int(math.Round(pos.WidthPercent / 100 * float64(width)))
	length = min(max(length, 1), width-start)
	return start, length
}

// markerCell scales one percentage marker onto a row of width cells.
func markerCell(percent float64, width int) int {
	if width <= 0 {
		return 0
	}
	cell := int(math.Floor(percent / 100 * float64(width)))
	return min(max(cell, 0), width-1)
}

// renderMonthHeader lays month labels over the chart with widths proportional to their column counts.
func renderMonthHeader(months []timeline.MonthGroup, totalColumns, width int) string {
	if totalColumns <= 0 || width <= 0 {
		return ""
	}
	var b strings.Builder
	used, seen := 0, 0
	for i, g := range months {
		seen += g.ColumnCount
		end := int(math.Round(float64(seen) / float64(totalColumns) * float64(width)))
		if i == len(months)-1 {
			end = width
		}
		cells := max(end-used, 0)
		if cells == 0 {
			continue
		}
		b.WriteString(padRight(truncate("┆"+g.Label, cells), cells))
		used += cells
	}
	return b.String()
}

// renderGanttRow draws one bar row: a label column followed by the chart cells.
func renderGanttRow(bar timeline.Bar, width int, todayCell int, isSelected bool, styles ganttStyles) string {
	label := bar.Task.Name
	if bar.Task.ParentTaskID != "" {
		label = "  " + label
	}
	cursor := "  "
	labelStyle := lipgloss.NewStyle()
	if isSelected {
		cursor = "> "
		labelStyle = styles.selected
	}
	if !bar.Visible {
		labelStyle = styles.muted
	}
	labelText := labelStyle.Render(padRight(truncate(label, labelWidth), labelWidth))

	cells := make([]string, width)
	for i := range cells {
		cells[i] = " "
	}
	if todayCell >= 0 && todayCell < width {
		cells[todayCell] = styles.today.Render(todayMark)
	}
	if bar.Visible {
		barStyle := styles.bar
		switch {
		case bar.Overdue:
			barStyle = styles.overdue
		case bar.Task.IsDone():
			barStyle = styles.done
		}
		if bar.IsMilestone {
			cells[markerCell(bar.Position.LeftPercent, width)] = barStyle.Render(milestoneMark)
		} else {
			start, length := barCells(bar.Position, width)
			for i := start; i < start+length; i++ {
				cells[i] = barStyle.Render(barGlyph)
			}
		}
	}
	return cursor + labelText + " " + strings.Join(cells, "")
}

// renderGantt draws the month header and every bar row.
func renderGantt(model timeline.RenderModel, totalWidth, selected int, styles ganttStyles) []string {
	width := chartWidth(totalWidth)
	lines := make([]string, 0, len(model.Bars)+2)
	indent := strings.Repeat(" ", labelWidth+3)
	lines = append(lines, indent+styles.muted.Render(renderMonthHeader(model.Months, len(model.Columns), width)))

	todayCell := -1
	if model.TodayVisible {
		todayCell = markerCell(model.TodayPercent, width)
	}
	if len(model.Bars) == 0 {
		lines = append(lines, styles.muted.Render("  no tasks"))
		return lines
	}
	for i, bar := range model.Bars {
		lines = append(lines, renderGanttRow(bar, width, todayCell, i == selected, styles))
	}
	return lines
}

// renderBuckets draws the project or assignee rollup with its task tree.
func renderBuckets(buckets []timeline.Bucket, selected int, styles ganttStyles) []string {
	if len(buckets) == 0 {
		return []string{styles.muted.Render("  no tasks")}
	}
	lines := make([]string, 0, len(buckets)*4)
	row := 0
	for _, bucket := range buckets {
		header := fmt.Sprintf("%s  %d/%d done · %d in progress · %.0f%%",
			bucket.Label, bucket.DoneCount, bucket.TotalCount, bucket.InProgressCount, bucket.CompletionPercent())
		if bucket.Health != "" {
			header += "  [" + string(bucket.Health) + "]"
		}
		lines = append(lines, styles.header.Render(header))
		for _, node := range bucket.Tasks {
			lines = append(lines, renderBucketTask(node.Task, "▸ ", row == selected, styles))
			row++
			for _, sub := range node.Subtasks {
				lines = append(lines, renderBucketTask(sub, "    · ", row == selected, styles))
				row++
			}
		}
	}
	return lines
}

func renderBucketTask(task domain.Task, prefix string, isSelected bool, styles ganttStyles) string {
	cursor := "  "
	style := lipgloss.NewStyle()
	if isSelected {
		cursor = "> "
		style = styles.selected
	}
	text := fmt.Sprintf("%s%s  %s → %s  %s", prefix, task.Name, formatDay(task.Start), formatDay(task.End), statusLabel(task.Status))
	return cursor + style.Render(text)
}

// bucketRows flattens buckets in display order so selection indexes line up with rendered rows.
func bucketRows(buckets []timeline.Bucket) []domain.Task {
	out := make([]domain.Task, 0)
	for _, bucket := range buckets {
		for _, node := range bucket.Tasks {
			out = append(out, node.Task)
			out = append(out, node.Subtasks...)
		}
	}
	return out
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

// truncate truncates.
func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	if limit <= 1 {
		return string(rs[:limit])
	}
	return string(rs[:limit-1]) + "…"
}

func padRight(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// fitLines fits lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}
