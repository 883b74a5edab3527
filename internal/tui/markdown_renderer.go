package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/hylla/ritning/internal/domain"
)

// markdownRenderer renders markdown for terminal views and recreates the renderer when wrap width changes.
type markdownRenderer struct {
	style    string
	width    int
	renderer *glamour.TermRenderer
}

// render converts markdown input into ANSI-styled terminal text with the requested wrap width.
func (r *markdownRenderer) render(markdown string, width int) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}

	wrapWidth := max(width, 24)
	style := r.style
	if style == "" {
		style = "dark"
	}

	if r.renderer == nil || r.width != wrapWidth {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(wrapWidth),
		)
		if err != nil {
			return markdown
		}
		r.renderer = renderer
		r.width = wrapWidth
	}

	rendered, err := r.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(rendered, "\n")
}

// taskDetailMarkdown builds the detail pane document for one task and its resolved dependencies.
func taskDetailMarkdown(task domain.Task, deps []domain.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", task.Name)
	if task.IsMilestone {
		fmt.Fprintf(&b, "- **Milestone:** %s\n", formatDay(task.Start))
	} else {
		fmt.Fprintf(&b, "- **Dates:** %s → %s\n", formatDay(task.Start), formatDay(task.End))
	}
	fmt.Fprintf(&b, "- **Status:** %s (%d%%)\n", statusLabel(task.Status), task.Progress)
	if task.ProjectID != "" {
		fmt.Fprintf(&b, "- **Project:** `%s`\n", task.ProjectID)
	}
	if task.AssigneeID != "" {
		fmt.Fprintf(&b, "- **Assignee:** `%s`\n", task.AssigneeID)
	}
	if task.ParentTaskID != "" {
		fmt.Fprintf(&b, "- **Parent:** `%s`\n", task.ParentTaskID)
	}

	b.WriteString("\n## Depends on\n\n")
	if len(deps) == 0 {
		b.WriteString("_No dependencies._\n")
		return b.String()
	}
	for _, dep := range deps {
		fmt.Fprintf(&b, "- %s (%s → %s, %s)\n", dep.Name, formatDay(dep.Start), formatDay(dep.End), statusLabel(dep.Status))
	}
	return b.String()
}

// taskSummary is the plain-text line copied to the clipboard.
func taskSummary(task domain.Task) string {
	return fmt.Sprintf("%s [%s → %s] %s %d%%", task.Name, formatDay(task.Start), formatDay(task.End), statusLabel(task.Status), task.Progress)
}

func statusLabel(status domain.TaskStatus) string {
	if status == "" {
		status = domain.StatusNotStarted
	}
	return strings.ReplaceAll(string(status), "_", " ")
}
