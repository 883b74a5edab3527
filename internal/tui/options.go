package tui

import (
	"strings"
	"time"

	"github.com/hylla/ritning/internal/timeline"
)

type Option func(*Model)

// ClipboardWriter copies one text payload to the system clipboard.
type ClipboardWriter func(string) error

// WithFilter restricts the Gantt view to one project and/or assignee.
func WithFilter(projectID, assigneeID string) Option {
	return func(m *Model) {
		m.projectID = strings.TrimSpace(projectID)
		m.assigneeID = strings.TrimSpace(assigneeID)
	}
}

// WithWindow overrides the starting mode and anchor. Invalid modes are ignored.
func WithWindow(mode timeline.ViewMode, anchor time.Time) Option {
	return func(m *Model) {
		if anchor.IsZero() {
			anchor = m.window.Anchor
		}
		if w, err := timeline.NewViewWindow(mode, anchor); err == nil {
			m.window = w
		}
	}
}

func WithClipboardWriter(write ClipboardWriter) Option {
	return func(m *Model) {
		if write != nil {
			m.copyText = write
		}
	}
}

// WithMarkdownStyle selects the glamour style used by the detail pane.
func WithMarkdownStyle(style string) Option {
	return func(m *Model) {
		if style = strings.TrimSpace(style); style != "" {
			m.markdown.style = style
		}
	}
}
