package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"

	"github.com/hylla/ritning/internal/app"
	"github.com/hylla/ritning/internal/domain"
	"github.com/hylla/ritning/internal/timeline"
)

// Service is the read side of app.Service the planning view needs.
type Service interface {
	Timeline(context.Context, app.TimelineRequest) (timeline.RenderModel, error)
	GroupByProject(context.Context) ([]timeline.Bucket, error)
	GroupByAssignee(context.Context) ([]timeline.Bucket, error)
	TaskDependencies(context.Context, string) (domain.Task, []domain.Task, error)
	Today() time.Time
	DefaultMode() timeline.ViewMode
}

// viewKind selects the body layout.
type viewKind int

const (
	viewGantt viewKind = iota
	viewByProject
	viewByAssignee
)

func (v viewKind) String() string {
	switch v {
	case viewByProject:
		return "by project"
	case viewByAssignee:
		return "by assignee"
	default:
		return "gantt"
	}
}

// Model is the bubbletea planning view.
//
// Window and view selection are the only navigation state; everything drawn
// is recomputed from the service after each change.
type Model struct {
	svc Service

	ready  bool
	width  int
	height int
	err    error
	status string

	help help.Model
	keys keyMap

	window     timeline.ViewWindow
	view       viewKind
	projectID  string
	assigneeID string

	render   timeline.RenderModel
	buckets  []timeline.Bucket
	rows     []domain.Task
	selected int

	showDetail bool
	detailID   string
	detailTask domain.Task
	detailDeps []domain.Task
	markdown   *markdownRenderer
	styles     ganttStyles

	copyText ClipboardWriter
}

// loadedMsg carries one recomputed view.
type loadedMsg struct {
	render  timeline.RenderModel
	buckets []timeline.Bucket
	err     error
}

// detailLoadedMsg carries the task shown in the detail pane.
type detailLoadedMsg struct {
	task domain.Task
	deps []domain.Task
	err  error
}

// copiedMsg reports the clipboard outcome.
type copiedMsg struct {
	name string
	err  error
}

// NewModel constructs the planning view anchored on today in the service default mode.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	m := Model{
		svc:      svc,
		status:   "loading...",
		help:     h,
		keys:     newKeyMap(),
		markdown: &markdownRenderer{},
		styles:   newGanttStyles(),
		copyText: clipboard.WriteAll,
	}
	if svc != nil {
		if w, err := timeline.NewViewWindow(svc.DefaultMode(), svc.Today()); err == nil {
			m.window = w
		}
	}
	if m.window.Mode == "" {
		m.window = timeline.ViewWindow{Mode: timeline.ModeMonth, Anchor: domain.DateOf(time.Now())}
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return m.loadData
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.status = "error"
			return m, nil
		}
		m.err = nil
		m.render = msg.render
		m.buckets = msg.buckets
		m.rows = m.currentRows()
		m.selected = clamp(m.selected, 0, len(m.rows)-1)
		m.status = "ready"
		if m.showDetail {
			return m, m.loadDetail()
		}
		return m, nil

	case detailLoadedMsg:
		if msg.err != nil {
			m.status = "detail failed: " + msg.err.Error()
			m.showDetail = false
			return m, nil
		}
		m.detailID = msg.task.ID
		m.detailTask = msg.task
		m.detailDeps = msg.deps
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.status = "copy failed: " + msg.err.Error()
			return m, nil
		}
		m.status = "copied " + msg.name
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	default:
		return m, nil
	}
}

// handleKey routes one key press in the planning view.
func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.closePane):
		if m.help.ShowAll {
			m.help.ShowAll = false
			return m, nil
		}
		m.showDetail = false
		return m, nil
	case key.Matches(msg, m.keys.reload):
		m.status = "reloading..."
		return m, m.loadData
	case key.Matches(msg, m.keys.prevWindow):
		return m.shiftWindow(timeline.Backward)
	case key.Matches(msg, m.keys.nextWindow):
		return m.shiftWindow(timeline.Forward)
	case key.Matches(msg, m.keys.today):
		return m.setWindow(timeline.JumpToToday(m.window, m.today()))
	case key.Matches(msg, m.keys.weekMode):
		return m.setWindow(timeline.WithMode(m.window, timeline.ModeWeek))
	case key.Matches(msg, m.keys.monthMode):
		return m.setWindow(timeline.WithMode(m.window, timeline.ModeMonth))
	case key.Matches(msg, m.keys.quarter):
		return m.setWindow(timeline.WithMode(m.window, timeline.ModeQuarter))
	case key.Matches(msg, m.keys.cycleView):
		m.view = (m.view + 1) % 3
		m.selected = 0
		m.status = m.view.String()
		return m, m.loadData
	case key.Matches(msg, m.keys.moveDown):
		return m.moveSelection(1)
	case key.Matches(msg, m.keys.moveUp):
		return m.moveSelection(-1)
	case key.Matches(msg, m.keys.detail):
		m.showDetail = !m.showDetail
		if !m.showDetail {
			return m, nil
		}
		return m, m.loadDetail()
	case key.Matches(msg, m.keys.copyTask):
		return m, m.copySelected()
	default:
		return m, nil
	}
}

func (m Model) shiftWindow(dir timeline.Direction) (tea.Model, tea.Cmd) {
	return m.setWindow(timeline.Navigate(m.window, dir))
}

// setWindow applies a navigation result and schedules a recompute.
func (m Model) setWindow(w timeline.ViewWindow, err error) (tea.Model, tea.Cmd) {
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.window = w
	m.status = "loading..."
	return m, m.loadData
}

func (m Model) moveSelection(delta int) (tea.Model, tea.Cmd) {
	if len(m.rows) == 0 {
		return m, nil
	}
	next := clamp(m.selected+delta, 0, len(m.rows)-1)
	if next == m.selected {
		return m, nil
	}
	m.selected = next
	if m.showDetail {
		return m, m.loadDetail()
	}
	return m, nil
}

// loadData recomputes the timeline and, outside the Gantt view, the rollup.
func (m Model) loadData() tea.Msg {
	if m.svc == nil {
		return loadedMsg{err: errors.New("service is not configured")}
	}
	ctx := context.Background()
	render, err := m.svc.Timeline(ctx, app.TimelineRequest{
		Mode:       m.window.Mode,
		Anchor:     m.window.Anchor,
		ProjectID:  m.projectID,
		AssigneeID: m.assigneeID,
	})
	if err != nil {
		return loadedMsg{err: err}
	}
	var buckets []timeline.Bucket
	switch m.view {
	case viewByProject:
		buckets, err = m.svc.GroupByProject(ctx)
	case viewByAssignee:
		buckets, err = m.svc.GroupByAssignee(ctx)
	}
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{render: render, buckets: buckets}
}

// loadDetail resolves dependencies for the selected task.
func (m Model) loadDetail() tea.Cmd {
	task, ok := m.selectedTask()
	if !ok || m.svc == nil {
		return nil
	}
	svc := m.svc
	return func() tea.Msg {
		got, deps, err := svc.TaskDependencies(context.Background(), task.ID)
		if err != nil {
			return detailLoadedMsg{err: err}
		}
		return detailLoadedMsg{task: got, deps: deps}
	}
}

func (m Model) copySelected() tea.Cmd {
	task, ok := m.selectedTask()
	if !ok {
		return nil
	}
	write := m.copyText
	return func() tea.Msg {
		return copiedMsg{name: task.Name, err: write(taskSummary(task))}
	}
}

func (m Model) selectedTask() (domain.Task, bool) {
	if m.selected < 0 || m.selected >= len(m.rows) {
		return domain.Task{}, false
	}
	return m.rows[m.selected], true
}

// currentRows lists selectable tasks in the order they are drawn.
func (m Model) currentRows() []domain.Task {
	if m.view == viewGantt {
		out := make([]domain.Task, 0, len(m.render.Bars))
		for _, bar := range m.render.Bars {
			out = append(out, bar.Task)
		}
		return out
	}
	return bucketRows(m.buckets)
}

func (m Model) today() time.Time {
	if m.svc == nil {
		return time.Now()
	}
	return m.svc.Today()
}

// View handles view.
func (m Model) View() tea.View {
	if m.err != nil {
		v := tea.NewView("error: " + m.err.Error() + "\n\npress r to retry • q quit\n")
		v.AltScreen = true
		return v
	}
	if !m.ready {
		v := tea.NewView("loading...")
		v.AltScreen = true
		return v
	}
	v := tea.NewView(m.renderScreen())
	v.AltScreen = true
	return v
}

// renderScreen composes header, body, optional detail pane, and help footer.
func (m Model) renderScreen() string {
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")

	helpBubble := m.help
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(muted).
		BorderTop(true).
		BorderForeground(dim).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))

	body := strings.Join(m.renderBody(), "\n")
	if m.showDetail {
		body += "\n\n" + m.renderDetail()
	}
	content := m.renderHeader() + "\n\n" + body
	if m.height > 0 {
		content = fitLines(content, max(0, m.height-lipgloss.Height(helpLine)))
	}
	return content + "\n" + helpLine
}

func (m Model) renderHeader() string {
	title := m.styles.header.Render("ritning")
	window := fmt.Sprintf("%s · %s", m.window.Mode, m.view)
	if !m.render.Range.Start.IsZero() {
		window += fmt.Sprintf(" · %s .. %s", formatDay(m.render.Range.Start), formatDay(m.render.Range.End))
	}
	if m.projectID != "" || m.assigneeID != "" {
		window += fmt.Sprintf(" · filter project=%s assignee=%s", orDash(m.projectID), orDash(m.assigneeID))
	}
	line := title + "  " + m.styles.muted.Render(window)
	if status := strings.TrimSpace(m.status); status != "" && status != "ready" {
		line += "  " + m.styles.muted.Render("["+status+"]")
	}
	return line
}

// renderBody draws the active view as plain lines.
func (m Model) renderBody() []string {
	if m.view == viewGantt {
		return renderGantt(m.render, m.width, m.selected, m.styles)
	}
	return renderBuckets(m.buckets, m.selected, m.styles)
}

func (m Model) renderDetail() string {
	task, ok := m.selectedTask()
	if !ok {
		return m.styles.muted.Render("no task selected")
	}
	if m.detailID != task.ID {
		return m.styles.muted.Render("loading detail...")
	}
	return m.markdown.render(taskDetailMarkdown(m.detailTask, m.detailDeps), max(24, m.width-4))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// clamp clamps the requested operation.
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
