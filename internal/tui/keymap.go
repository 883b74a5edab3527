package tui

import "charm.land/bubbles/v2/key"

// keyMap represents key map data used by this package.
type keyMap struct {
	quit       key.Binding
	reload     key.Binding
	toggleHelp key.Binding
	prevWindow key.Binding
	nextWindow key.Binding
	today      key.Binding
	weekMode   key.Binding
	monthMode  key.Binding
	quarter    key.Binding
	cycleView  key.Binding
	moveUp     key.Binding
	moveDown   key.Binding
	detail     key.Binding
	copyTask   key.Binding
	closePane  key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		reload:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		toggleHelp: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		prevWindow: key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "previous window")),
		nextWindow: key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "next window")),
		today:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),
		weekMode:   key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "week")),
		monthMode:  key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "month")),
		quarter:    key.NewBinding(key.WithKeys("Q", "shift+q"), key.WithHelp("Q", "quarter")),
		cycleView:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "gantt/project/assignee")),
		moveUp:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "task up")),
		moveDown:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "task down")),
		detail:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "task detail")),
		copyTask:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy task")),
		closePane:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close detail")),
	}
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.prevWindow, k.nextWindow, k.today, k.cycleView, k.detail, k.toggleHelp, k.quit,
	}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.prevWindow, k.nextWindow, k.today, k.weekMode, k.monthMode, k.quarter},
		{k.cycleView, k.moveUp, k.moveDown, k.detail, k.closePane, k.copyTask},
		{k.reload, k.toggleHelp, k.quit},
	}
}
