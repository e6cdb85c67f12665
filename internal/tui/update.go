package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tinytelemetry/guardbar/internal/block"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case TickMsg:
		// Skip this round if the previous fetch is still running.
		if m.fetchInFlight {
			return m, m.tickCmd()
		}
		m.fetchInFlight = true
		return m, tea.Batch(m.fetchCmd(), m.tickCmd())

	case BlocksMsg:
		m.fetchInFlight = false
		m.err = msg.Err
		if msg.Err != nil {
			return m, nil
		}
		m.blocks = msg.Blocks
		m.lastUpdate = msg.At
		m.clampSelection()
		m.refreshDetails()
		return m, nil

	case ActionMsg:
		if msg.Err != nil {
			m.status = fmt.Sprintf("%s %s failed: %v", msg.Action, shortID(msg.ID), msg.Err)
			return m, nil
		}
		m.status = fmt.Sprintf("%s %s", msg.Action, shortID(msg.ID))
		if m.fetchInFlight {
			return m, nil
		}
		m.fetchInFlight = true
		return m, m.fetchCmd()

	case tea.KeyMsg:
		if m.details != nil && !key.Matches(msg, m.keys.ForceQuit) {
			closed, cmd := m.details.Update(msg)
			if closed {
				m.details = nil
			}
			return m, cmd
		}
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.details != nil {
			_, cmd := m.details.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.ForceQuit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Left):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, m.keys.Right):
		if m.selected < len(m.blocks)-1 {
			m.selected++
		}
	case key.Matches(msg, m.keys.Click):
		if id := m.Selected(); id != "" {
			return m, m.clickCmd(id)
		}
	case key.Matches(msg, m.keys.Refresh):
		if id := m.Selected(); id != "" {
			return m, m.refreshCmd(id)
		}
	case key.Matches(msg, m.keys.Details):
		if m.Selected() != "" {
			m.details = NewDetailsModal(m.blocks[m.selected])
		}
	}
	return m, nil
}

func (m *Model) clickCmd(id string) tea.Cmd {
	bar := m.bar
	return func() tea.Msg {
		err := bar.Click(block.ClickEvent{ID: id, Button: block.ButtonLeft})
		return ActionMsg{Action: "click", ID: id, Err: err}
	}
}

func (m *Model) refreshCmd(id string) tea.Cmd {
	bar := m.bar
	return func() tea.Msg {
		return ActionMsg{Action: "refresh", ID: id, Err: bar.Refresh(id)}
	}
}

func (m *Model) clampSelection() {
	switch {
	case len(m.blocks) == 0:
		m.selected = 0
	case m.selected >= len(m.blocks):
		m.selected = len(m.blocks) - 1
	}
}

// refreshDetails keeps an open details modal in sync with the latest
// snapshot and closes it when its block disappears.
func (m *Model) refreshDetails() {
	if m.details == nil {
		return
	}
	for _, v := range m.blocks {
		if v.ID == m.details.ID() {
			m.details.Refresh(v)
			return
		}
	}
	m.details = nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
