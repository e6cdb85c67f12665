package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tinytelemetry/guardbar/internal/model"
)

// DetailsModal shows every segment of one block in a scrollable viewport.
type DetailsModal struct {
	view     model.BlockView
	viewport viewport.Model
}

// NewDetailsModal creates a details modal for v.
func NewDetailsModal(v model.BlockView) *DetailsModal {
	return &DetailsModal{
		view:     v,
		viewport: viewport.New(60, 10),
	}
}

// ID returns the id of the block shown.
func (d *DetailsModal) ID() string { return d.view.ID }

// Refresh replaces the block shown, keeping the scroll position.
func (d *DetailsModal) Refresh(v model.BlockView) { d.view = v }

// Update handles a message. It returns true when the modal should close.
func (d *DetailsModal) Update(msg tea.Msg) (bool, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			d.viewport.ScrollUp(1)
			return false, nil
		case "down", "j":
			d.viewport.ScrollDown(1)
			return false, nil
		case "pgup":
			d.viewport.HalfPageUp()
			return false, nil
		case "pgdown":
			d.viewport.HalfPageDown()
			return false, nil
		case "i", "esc", "escape":
			return true, nil
		}
		var cmd tea.Cmd
		d.viewport, cmd = d.viewport.Update(msg)
		return false, cmd

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress {
			return false, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			d.viewport.ScrollUp(1)
		case tea.MouseButtonWheelDown:
			d.viewport.ScrollDown(1)
		}
	}
	return false, nil
}

// View renders the modal centred in a width x height area.
func (d *DetailsModal) View(m *Model, width, height int) string {
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}
	modalWidth := max(width-8, 20)
	modalHeight := max(height-6, 6)
	contentWidth := modalWidth - 4
	contentHeight := modalHeight - 4

	d.viewport.Width = contentWidth
	d.viewport.Height = contentHeight
	d.viewport.SetContent(d.content(m))

	pane := lipgloss.NewStyle().
		Width(contentWidth).
		Height(contentHeight).
		Border(lipgloss.NormalBorder()).
		BorderForeground(ColorGray).
		Render(d.viewport.View())

	header := lipgloss.NewStyle().
		Width(contentWidth).
		Bold(true).
		Render(fmt.Sprintf("%s %s", d.view.Kind, d.view.ID))

	footer := helpStyle.Render("up/down: Scroll | PgUp/PgDn: Page | i/ESC: Close")

	body := lipgloss.JoinVertical(lipgloss.Left, header, pane, footer)
	framed := lipgloss.NewStyle().
		Width(modalWidth).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorGray).
		Render(body)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, framed)
}

func (d *DetailsModal) content(m *Model) string {
	if len(d.view.Segments) == 0 {
		return statusStyle.Render("no segments")
	}

	var b strings.Builder
	for i, seg := range d.view.Segments {
		state := lipgloss.NewStyle()
		if c := m.theme.Color(seg.State); c != "" {
			state = state.Foreground(lipgloss.Color(c))
		}
		fmt.Fprintf(&b, "%d  %-8s", i, state.Render(seg.State.String()))
		if seg.Icon != "" {
			fmt.Fprintf(&b, "  icon=%s (%s)", seg.Icon, m.theme.Icon(seg.Icon))
		}
		if seg.Text != "" {
			fmt.Fprintf(&b, "  text=%q", seg.Text)
		}
		b.WriteString("\n")
	}
	return b.String()
}
