package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tinytelemetry/guardbar/internal/model"
)

var (
	ColorNavy = lipgloss.Color("#1a1b3a")
	ColorGray = lipgloss.Color("240")
	ColorRed  = lipgloss.Color("#FF6666")

	blockStyle    = lipgloss.NewStyle().Padding(0, 1)
	selectedStyle = lipgloss.NewStyle().Padding(0, 1).Background(ColorNavy).Bold(true)
	statusStyle   = lipgloss.NewStyle().Foreground(ColorGray)
	errorStyle    = lipgloss.NewStyle().Foreground(ColorRed).Bold(true)
	helpStyle     = lipgloss.NewStyle().Foreground(ColorGray)
)

func (m *Model) View() string {
	if m.details != nil {
		return m.details.View(m, m.width, m.height)
	}

	var b strings.Builder

	b.WriteString(m.renderBar())
	b.WriteString("\n\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m *Model) renderBar() string {
	if len(m.blocks) == 0 {
		return statusStyle.Render("no blocks")
	}

	cells := make([]string, 0, len(m.blocks))
	for i, v := range m.blocks {
		style := blockStyle
		if i == m.selected {
			style = selectedStyle
		}
		cells = append(cells, style.Render(m.renderBlock(v)))
	}
	sep := " "
	if m.theme != nil && strings.TrimSpace(m.theme.Separator) != "" {
		sep = statusStyle.Render(strings.TrimSpace(m.theme.Separator))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, joinWith(cells, sep)...)
}

func (m *Model) renderBlock(v model.BlockView) string {
	parts := make([]string, 0, len(v.Segments))
	for _, seg := range v.Segments {
		text := seg.Text
		if seg.Icon != "" {
			text = strings.TrimSpace(m.theme.Icon(seg.Icon) + " " + seg.Text)
		}
		if text == "" {
			continue
		}
		style := lipgloss.NewStyle()
		if c := m.theme.Color(seg.State); c != "" {
			style = style.Foreground(lipgloss.Color(c))
		}
		parts = append(parts, style.Render(text))
	}
	if len(parts) == 0 {
		return v.Kind
	}
	return strings.Join(parts, " ")
}

func (m *Model) renderStatus() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("%s: %v", m.dataSource, m.err))
	}

	var parts []string
	if m.dataSource != "" {
		parts = append(parts, m.dataSource)
	}
	if id := m.Selected(); id != "" {
		parts = append(parts, fmt.Sprintf("%s %s", m.blocks[m.selected].Kind, shortID(id)))
	}
	if !m.lastUpdate.IsZero() {
		parts = append(parts, "updated "+m.lastUpdate.Format("15:04:05"))
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	return statusStyle.Render(strings.Join(parts, " · "))
}

func (m *Model) renderHelp() string {
	bindings := m.keys.ShortHelp()
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return helpStyle.Render(strings.Join(parts, "  "))
}

func joinWith(cells []string, sep string) []string {
	out := make([]string, 0, 2*len(cells))
	for i, c := range cells {
		if i > 0 {
			out = append(out, sep)
		}
		out = append(out, c)
	}
	return out
}
