// Package tui is a Bubble Tea preview of a running bar.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tinytelemetry/guardbar/internal/model"
	"github.com/tinytelemetry/guardbar/internal/theme"
)

// Model previews the blocks of a bar and forwards clicks to it.
type Model struct {
	bar            model.BarAPI
	theme          *theme.Theme
	keys           KeyMap
	updateInterval time.Duration
	dataSource     string // shown in the status bar

	blocks     []model.BlockView
	selected   int
	lastUpdate time.Time
	status     string
	err        error
	width      int
	height     int

	details *DetailsModal

	fetchInFlight bool
}

// TickMsg represents periodic updates
type TickMsg time.Time

// BlocksMsg carries a fetched snapshot of the bar.
type BlocksMsg struct {
	Blocks []model.BlockView
	Err    error
	At     time.Time
}

// ActionMsg reports the outcome of a click or refresh.
type ActionMsg struct {
	Action string
	ID     string
	Err    error
}

// errorReporter is implemented by readers whose Blocks call can fail
// out of band, such as the socket client.
type errorReporter interface {
	Err() error
}

// NewModel creates a preview model polling bar every updateInterval.
func NewModel(bar model.BarAPI, t *theme.Theme, updateInterval time.Duration, dataSource string) *Model {
	if updateInterval <= 0 {
		updateInterval = model.DefaultUpdateInterval
	}
	return &Model{
		bar:            bar,
		theme:          t,
		keys:           DefaultKeyMap(),
		updateInterval: updateInterval,
		dataSource:     dataSource,
	}
}

// Init fetches the first snapshot and starts the tick loop.
func (m *Model) Init() tea.Cmd {
	m.fetchInFlight = true
	return tea.Batch(m.fetchCmd(), m.tickCmd())
}

func (m *Model) tickCmd() tea.Cmd {
	return tea.Tick(m.updateInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m *Model) fetchCmd() tea.Cmd {
	bar := m.bar
	return func() tea.Msg {
		blocks := bar.Blocks()
		var err error
		if r, ok := bar.(errorReporter); ok {
			err = r.Err()
		}
		return BlocksMsg{Blocks: blocks, Err: err, At: time.Now()}
	}
}

// Selected returns the id of the highlighted block, or "" when there is none.
func (m *Model) Selected() string {
	if m.selected < 0 || m.selected >= len(m.blocks) {
		return ""
	}
	return m.blocks[m.selected].ID
}
