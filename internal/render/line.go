// Package render writes the bar as one line of text per frame.
package render

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/tinytelemetry/guardbar/internal/model"
	"github.com/tinytelemetry/guardbar/internal/theme"
	"github.com/tinytelemetry/guardbar/internal/widget"
)

// Config holds renderer options.
type Config struct {
	// NoColor disables styling even when the writer is a terminal.
	NoColor bool
}

// Line renders every block's segments on a single line, joined by the theme
// separator. Consecutive identical frames are written once.
type Line struct {
	w      io.Writer
	theme  *theme.Theme
	styles map[widget.State]lipgloss.Style
	color  bool

	mu   sync.Mutex
	last string
}

// NewLine creates a renderer writing to w. Colour is only used when w is a
// terminal.
func NewLine(w io.Writer, t *theme.Theme, conf ...Config) *Line {
	color := isTerminal(w)
	if len(conf) > 0 && conf[0].NoColor {
		color = false
	}
	return newLine(w, t, lipgloss.NewRenderer(w), color)
}

func newLine(w io.Writer, t *theme.Theme, r *lipgloss.Renderer, color bool) *Line {
	l := &Line{
		w:      w,
		theme:  t,
		color:  color,
		styles: make(map[widget.State]lipgloss.Style),
	}
	if color {
		for _, st := range []widget.State{widget.Idle, widget.Info, widget.Good, widget.Warning, widget.Critical} {
			if c := t.Color(st); c != "" {
				l.styles[st] = r.NewStyle().Foreground(lipgloss.Color(c))
			}
		}
	}
	return l
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Frame formats views without writing them.
func (l *Line) Frame(views []model.BlockView) string {
	sep := " | "
	if l.theme != nil {
		sep = l.theme.Separator
	}

	parts := make([]string, 0, len(views))
	for _, v := range views {
		for _, seg := range v.Segments {
			if s := l.segment(seg); s != "" {
				parts = append(parts, s)
			}
		}
	}
	return strings.Join(parts, sep)
}

func (l *Line) segment(seg widget.Segment) string {
	icon := ""
	if seg.Icon != "" {
		icon = l.theme.Icon(seg.Icon)
	}

	var s string
	switch {
	case icon == "":
		s = seg.Text
	case seg.Text == "":
		s = icon
	default:
		s = icon + " " + seg.Text
	}
	if s == "" {
		return ""
	}
	if style, ok := l.styles[seg.State]; ok {
		return style.Render(s)
	}
	return s
}

// Render writes the frame for views unless it equals the previous one.
// It reports whether a line was written.
func (l *Line) Render(views []model.BlockView) (bool, error) {
	frame := l.Frame(views)

	l.mu.Lock()
	defer l.mu.Unlock()

	if frame == l.last {
		return false, nil
	}
	if _, err := fmt.Fprintln(l.w, frame); err != nil {
		return false, fmt.Errorf("render: write frame: %w", err)
	}
	l.last = frame
	return true, nil
}

// Run renders bar once and again on every redraw signal until ctx is done or
// redraw is closed.
func (l *Line) Run(ctx context.Context, bar model.BarReader, redraw <-chan struct{}) error {
	if _, err := l.Render(bar.Blocks()); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-redraw:
			if !ok {
				return nil
			}
			if _, err := l.Render(bar.Blocks()); err != nil {
				return err
			}
		}
	}
}
