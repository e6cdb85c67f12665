package render

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/tinytelemetry/guardbar/internal/model"
	"github.com/tinytelemetry/guardbar/internal/theme"
	"github.com/tinytelemetry/guardbar/internal/widget"
)

func plainTheme(t *testing.T) *theme.Theme {
	t.Helper()
	th, err := theme.Builtin("plain")
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}
	return th
}

func views() []model.BlockView {
	return []model.BlockView{
		{ID: "1", Kind: "firewall", Segments: []widget.Segment{{Icon: "firewall", State: widget.Good}}},
		{ID: "2", Kind: "killswitch", Segments: []widget.Segment{{Icon: "killswitch", Text: "down", State: widget.Critical}}},
	}
}

func TestFrame(t *testing.T) {
	t.Parallel()

	l := NewLine(&bytes.Buffer{}, plainTheme(t))
	tests := []struct {
		name  string
		views []model.BlockView
		want  string
	}{
		{"empty bar", nil, ""},
		{"two blocks", views(), "FW | KS down"},
		{"unknown icon key", []model.BlockView{{Segments: []widget.Segment{{Icon: "vpn", Text: "up"}}}}, "vpn up"},
		{"text only", []model.BlockView{{Segments: []widget.Segment{{Text: "hello"}}}}, "hello"},
		{"blank segment skipped", []model.BlockView{{Segments: []widget.Segment{{}, {Text: "x"}}}}, "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := l.Frame(tt.views); got != tt.want {
				t.Errorf("Frame() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderSkipsIdenticalFrames(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewLine(&buf, plainTheme(t))

	for i := 0; i < 3; i++ {
		wrote, err := l.Render(views())
		if err != nil {
			t.Fatalf("Render: %v", err)
		}
		if wrote != (i == 0) {
			t.Errorf("call %d wrote = %v", i, wrote)
		}
	}

	changed := views()
	changed[1].Segments[0] = widget.Segment{Icon: "killswitch", State: widget.Good}
	if wrote, _ := l.Render(changed); !wrote {
		t.Error("changed frame was not written")
	}

	if got, want := buf.String(), "FW | KS down\nFW | KS\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestNonTerminalIsUncoloured(t *testing.T) {
	t.Parallel()

	th, _ := theme.Builtin("default")
	var buf bytes.Buffer
	l := NewLine(&buf, th)
	if _, err := l.Render(views()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("escape sequences written to a non-terminal: %q", buf.String())
	}
}

func TestColouredSegments(t *testing.T) {
	t.Parallel()

	th, _ := theme.Builtin("default")
	var buf bytes.Buffer
	r := lipgloss.NewRenderer(&buf)
	r.SetColorProfile(termenv.ANSI256)
	l := newLine(&buf, th, r, true)

	frame := l.Frame(views())
	if !strings.Contains(frame, "\x1b[") {
		t.Fatalf("Frame() = %q, want colour escapes", frame)
	}
	if !strings.Contains(frame, "down") {
		t.Errorf("Frame() = %q lost segment text", frame)
	}
}

type staticBar struct{ views []model.BlockView }

func (b staticBar) Blocks() []model.BlockView { return b.views }

func TestRunRedrawsOnSignal(t *testing.T) {
	t.Parallel()

	var buf safeBuffer
	l := NewLine(&buf, plainTheme(t))
	redraw := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- l.Run(ctx, staticBar{views()}, redraw) }()

	redraw <- struct{}{}
	redraw <- struct{}{}
	close(redraw)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after redraw closed")
	}
	if got := buf.String(); got != "FW | KS down\n" {
		t.Errorf("output = %q, want a single frame", got)
	}
}
