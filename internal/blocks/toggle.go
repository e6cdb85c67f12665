// Package blocks contains the concrete bar blocks.
package blocks

import (
	"context"
	"log"
	"time"

	"github.com/tinytelemetry/guardbar/internal/block"
	"github.com/tinytelemetry/guardbar/internal/probe"
	"github.com/tinytelemetry/guardbar/internal/widget"
)

// downText is shown while the guarded control is not confirmed active.
const downText = "down"

// toggle is a block that shows whether a security control is on. It renders
// nothing but its icon while the probe passes and "down" otherwise.
type toggle struct {
	id       string
	kind     string
	interval time.Duration
	text     *widget.TextWidget
	probe    probe.Func
	handle   block.Handle
}

func newToggle(kind string, interval time.Duration, shared block.Shared, handle block.Handle, p probe.Func) *toggle {
	return &toggle{
		id:       block.NewID(),
		kind:     kind,
		interval: interval,
		text:     widget.NewText(kind),
		probe:    probe.WithTimeout(kind, p, shared.ProbeTimeout),
		handle:   handle,
	}
}

func (t *toggle) ID() string { return t.id }

// Update never fails: a probe that cannot confirm the control is up renders
// as down.
func (t *toggle) Update(ctx context.Context) (block.Update, error) {
	active, err := t.probe(ctx)
	if err != nil {
		log.Printf("blocks: %s: %v", t.kind, err)
		active = false
	}

	if active {
		t.text.SetText("")
		t.text.SetState(widget.Good)
	} else {
		t.text.SetText(downText)
		t.text.SetState(widget.Critical)
	}

	return block.RescheduleAfter(t.interval), nil
}

func (t *toggle) View() []widget.Segment {
	return []widget.Segment{t.text.Segment()}
}

// Click on the left button re-checks immediately.
func (t *toggle) Click(ev block.ClickEvent) error {
	if ev.Button != block.ButtonLeft {
		return nil
	}
	if err := t.handle.Request(t.id); err != nil {
		log.Printf("blocks: %s: refresh on click: %v", t.kind, err)
	}
	return nil
}
