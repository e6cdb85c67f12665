// Package block defines the contract every bar block satisfies and the
// plumbing used to build blocks from configuration.
package block

import (
	"context"
	"time"

	"github.com/tinytelemetry/guardbar/internal/theme"
	"github.com/tinytelemetry/guardbar/internal/widget"
)

// Block is one polling unit in the bar. The scheduler owns timing and calls
// Update and Click from a single goroutine; View may be called from any
// goroutine at any time.
type Block interface {
	// ID returns the identity assigned at construction.
	ID() string

	// Update probes, refreshes the block's widgets and says when to call
	// Update again.
	Update(ctx context.Context) (Update, error)

	// View returns the current segments in display order. It never mutates.
	View() []widget.Segment

	// Click handles a user interaction aimed at this block. Events the block
	// does not understand are ignored.
	Click(ev ClickEvent) error
}

// Update tells the scheduler when to call Block.Update next.
// The zero value is NoFurtherUpdates.
type Update struct {
	After time.Duration
}

// NoFurtherUpdates stops polling for the block.
var NoFurtherUpdates = Update{}

// RescheduleAfter asks for the next Update call d from now.
func RescheduleAfter(d time.Duration) Update {
	return Update{After: d}
}

// Reschedules reports whether the scheduler should call Update again.
func (u Update) Reschedules() bool {
	return u.After > 0
}

// Shared is the read-only context handed to every block at construction.
type Shared struct {
	Theme        *theme.Theme
	ProbeTimeout time.Duration
}
