package model

import "github.com/tinytelemetry/guardbar/internal/widget"

// BlockView is a snapshot of one block as the renderer sees it.
// It is the canonical type for rendering, transport (HTTP, socket RPC) and display.
type BlockView struct {
	ID       string           `json:"id"`
	Kind     string           `json:"kind"`
	Segments []widget.Segment `json:"segments"`
}
