package model

import (
	"errors"

	"github.com/tinytelemetry/guardbar/internal/block"
)

// ErrUnknownBlock is returned for requests naming a block id the bar does
// not run.
var ErrUnknownBlock = errors.New("unknown block id")

// BarReader provides the read side of a running bar.
type BarReader interface {
	Blocks() []BlockView
}

// BarController routes interactions to blocks by id.
type BarController interface {
	Click(ev block.ClickEvent) error
	Refresh(id string) error
}

// BarAPI is the unified contract for read/write surfaces (HTTP, socket RPC,
// preview TUI).
type BarAPI interface {
	BarReader
	BarController
}
