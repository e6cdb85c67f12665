// Package input collects click events from the outside world.
package input

import "github.com/tinytelemetry/guardbar/internal/block"

// Source is a unified interface for click event inputs.
type Source interface {
	Events() <-chan block.ClickEvent // read-only channel of click events
	Stop()                           // graceful shutdown
	Name() string                    // "stdin", ...
}
