package block

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownKind is wrapped by ConfigError when no factory is
	// registered for a block kind.
	ErrUnknownKind = errors.New("unknown block kind")

	// ErrSchedulerStopped is wrapped by ScheduleError once the scheduler no
	// longer consumes requests.
	ErrSchedulerStopped = errors.New("scheduler stopped")

	// ErrQueueFull is wrapped by ScheduleError when the request queue has no
	// room. The request is dropped.
	ErrQueueFull = errors.New("request queue full")
)

// ConfigError rejects a block configuration. The block is never created.
type ConfigError struct {
	Block string
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("block %s: config %s: %v", e.Block, e.Field, e.Err)
	}
	return fmt.Sprintf("block %s: config: %v", e.Block, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ScheduleError reports a failed request to the scheduler.
type ScheduleError struct {
	BlockID string
	Err     error
}

func (e *ScheduleError) Error() string {
	return fmt.Sprintf("block %s: schedule: %v", e.BlockID, e.Err)
}

func (e *ScheduleError) Unwrap() error { return e.Err }
