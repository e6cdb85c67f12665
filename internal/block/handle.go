package block

// Task asks the scheduler to run a block's Update as soon as possible.
type Task struct {
	BlockID string
}

// Handle is the send side of the scheduler's request queue. It is safe for
// concurrent use and never blocks; the zero Handle reports every request as
// ErrSchedulerStopped.
type Handle struct {
	requests chan<- Task
	done     <-chan struct{}
}

// NewHandle wraps a request channel. Once done is closed every request fails
// with ErrSchedulerStopped.
func NewHandle(requests chan<- Task, done <-chan struct{}) Handle {
	return Handle{requests: requests, done: done}
}

// Request enqueues an out-of-band Update for id.
func (h Handle) Request(id string) error {
	if h.requests == nil {
		return &ScheduleError{BlockID: id, Err: ErrSchedulerStopped}
	}
	select {
	case <-h.done:
		return &ScheduleError{BlockID: id, Err: ErrSchedulerStopped}
	default:
	}

	select {
	case h.requests <- Task{BlockID: id}:
		return nil
	default:
		return &ScheduleError{BlockID: id, Err: ErrQueueFull}
	}
}
