// Package scheduler drives every block of the bar from one goroutine.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"sync"
	"time"

	"github.com/tinytelemetry/guardbar/internal/block"
	"github.com/tinytelemetry/guardbar/internal/model"
)

const (
	defaultRetryInterval = model.DefaultRetryInterval
	defaultQueueSize     = 64
)

// Config holds scheduler tunables.
type Config struct {
	// RetryInterval is used after a block's Update fails.
	RetryInterval time.Duration
	// QueueSize bounds pending refresh requests and clicks.
	QueueSize int
}

type entry struct {
	kind  string
	block block.Block
}

// Scheduler owns the timer heap. Update and Click of a block always run on
// the Run goroutine, never concurrently with each other.
type Scheduler struct {
	retry time.Duration

	mu     sync.RWMutex
	blocks map[string]entry
	order  []string

	queue    *timerQueue
	requests chan block.Task
	clicks   chan block.ClickEvent
	redraw   chan struct{}
	done     chan struct{}
	handle   block.Handle

	started  bool // guarded by mu
	stopOnce sync.Once

	now func() time.Time
}

// New creates a scheduler. Blocks are added with Add before Run.
func New(conf ...Config) *Scheduler {
	retry := defaultRetryInterval
	queueSize := defaultQueueSize
	if len(conf) > 0 {
		if conf[0].RetryInterval > 0 {
			retry = conf[0].RetryInterval
		}
		if conf[0].QueueSize > 0 {
			queueSize = conf[0].QueueSize
		}
	}

	s := &Scheduler{
		retry:    retry,
		blocks:   make(map[string]entry),
		queue:    newTimerQueue(),
		requests: make(chan block.Task, queueSize),
		clicks:   make(chan block.ClickEvent, queueSize),
		redraw:   make(chan struct{}, 1),
		done:     make(chan struct{}),
		now:      time.Now,
	}
	s.handle = block.NewHandle(s.requests, s.done)
	return s
}

// Handle returns the request endpoint handed to block factories.
func (s *Scheduler) Handle() block.Handle {
	return s.handle
}

// Add registers a block. It is first updated as soon as Run starts.
func (s *Scheduler) Add(kind string, b block.Block) error {
	id := b.ID()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("scheduler: add %s after start", kind)
	}
	if _, exists := s.blocks[id]; exists {
		return fmt.Errorf("scheduler: block id %s already added", id)
	}
	s.blocks[id] = entry{kind: kind, block: b}
	s.order = append(s.order, id)
	s.queue.Set(id, time.Time{})
	return nil
}

// Len returns the number of blocks.
func (s *Scheduler) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Redraw signals that at least one block may have changed since the last
// receive. Signals are coalesced.
func (s *Scheduler) Redraw() <-chan struct{} {
	return s.redraw
}

// Blocks returns every block's current segments in insertion order.
// Safe to call from any goroutine.
func (s *Scheduler) Blocks() []model.BlockView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	views := make([]model.BlockView, 0, len(s.order))
	for _, id := range s.order {
		e := s.blocks[id]
		views = append(views, model.BlockView{
			ID:       id,
			Kind:     e.kind,
			Segments: e.block.View(),
		})
	}
	return views
}

// Click queues ev for delivery to the block named by ev.ID.
func (s *Scheduler) Click(ev block.ClickEvent) error {
	if !s.known(ev.ID) {
		return fmt.Errorf("%w: %q", model.ErrUnknownBlock, ev.ID)
	}
	select {
	case <-s.done:
		return &block.ScheduleError{BlockID: ev.ID, Err: block.ErrSchedulerStopped}
	default:
	}
	select {
	case s.clicks <- ev:
		return nil
	default:
		return &block.ScheduleError{BlockID: ev.ID, Err: block.ErrQueueFull}
	}
}

// Refresh asks for an immediate Update of block id.
func (s *Scheduler) Refresh(id string) error {
	if !s.known(id) {
		return fmt.Errorf("%w: %q", model.ErrUnknownBlock, id)
	}
	return s.handle.Request(id)
}

// Run drives the blocks until ctx is cancelled. It may only be called once.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New("scheduler: already running")
	}
	s.started = true
	s.mu.Unlock()
	defer s.stop()

	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		s.drainRequests()
		s.runDue(ctx)

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		if _, next, ok := s.queue.Peek(); ok {
			timer.Reset(max(next.Sub(s.now()), 0))
		} else {
			timer.Reset(time.Hour)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		case task := <-s.requests:
			if s.known(task.BlockID) {
				s.queue.Pull(task.BlockID, s.now())
			}
		case ev := <-s.clicks:
			s.dispatchClick(ev)
		}
	}
}

// drainRequests pulls every request already waiting so that repeated
// requests for one block collapse into a single update.
func (s *Scheduler) drainRequests() {
	now := s.now()
	for {
		select {
		case task := <-s.requests:
			if s.known(task.BlockID) {
				s.queue.Pull(task.BlockID, now)
			}
		default:
			return
		}
	}
}

func (s *Scheduler) runDue(ctx context.Context) {
	for {
		id, at, ok := s.queue.Peek()
		if !ok || at.After(s.now()) || ctx.Err() != nil {
			return
		}
		s.queue.Pop()

		e, ok := s.lookup(id)
		if !ok {
			continue
		}

		upd, err := s.update(ctx, e.block)
		switch {
		case err != nil:
			log.Printf("scheduler: %s %s: update failed, retrying in %s: %v", e.kind, id, s.retry, err)
			s.queue.Set(id, s.now().Add(s.retry))
		case upd.Reschedules():
			s.queue.Set(id, s.now().Add(upd.After))
		default:
			log.Printf("scheduler: %s %s: no further updates", e.kind, id)
		}
		s.notify()
	}
}

func (s *Scheduler) update(ctx context.Context, b block.Block) (upd block.Update, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return b.Update(ctx)
}

func (s *Scheduler) dispatchClick(ev block.ClickEvent) {
	e, ok := s.lookup(ev.ID)
	if !ok {
		log.Printf("scheduler: click for unknown block %q dropped", ev.ID)
		return
	}

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return e.block.Click(ev)
	}()
	if err != nil {
		log.Printf("scheduler: %s %s: click: %v", e.kind, ev.ID, err)
	}
	s.notify()
}

func (s *Scheduler) notify() {
	select {
	case s.redraw <- struct{}{}:
	default:
	}
}

func (s *Scheduler) lookup(id string) (entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.blocks[id]
	return e, ok
}

func (s *Scheduler) known(id string) bool {
	_, ok := s.lookup(id)
	return ok
}

func (s *Scheduler) stop() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
}
