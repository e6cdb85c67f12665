package input

import (
	"context"
	"sync"

	"github.com/tinytelemetry/guardbar/internal/block"
)

// DefaultMuxBuffer is the default channel buffer size for the multiplexer.
const DefaultMuxBuffer = 256

// Multiplexer merges multiple click sources into a single read-only stream.
type Multiplexer struct {
	ctx    context.Context
	cancel context.CancelFunc

	sources []Source
	events  chan block.ClickEvent

	startOnce sync.Once
	stopOnce  sync.Once
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func NewMultiplexer(parent context.Context, sources []Source, buffer int) *Multiplexer {
	if buffer <= 0 {
		buffer = DefaultMuxBuffer
	}
	ctx, cancel := context.WithCancel(parent)
	return &Multiplexer{
		ctx:     ctx,
		cancel:  cancel,
		sources: sources,
		events:  make(chan block.ClickEvent, buffer),
	}
}

func (m *Multiplexer) Start() {
	m.startOnce.Do(func() {
		if len(m.sources) == 0 {
			m.closeOutput()
			return
		}

		for _, src := range m.sources {
			m.wg.Add(1)
			go m.forward(src)
		}

		go func() {
			m.wg.Wait()
			m.closeOutput()
		}()
	})
}

func (m *Multiplexer) Stop() {
	m.stopOnce.Do(func() {
		m.cancel()
		for _, src := range m.sources {
			src.Stop()
		}
		m.wg.Wait()
		m.closeOutput()
	})
}

func (m *Multiplexer) HasSources() bool {
	return len(m.sources) > 0
}

// Names lists the multiplexed sources in order.
func (m *Multiplexer) Names() []string {
	names := make([]string, 0, len(m.sources))
	for _, src := range m.sources {
		names = append(names, src.Name())
	}
	return names
}

func (m *Multiplexer) Events() <-chan block.ClickEvent {
	return m.events
}

func (m *Multiplexer) forward(src Source) {
	defer m.wg.Done()

	events := src.Events()
	for {
		select {
		case <-m.ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			select {
			case m.events <- ev:
			case <-m.ctx.Done():
				return
			}
		}
	}
}

func (m *Multiplexer) closeOutput() {
	m.closeOnce.Do(func() {
		close(m.events)
	})
}
