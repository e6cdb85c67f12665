package input

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/tinytelemetry/guardbar/internal/block"
)

type fakeSource struct {
	name    string
	events  chan block.ClickEvent
	stopped chan struct{}
}

func newFakeSource(name string, buffer int) *fakeSource {
	return &fakeSource{
		name:    name,
		events:  make(chan block.ClickEvent, buffer),
		stopped: make(chan struct{}),
	}
}

func (s *fakeSource) Events() <-chan block.ClickEvent { return s.events }
func (s *fakeSource) Name() string                    { return s.name }

func (s *fakeSource) Stop() {
	select {
	case <-s.stopped:
		return
	default:
		close(s.stopped)
		close(s.events)
	}
}

func TestMultiplexer_ForwardsFromAllSources(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := newFakeSource("a", 2)
	b := newFakeSource("b", 2)

	mux := NewMultiplexer(ctx, []Source{a, b}, 16)
	if got := mux.Names(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("Names() = %v", got)
	}
	mux.Start()
	defer mux.Stop()

	a.events <- block.ClickEvent{ID: "alpha"}
	b.events <- block.ClickEvent{ID: "beta"}
	a.Stop()
	b.Stop()

	got := map[string]bool{}
	timeout := time.After(2 * time.Second)
	for len(got) < 2 {
		select {
		case ev, ok := <-mux.Events():
			if !ok {
				t.Fatalf("multiplexer closed before receiving expected events: %+v", got)
			}
			got[ev.ID] = true
		case <-timeout:
			t.Fatalf("timed out waiting for multiplexed events: %+v", got)
		}
	}

	if !got["alpha"] || !got["beta"] {
		t.Fatalf("missing expected events: %+v", got)
	}
}

func TestMultiplexer_StopInvokesSourceStop(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := newFakeSource("x", 1)
	mux := NewMultiplexer(ctx, []Source{src}, 8)
	mux.Start()

	mux.Stop()

	select {
	case <-src.stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("expected source Stop() to be called")
	}
}

func TestMultiplexer_NoSourcesClosesImmediately(t *testing.T) {
	t.Parallel()

	mux := NewMultiplexer(context.Background(), nil, 0)
	if mux.HasSources() {
		t.Fatal("HasSources() = true with no sources")
	}
	mux.Start()

	select {
	case _, ok := <-mux.Events():
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("events channel not closed")
	}
}
