// Package widget holds the visual state blocks render into the bar.
package widget

import "sync/atomic"

// Segment is one renderable unit of a block. Segments are values; a rendered
// segment never changes after it has been handed out.
type Segment struct {
	Text  string `json:"text"`
	Icon  string `json:"icon"`
	State State  `json:"state"`
}

// TextWidget holds the current text, icon key and state of a block.
//
// Setters are called only from the owning block's Update or Click. Each change
// publishes a fresh Segment so Segment() never waits on a writer.
type TextWidget struct {
	current atomic.Pointer[Segment]
}

// NewText returns an inert widget: no text, Idle state, the given icon key.
func NewText(icon string) *TextWidget {
	w := &TextWidget{}
	w.current.Store(&Segment{Icon: icon, State: Idle})
	return w
}

// SetText replaces the display text. Setting the same value is a no-op.
func (w *TextWidget) SetText(text string) {
	w.mutate(func(s *Segment) { s.Text = text })
}

// SetState replaces the severity state. Setting the same value is a no-op.
func (w *TextWidget) SetState(state State) {
	w.mutate(func(s *Segment) { s.State = state })
}

// SetIcon replaces the icon key. Setting the same value is a no-op.
func (w *TextWidget) SetIcon(icon string) {
	w.mutate(func(s *Segment) { s.Icon = icon })
}

// Segment returns the current snapshot.
func (w *TextWidget) Segment() Segment {
	return *w.current.Load()
}

func (w *TextWidget) mutate(fn func(*Segment)) {
	old := w.current.Load()
	next := *old
	fn(&next)
	if next == *old {
		return
	}
	w.current.Store(&next)
}
