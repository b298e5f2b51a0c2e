// Package events carries payload-free notifications from the daemon core to
// the front end. Notifications are advisory: receivers re-query the current
// document state, so a dropped or duplicated event costs at most one
// redundant render.
package events

import "sync"

// Event names the two front-end notifications.
type Event string

const (
	// FileLoaded fires when a new document replaced the previous one (or none).
	FileLoaded Event = "file-loaded"
	// FileChanged fires when the current document was re-read after an
	// external edit.
	FileChanged Event = "file-changed"
)

// Bus is the dispatch capability handed to the daemon controller. The two
// implementations cover the two front-end wirings: a direct in-process call
// (Func) and a message-passing handoff (Channel).
type Bus interface {
	Emit(Event)
}

// Func adapts a plain function into a Bus for in-process front ends.
type Func func(Event)

func (f Func) Emit(e Event) { f(e) }

// Discard ignores all events. Used when no front end is attached.
var Discard Bus = Func(func(Event) {})

// Channel is a message-passing Bus with a bounded queue. Emit never blocks:
// when the subscriber lags, events are dropped rather than stalling the
// accept loop or the watcher.
type Channel struct {
	ch   chan Event
	once sync.Once
}

// NewChannel creates a Channel bus with the given queue capacity.
func NewChannel(capacity int) *Channel {
	if capacity <= 0 {
		capacity = 16
	}
	return &Channel{ch: make(chan Event, capacity)}
}

func (c *Channel) Emit(e Event) {
	select {
	case c.ch <- e:
	default:
	}
}

// Events returns the receive side for the subscribing front end.
func (c *Channel) Events() <-chan Event {
	return c.ch
}

// Close releases the channel; Emit must not be called after Close.
func (c *Channel) Close() {
	c.once.Do(func() { close(c.ch) })
}
