// Package viewer owns the daemon's shared document state. The Controller is
// the single writer: the socket accept loop, the file watcher, and front-end
// queries all funnel through it.
package viewer

import (
	"log"
	"sync"

	"github.com/b/mview/pkg/document"
	"github.com/b/mview/pkg/events"
	"github.com/b/mview/pkg/watcher"
)

// Controller holds the currently displayed document and swaps it atomically
// on peer handoffs and watcher reloads. File I/O always happens before the
// lock is taken; only the pointer swap and snapshot copy run under it.
type Controller struct {
	mu  sync.Mutex
	doc *document.Document

	watch *watcher.Watcher
	bus   events.Bus
	opts  document.LoadOptions
}

// New creates a Controller with no document loaded. A nil bus discards
// notifications.
func New(opts document.LoadOptions, bus events.Bus) *Controller {
	if bus == nil {
		bus = events.Discard
	}
	return &Controller{
		watch: watcher.New(),
		bus:   bus,
		opts:  opts,
	}
}

// Load validates and reads the file at path, then replaces the current
// document and re-targets the watcher. On any validation error the previous
// document stays untouched. Watch setup failure is not fatal: reload then
// degrades to daemon-handoff only.
func (c *Controller) Load(path string) error {
	doc, err := document.Load(path, c.opts)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.doc = doc
	c.mu.Unlock()

	if err := c.watch.Start(doc.Path, c.onWatchedChange); err != nil {
		log.Printf("[viewer] cannot watch %s: %v (reloads now require a new handoff)", doc.Path, err)
	}
	return nil
}

// HandlePeerPath is the daemon transport's inbound-path callback. The path
// has already passed the transport's checks but is re-validated here; the
// transport and a racing watcher event may both be in flight.
func (c *Controller) HandlePeerPath(path string) {
	if err := c.Load(path); err != nil {
		log.Printf("[viewer] rejected peer path %s: %v", path, err)
		return
	}
	c.bus.Emit(events.FileLoaded)
}

// onWatchedChange re-reads the current document's own path after an external
// edit. Failures (file deleted mid-edit, transient read error) keep the last
// good document so the front end never flickers to an empty state.
func (c *Controller) onWatchedChange() {
	c.mu.Lock()
	if c.doc == nil {
		c.mu.Unlock()
		return
	}
	path := c.doc.Path
	c.mu.Unlock()

	doc, err := document.Load(path, c.opts)
	if err != nil {
		log.Printf("[viewer] reload of %s failed, keeping previous content: %v", path, err)
		return
	}

	c.mu.Lock()
	c.doc = doc
	c.mu.Unlock()

	c.bus.Emit(events.FileChanged)
}

// Snapshot returns a copy of the current document, or ok=false when nothing
// is loaded. The sections slice is shared but never mutated after Load.
func (c *Controller) Snapshot() (document.Document, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.doc == nil {
		return document.Document{}, false
	}
	return *c.doc, true
}

// Close stops the file watcher. The controller remains queryable.
func (c *Controller) Close() {
	c.watch.Stop()
}
