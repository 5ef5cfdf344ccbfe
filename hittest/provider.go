// Package hittest maps pointer coordinates onto keys of a painted keyboard.
//
// Geometry comes from a Scene, the rendering collaborator that knows where
// octave containers and keys ended up on screen. A LayoutProvider answers
// point queries either straight from the scene (Live) or from a snapshot
// refreshed once per frame (Cached). None of the types here are safe for
// concurrent use; they are meant to be driven from a single event loop.
package hittest

import (
	"sort"

	"go-keyboard/layout"
)

// KeyElement is a painted key.
type KeyElement struct {
	ID     float64
	Rect   layout.Rect
	ZIndex int
}

// OctaveElement is a painted octave container with its keys in document order.
type OctaveElement struct {
	Index  int
	Rect   layout.Rect
	ZIndex int
	Keys   []KeyElement
}

// Scene reports the painted octave containers in document order.
type Scene interface {
	Octaves() []OctaveElement
}

// KeyBounds is a key found under a point.
type KeyBounds struct {
	ID   float64
	Rect layout.Rect
}

// LayoutProvider finds the key under a screen point.
type LayoutProvider interface {
	KeyBoundsAt(x, y float64) (KeyBounds, bool)
}

// Live queries the scene on every call.
type Live struct {
	scene Scene
}

func NewLive(scene Scene) *Live {
	return &Live{scene: scene}
}

func (l *Live) KeyBoundsAt(x, y float64) (KeyBounds, bool) {
	return find(l.scene.Octaves(), x, y)
}

// Cached answers from a snapshot of the scene. Invalidate schedules a single
// re-snapshot on the next frame; until then queries see the old geometry.
type Cached struct {
	scene    Scene
	frames   *FrameQueue
	snapshot []OctaveElement
	pending  bool
}

// NewCached takes an initial snapshot immediately.
func NewCached(scene Scene, frames *FrameQueue) *Cached {
	c := &Cached{scene: scene, frames: frames}
	c.Refresh()
	return c
}

// Refresh re-reads the scene now.
func (c *Cached) Refresh() {
	c.snapshot = snapshot(c.scene.Octaves())
	c.pending = false
}

// Invalidate marks the snapshot stale. Repeated calls before the next frame
// schedule one refresh.
func (c *Cached) Invalidate() {
	if c.pending {
		return
	}
	c.pending = true
	c.frames.RequestFrame(c.Refresh)
}

// Stale reports whether a refresh is scheduled but has not run yet.
func (c *Cached) Stale() bool {
	return c.pending
}

func (c *Cached) KeyBoundsAt(x, y float64) (KeyBounds, bool) {
	return find(c.snapshot, x, y)
}

func snapshot(octs []OctaveElement) []OctaveElement {
	out := make([]OctaveElement, len(octs))
	for i, o := range octs {
		out[i] = o
		out[i].Keys = append([]KeyElement(nil), o.Keys...)
	}
	return out
}

// find descends into the topmost octave containing the point, then returns
// its topmost key there. Ties in z-index go to the element later in document
// order, the one painted last.
func find(octs []OctaveElement, x, y float64) (KeyBounds, bool) {
	for _, oi := range topmost(len(octs), func(i int) int { return octs[i].ZIndex }) {
		oct := octs[oi]
		if !oct.Rect.Contains(x, y) {
			continue
		}
		keys := oct.Keys
		for _, ki := range topmost(len(keys), func(i int) int { return keys[i].ZIndex }) {
			if keys[ki].Rect.Contains(x, y) {
				return KeyBounds{ID: keys[ki].ID, Rect: keys[ki].Rect}, true
			}
		}
	}
	return KeyBounds{}, false
}

// topmost returns indexes 0..n-1 ordered by z descending, later first on ties.
func topmost(n int, z func(int) int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = n - 1 - i
	}
	sort.SliceStable(idx, func(a, b int) bool { return z(idx[a]) > z(idx[b]) })
	return idx
}

// FrameQueue runs deferred work once per frame. The renderer calls Flush
// after painting; work requested during a flush runs on the following frame.
type FrameQueue struct {
	tasks []func()
}

func (q *FrameQueue) RequestFrame(fn func()) {
	q.tasks = append(q.tasks, fn)
}

// Flush runs the queued tasks and reports how many ran.
func (q *FrameQueue) Flush() int {
	tasks := q.tasks
	q.tasks = nil
	for _, fn := range tasks {
		fn()
	}
	return len(tasks)
}

// Pending is the number of queued tasks.
func (q *FrameQueue) Pending() int {
	return len(q.tasks)
}
