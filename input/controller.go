// Package input turns mouse, touch and physical key input into key-on and
// key-off events.
//
// A Controller tracks who holds each sounding (channel, key) pair. A pair is
// switched on when its first holder arrives and off when its last holder
// leaves, so releasing the mouse never silences a note still held on the
// computer keyboard. A Controller is not safe for concurrent use; drive it
// from the host's event loop.
package input

import (
	"github.com/google/uuid"

	"go-keyboard/debug"
	"go-keyboard/hittest"
	"go-keyboard/util"
)

// DefaultKeyboardVelocity is the velocity of key presses in the default props.
const DefaultKeyboardVelocity = 0.75

// Event is a key-on or key-off. Velocity is zero for key-off. Gesture pairs
// a key-off with the key-on it ends.
type Event struct {
	ID       float64
	Channel  int
	Velocity float64
	Source   Source
	Gesture  uuid.UUID
}

// Handler receives events. A nil Handler is a no-op.
type Handler func(Event)

// VelocityPolicy decides the velocity of keys entered by a mouse drag.
type VelocityPolicy int

const (
	// RecomputeVelocity hit-tests every key entered during a drag.
	RecomputeVelocity VelocityPolicy = iota
	// KeepPressVelocity reuses the velocity of the initial press.
	KeepPressVelocity
)

// MouseButton of a mouse press. Only the primary button plays.
type MouseButton int

const (
	ButtonPrimary MouseButton = iota
	ButtonSecondary
	ButtonMiddle
)

// TouchPoint is one contact point of a touch event.
type TouchPoint struct {
	ID   int
	X, Y float64
}

// Locator finds the key under a point. *hittest.Tester implements it.
type Locator interface {
	At(x, y float64) (hittest.Hit, bool)
}

// ActiveNote is one holder of a sounding key. Contact tells holders of the
// same source apart: the touch identifier, the physical key code, or zero
// for the mouse.
type ActiveNote struct {
	Source   Source
	Contact  int
	Channel  int
	ID       float64
	Velocity float64
	Gesture  uuid.UUID
}

type holder struct {
	source  Source
	contact int
}

type voice struct {
	channel int
	id      float64
}

// Options configures a Controller.
type Options struct {
	Channel          int
	KeyboardMapping  map[int]float64
	KeyboardVelocity float64
	DragVelocity     VelocityPolicy
	// IgnoreFocus accepts key events while unfocused, as a window-level
	// listener would.
	IgnoreFocus bool
	OnKeyOn     Handler
	OnKeyOff    Handler
}

// Controller is the input state machine.
type Controller struct {
	locator Locator
	opts    Options
	keys    map[float64]bool

	notes []ActiveNote

	mouseDown bool
	// velocity of the first key of the current drag
	pressVelocity float64
	pressKnown    bool

	focused  bool
	disabled bool

	unsubscribe func()
}

// New builds a controller over the given key ids. src may be nil when the
// host has no physical keyboard.
func New(loc Locator, src KeySource, ids []float64, opts Options) *Controller {
	c := &Controller{locator: loc, opts: opts}
	c.opts.KeyboardMapping = copyMapping(opts.KeyboardMapping)
	c.keys = keySet(ids)
	if src != nil {
		c.unsubscribe = src.Subscribe(c.HandleKey)
	}
	return c
}

func keySet(ids []float64) map[float64]bool {
	m := make(map[float64]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

func copyMapping(m map[int]float64) map[int]float64 {
	out := make(map[int]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// SetLocator replaces the hit tester.
func (c *Controller) SetLocator(loc Locator) {
	c.locator = loc
}

// SetKeys replaces the playable key set. Notes on keys that disappeared are
// released.
func (c *Controller) SetKeys(ids []float64) {
	c.keys = keySet(ids)
	for _, n := range c.notes {
		if !c.keys[n.ID] {
			c.release(holder{n.Source, n.Contact}, n.Source)
		}
	}
}

// SetChannel changes the channel of future notes. Held notes keep theirs.
func (c *Controller) SetChannel(ch int) {
	c.opts.Channel = ch
}

func (c *Controller) Channel() int {
	return c.opts.Channel
}

func (c *Controller) SetMapping(m map[int]float64) {
	c.opts.KeyboardMapping = copyMapping(m)
}

func (c *Controller) SetKeyboardVelocity(v float64) {
	c.opts.KeyboardVelocity = v
}

func (c *Controller) SetDragVelocity(p VelocityPolicy) {
	c.opts.DragVelocity = p
}

// SetIgnoreFocus switches between focus-gated and window-level key input.
func (c *Controller) SetIgnoreFocus(ignore bool) {
	c.opts.IgnoreFocus = ignore
}

func (c *Controller) SetHandlers(on, off Handler) {
	c.opts.OnKeyOn = on
	c.opts.OnKeyOff = off
}

// SetDisabled suppresses mouse and touch input and releases their notes.
// Physical keys keep working.
func (c *Controller) SetDisabled(disabled bool) {
	c.disabled = disabled
	if !disabled {
		return
	}
	c.mouseDown = false
	c.releaseSource(Mouse)
	c.releaseSource(Touch)
}

func (c *Controller) Disabled() bool {
	return c.disabled
}

// Focus enables physical key input.
func (c *Controller) Focus() {
	c.focused = true
}

// Blur disables physical key input and releases keys held through it.
func (c *Controller) Blur() {
	c.focused = false
	if !c.opts.IgnoreFocus {
		c.releaseSource(Keyboard)
	}
}

func (c *Controller) Focused() bool {
	return c.focused
}

// ActiveNotes returns the current holders. The slice is never modified
// after it is returned.
func (c *Controller) ActiveNotes() []ActiveNote {
	return c.notes
}

// Sounding reports whether the (channel, id) pair is on.
func (c *Controller) Sounding(channel int, id float64) bool {
	_, ok := c.find(voice{channel, id})
	return ok
}

// ReleaseAll switches off every sounding key.
func (c *Controller) ReleaseAll() {
	c.mouseDown = false
	for _, s := range []Source{Mouse, Touch, Keyboard} {
		c.releaseSource(s)
	}
}

// Close releases every key and unsubscribes from the key source.
func (c *Controller) Close() {
	c.ReleaseAll()
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}

// MouseDown starts a press on the key under the pointer.
func (c *Controller) MouseDown(x, y float64, b MouseButton) {
	if c.disabled || b != ButtonPrimary {
		return
	}
	c.release(holder{Mouse, 0}, Mouse)
	c.mouseDown = true
	c.pressKnown = false
	hit, ok := c.hit(x, y)
	if !ok {
		return
	}
	c.pressVelocity, c.pressKnown = hit.Velocity, true
	c.press(holder{Mouse, 0}, hit.ID, hit.Velocity)
}

// MouseMove slides a held press onto the key under the pointer.
func (c *Controller) MouseMove(x, y float64) {
	if c.disabled || !c.mouseDown {
		return
	}
	h := holder{Mouse, 0}
	hit, ok := c.hit(x, y)
	cur, held := c.heldBy(h)
	debug.LogEvery(20, "input", "mouse move", "x", x, "y", y, "hit", ok)
	if held && ok && cur.ID == hit.ID {
		return
	}
	if held {
		c.release(h, Mouse)
	}
	if !ok {
		return
	}
	v := hit.Velocity
	if !c.pressKnown {
		c.pressVelocity, c.pressKnown = v, true
	}
	if c.opts.DragVelocity == KeepPressVelocity {
		v = c.pressVelocity
	}
	c.press(h, hit.ID, v)
}

// MouseUp ends the press.
func (c *Controller) MouseUp(x, y float64, b MouseButton) {
	if b != ButtonPrimary {
		return
	}
	c.MouseLeave()
}

// MouseLeave ends the press when the pointer leaves the keyboard.
func (c *Controller) MouseLeave() {
	c.mouseDown = false
	c.release(holder{Mouse, 0}, Mouse)
}

// TouchStart plays a key for each new contact.
func (c *Controller) TouchStart(touches ...TouchPoint) {
	if c.disabled {
		return
	}
	for _, t := range touches {
		h := holder{Touch, t.ID}
		if _, held := c.heldBy(h); held {
			continue
		}
		if hit, ok := c.hit(t.X, t.Y); ok {
			c.press(h, hit.ID, hit.Velocity)
		}
	}
}

// TouchMove moves each contact onto the key now under it.
func (c *Controller) TouchMove(touches ...TouchPoint) {
	if c.disabled {
		return
	}
	for _, t := range touches {
		h := holder{Touch, t.ID}
		cur, held := c.heldBy(h)
		if !held {
			continue
		}
		hit, ok := c.hit(t.X, t.Y)
		if ok && hit.ID == cur.ID {
			continue
		}
		c.release(h, Touch)
		if ok {
			c.press(h, hit.ID, hit.Velocity)
		}
	}
}

// TouchEnd releases the keys of the given contacts.
func (c *Controller) TouchEnd(ids ...int) {
	for _, id := range ids {
		c.release(holder{Touch, id}, Touch)
	}
}

// TouchCancel is TouchEnd for contacts the platform took away.
func (c *Controller) TouchCancel(ids ...int) {
	c.TouchEnd(ids...)
}

// HandleKey applies a physical key event. It is the KeySource callback.
func (c *Controller) HandleKey(ev KeyEvent) {
	h := holder{Keyboard, ev.Code}
	if !ev.Down {
		c.release(h, Keyboard)
		return
	}
	if ev.Repeat || ev.Modifiers != 0 {
		return
	}
	if !c.focused && !c.opts.IgnoreFocus {
		return
	}
	if _, held := c.heldBy(h); held {
		return
	}
	id, ok := c.opts.KeyboardMapping[ev.Code]
	if !ok || !c.keys[id] {
		return
	}
	c.press(h, id, util.Clamp(c.opts.KeyboardVelocity, 0, 1))
}

func (c *Controller) hit(x, y float64) (hittest.Hit, bool) {
	if c.locator == nil {
		return hittest.Hit{}, false
	}
	return c.locator.At(x, y)
}

func (c *Controller) heldBy(h holder) (ActiveNote, bool) {
	for _, n := range c.notes {
		if n.Source == h.source && n.Contact == h.contact {
			return n, true
		}
	}
	return ActiveNote{}, false
}

func (c *Controller) find(v voice) (ActiveNote, bool) {
	for _, n := range c.notes {
		if n.Channel == v.channel && n.ID == v.id {
			return n, true
		}
	}
	return ActiveNote{}, false
}

// press adds a holder for id on the active channel, switching the voice on
// when it is the first.
func (c *Controller) press(h holder, id float64, velocity float64) {
	v := voice{c.opts.Channel, id}
	existing, sounding := c.find(v)

	n := ActiveNote{
		Source:   h.source,
		Contact:  h.contact,
		Channel:  v.channel,
		ID:       id,
		Velocity: velocity,
	}
	if sounding {
		n.Gesture = existing.Gesture
	} else {
		n.Gesture = uuid.New()
	}

	notes := make([]ActiveNote, len(c.notes), len(c.notes)+1)
	copy(notes, c.notes)
	c.notes = append(notes, n)

	if sounding {
		debug.Log("input", "key joined", "id", id, "channel", v.channel, "source", h.source)
		return
	}
	debug.Log("input", "key on", "id", id, "channel", v.channel, "velocity", velocity, "source", h.source)
	if c.opts.OnKeyOn != nil {
		c.opts.OnKeyOn(Event{ID: id, Channel: v.channel, Velocity: velocity, Source: h.source, Gesture: n.Gesture})
	}
}

// release drops a holder, switching its voice off when it was the last.
func (c *Controller) release(h holder, src Source) {
	gone, held := c.heldBy(h)
	if !held {
		return
	}
	notes := make([]ActiveNote, 0, len(c.notes))
	for _, n := range c.notes {
		if n.Source == h.source && n.Contact == h.contact {
			continue
		}
		notes = append(notes, n)
	}
	c.notes = notes

	if _, still := c.find(voice{gone.Channel, gone.ID}); still {
		return
	}
	debug.Log("input", "key off", "id", gone.ID, "channel", gone.Channel, "source", src)
	if c.opts.OnKeyOff != nil {
		c.opts.OnKeyOff(Event{ID: gone.ID, Channel: gone.Channel, Source: src, Gesture: gone.Gesture})
	}
}

func (c *Controller) releaseSource(s Source) {
	for _, n := range c.notes {
		if n.Source == s {
			c.release(holder{n.Source, n.Contact}, s)
		}
	}
}
