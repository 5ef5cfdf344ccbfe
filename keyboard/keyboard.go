// Package keyboard is the on-screen keyboard widget: it owns the key list,
// its layout, hit testing and the input controller, and rebuilds them when
// its props change.
package keyboard

import (
	"go-keyboard/debug"
	"go-keyboard/hittest"
	"go-keyboard/input"
	"go-keyboard/layout"
	"go-keyboard/theme"
)

type Keyboard struct {
	props  Props
	keys   []layout.Key
	layout layout.Layout

	scene  *hittest.LayoutScene
	frames *hittest.FrameQueue
	cache  *hittest.Cached
	tester *hittest.Tester
	ctrl   *input.Controller
}

// New validates p and builds the widget. src delivers physical key events
// and may be nil.
func New(p Props, src input.KeySource) (*Keyboard, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	kb := &Keyboard{frames: &hittest.FrameQueue{}}
	if err := kb.rebuild(p, true); err != nil {
		return nil, err
	}

	kb.scene = &hittest.LayoutScene{Layout: kb.layout, Orientation: orientation(p)}
	kb.cache = hittest.NewCached(kb.scene, kb.frames)
	kb.tester = hittest.NewTester(kb.provider(p), orientation(p))
	kb.ctrl = input.New(kb.tester, src, ids(kb.keys), input.Options{
		Channel:          p.ActiveChannel,
		KeyboardMapping:  p.KeyboardMapping,
		KeyboardVelocity: p.KeyboardVelocity,
		DragVelocity:     p.DragVelocity,
		IgnoreFocus:      p.IgnoreFocus,
		OnKeyOn:          p.OnKeyOn,
		OnKeyOff:         p.OnKeyOff,
	})
	kb.ctrl.SetDisabled(p.Disabled)
	kb.props = p
	return kb, nil
}

func orientation(p Props) layout.Orientation {
	if p.Orientation == "" {
		return layout.Normal
	}
	return p.Orientation
}

func (kb *Keyboard) provider(p Props) hittest.LayoutProvider {
	if p.LiveHitTest {
		return hittest.NewLive(kb.scene)
	}
	return kb.cache
}

func ids(keys []layout.Key) []float64 {
	out := make([]float64, len(keys))
	for i, k := range keys {
		out[i] = k.ID
	}
	return out
}

// rebuild recomputes keys when the span changed and the layout always.
func (kb *Keyboard) rebuild(p Props, spanChanged bool) error {
	keys := kb.keys
	if spanChanged {
		var err error
		keys, err = layout.BuildKeys(p.StartKey, p.EndKey, p.OctaveDivision)
		if err != nil {
			return err
		}
	}
	l, err := layout.Compute(keys, p.layoutOptions())
	if err != nil {
		return err
	}
	kb.keys = keys
	kb.layout = l
	debug.Log("keyboard", "layout rebuilt", "keys", len(keys), "octaves", len(l.Octaves), "span", spanChanged)
	return nil
}

// Configure applies new props. Nothing changes when p is invalid.
func (kb *Keyboard) Configure(p Props) error {
	if err := p.Validate(); err != nil {
		return err
	}
	old := kb.props
	spanChanged := p.StartKey != old.StartKey || p.EndKey != old.EndKey || p.OctaveDivision != old.OctaveDivision
	if err := kb.rebuild(p, spanChanged); err != nil {
		return err
	}

	kb.scene.Layout = kb.layout
	kb.scene.Orientation = orientation(p)
	kb.cache.Invalidate()
	kb.tester.SetOrientation(orientation(p))
	kb.tester.SetProvider(kb.provider(p))

	if spanChanged {
		kb.ctrl.SetKeys(ids(kb.keys))
	}
	kb.ctrl.SetChannel(p.ActiveChannel)
	kb.ctrl.SetMapping(p.KeyboardMapping)
	kb.ctrl.SetKeyboardVelocity(p.KeyboardVelocity)
	kb.ctrl.SetDragVelocity(p.DragVelocity)
	kb.ctrl.SetIgnoreFocus(p.IgnoreFocus)
	kb.ctrl.SetHandlers(p.OnKeyOn, p.OnKeyOff)
	kb.ctrl.SetDisabled(p.Disabled)
	kb.props = p
	return nil
}

func (kb *Keyboard) Props() Props {
	return kb.props
}

// Controller exposes the input state machine for the host's event loop.
func (kb *Keyboard) Controller() *input.Controller {
	return kb.ctrl
}

func (kb *Keyboard) Layout() layout.Layout {
	return kb.layout
}

// SetBounds tells the widget where it was painted. Hit testing picks the new
// bounds up on the next frame.
func (kb *Keyboard) SetBounds(b layout.Rect) {
	if kb.scene.Bounds == b {
		return
	}
	kb.scene.Bounds = b
	kb.cache.Invalidate()
}

func (kb *Keyboard) Bounds() layout.Rect {
	return kb.scene.Bounds
}

// Frame runs work deferred to the end of a paint.
func (kb *Keyboard) Frame() {
	kb.frames.Flush()
}

// Rects is the painted geometry for the current bounds.
func (kb *Keyboard) Rects() []layout.OctaveRect {
	return kb.layout.Rects(kb.scene.Bounds, orientation(kb.props))
}

// SetKeysOn replaces the host-driven highlighted keys.
func (kb *Keyboard) SetKeysOn(notes []Note) error {
	for _, n := range notes {
		if err := n.validate(); err != nil {
			return err
		}
	}
	kb.props.KeysOn = append([]Note(nil), notes...)
	return nil
}

// Keys returns the key list with sounding state merged in. Keys played
// locally win over host-supplied ones.
func (kb *Keyboard) Keys() []layout.Key {
	out := make([]layout.Key, len(kb.keys))
	copy(out, kb.keys)

	index := make(map[float64]int, len(out))
	for i, k := range out {
		index[k.ID] = i
	}
	mark := func(id float64, ch int, v float64) {
		if i, ok := index[id]; ok {
			out[i].On = true
			out[i].Channel = ch
			out[i].Velocity = v
		}
	}
	for _, n := range kb.props.KeysOn {
		mark(n.ID, n.Channel, n.Velocity)
	}
	for _, n := range kb.ctrl.ActiveNotes() {
		mark(n.ID, n.Channel, n.Velocity)
	}
	return out
}

// ChannelColor is the highlight colour of a channel.
func (kb *Keyboard) ChannelColor(ch int) theme.RGB {
	if n := len(kb.props.ChannelColors); n > 0 {
		return kb.props.ChannelColors[((ch%n)+n)%n]
	}
	return theme.DefaultChannels().Index(ch)
}

// Close releases every sounding key and detaches from the key source.
func (kb *Keyboard) Close() {
	kb.ctrl.Close()
}
