package hittest

import (
	"go-keyboard/layout"
	"go-keyboard/util"
)

// Hit is a key under the pointer and the velocity implied by where on the
// key the pointer landed.
type Hit struct {
	ID       float64
	Velocity float64
}

// Tester resolves pointer coordinates to keys.
type Tester struct {
	provider    LayoutProvider
	orientation layout.Orientation
}

func NewTester(p LayoutProvider, o layout.Orientation) *Tester {
	if o == "" {
		o = layout.Normal
	}
	return &Tester{provider: p, orientation: o}
}

func (t *Tester) SetOrientation(o layout.Orientation) {
	t.orientation = o
}

func (t *Tester) SetProvider(p LayoutProvider) {
	t.provider = p
}

// At returns the key under (x, y). Velocity grows from 0 at the key's far end
// to 1 at the near end. ok is false when the point is off the keyboard.
func (t *Tester) At(x, y float64) (hit Hit, ok bool) {
	if t.provider == nil {
		return Hit{}, false
	}
	kb, ok := t.provider.KeyBoundsAt(x, y)
	if !ok {
		return Hit{}, false
	}
	v := t.orientation.Depth(kb.Rect, x, y)
	return Hit{ID: kb.ID, Velocity: util.Clamp(v, 0, 1)}, true
}
