package hittest

import "go-keyboard/layout"

// LayoutScene paints a computed layout into Bounds. Renderers that draw
// exactly what layout.Rects returns use it as their Scene.
type LayoutScene struct {
	Layout      layout.Layout
	Bounds      layout.Rect
	Orientation layout.Orientation
}

func (s *LayoutScene) Octaves() []OctaveElement {
	rects := s.Layout.Rects(s.Bounds, s.Orientation)
	out := make([]OctaveElement, len(rects))
	for i, o := range rects {
		el := OctaveElement{Index: o.Index, Rect: o.Rect, ZIndex: o.ZIndex}
		el.Keys = make([]KeyElement, len(o.Keys))
		for j, k := range o.Keys {
			el.Keys[j] = KeyElement{ID: k.ID, Rect: k.Rect, ZIndex: k.ZIndex}
		}
		out[i] = el
	}
	return out
}
