package layout

import (
	"errors"
	"fmt"
)

var ErrUnknownOrientation = errors.New("unknown orientation")

// Orientation rotates the whole keyboard on screen. Normal has pitch rising
// left to right and the far end of the keys at the top.
type Orientation string

const (
	Normal    Orientation = "normal"
	Rotate90  Orientation = "rotate-90"
	Rotate180 Orientation = "rotate-180"
	Rotate270 Orientation = "rotate-270"
)

func ParseOrientation(s string) (Orientation, error) {
	switch o := Orientation(s); o {
	case Normal, Rotate90, Rotate180, Rotate270:
		return o, nil
	case "":
		return Normal, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOrientation, s)
}

// Rect is an axis-aligned screen rectangle. Edges are inclusive.
type Rect struct {
	Left, Top, Right, Bottom float64
}

func (r Rect) Width() float64  { return r.Right - r.Left }
func (r Rect) Height() float64 { return r.Bottom - r.Top }

func (r Rect) Contains(x, y float64) bool {
	return r.Left <= x && x <= r.Right && r.Top <= y && y <= r.Bottom
}

// Center of the rectangle.
func (r Rect) Center() (x, y float64) {
	return (r.Left + r.Right) / 2, (r.Top + r.Bottom) / 2
}

// LengthExtent is the size of b along the keys' long axis.
func (o Orientation) LengthExtent(b Rect) float64 {
	if o == Rotate90 || o == Rotate270 {
		return b.Width()
	}
	return b.Height()
}

// Place maps a box given in keyboard-local fractions (u along the pitch axis,
// v along the key from its far end) into screen space inside b.
func (o Orientation) Place(b Rect, u0, u1, v0, v1 float64) Rect {
	w, h := b.Width(), b.Height()
	switch o {
	case Rotate90:
		return Rect{b.Right - v1*w, b.Top + u0*h, b.Right - v0*w, b.Top + u1*h}
	case Rotate180:
		return Rect{b.Right - u1*w, b.Bottom - v1*h, b.Right - u0*w, b.Bottom - v0*h}
	case Rotate270:
		return Rect{b.Left + v0*w, b.Bottom - u1*h, b.Left + v1*w, b.Bottom - u0*h}
	}
	return Rect{b.Left + u0*w, b.Top + v0*h, b.Left + u1*w, b.Top + v1*h}
}

// Depth is how far (x, y) lies along a key rect, measured from the key's far
// end: 0 at the far end, 1 at the near end.
func (o Orientation) Depth(r Rect, x, y float64) float64 {
	switch o {
	case Rotate90:
		return ratio(r.Right-x, r.Width())
	case Rotate180:
		return ratio(r.Bottom-y, r.Height())
	case Rotate270:
		return ratio(x-r.Left, r.Width())
	}
	return ratio(y-r.Top, r.Height())
}

func ratio(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
