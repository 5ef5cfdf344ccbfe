// Package render draws a keyboard layout to a raster image.
package render

import (
	"fmt"
	"image"
	"io"
	"sort"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"

	"go-keyboard/keyboard"
	"go-keyboard/layout"
	"go-keyboard/pitch"
	"go-keyboard/theme"
)

// Options control a snapshot.
type Options struct {
	Width, Height int
	Theme         *theme.Theme
	// Labels writes the octave name on every C.
	Labels bool
}

func (o Options) theme() *theme.Theme {
	if o.Theme == nil {
		return theme.Default()
	}
	return o.Theme
}

// KeyColor is the fill of a key: its channel colour while sounding, dimmed
// for low velocities, otherwise the palette's natural or accidental tone.
func KeyColor(th *theme.Theme, kind pitch.Kind, state layout.Key, channel theme.RGB) theme.RGB {
	natural := kind.Row == pitch.RowNone
	if !state.On {
		if natural {
			return th.RGB(theme.RoleNatural)
		}
		return th.RGB(theme.RoleAccidental)
	}
	c := theme.Shade(channel, (1-state.Velocity)*0.4)
	if !natural {
		c = theme.Shade(c, 0.2)
	}
	return c
}

// Painted orders octaves and their keys back to front.
func Painted(octaves []layout.OctaveRect) []layout.OctaveRect {
	out := make([]layout.OctaveRect, len(octaves))
	copy(out, octaves)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ZIndex < out[j].ZIndex })
	for i := range out {
		keys := make([]layout.KeyRect, len(out[i].Keys))
		copy(keys, out[i].Keys)
		sort.SliceStable(keys, func(a, b int) bool { return keys[a].ZIndex < keys[b].ZIndex })
		out[i].Keys = keys
	}
	return out
}

// Draw paints kb at its current bounds.
func Draw(dc *gg.Context, kb *keyboard.Keyboard, opts Options) error {
	th := opts.theme()

	state := make(map[float64]layout.Key)
	for _, k := range kb.Keys() {
		state[k.ID] = k
	}

	bg := th.RGB(theme.RoleBG)
	setRGB(dc, bg)
	dc.Clear()

	octaves := Painted(kb.Rects())
	for _, oct := range octaves {
		for _, k := range oct.Keys {
			s := state[k.ID]
			r := k.Rect
			dc.DrawRectangle(r.Left, r.Top, r.Width(), r.Height())
			setRGB(dc, KeyColor(th, k.Kind, s, kb.ChannelColor(s.Channel)))
			dc.FillPreserve()
			setRGB(dc, bg)
			dc.SetLineWidth(1)
			dc.Stroke()
		}
	}

	if opts.Labels {
		return drawLabels(dc, th, octaves, kb.Props().Orientation)
	}
	return nil
}

func drawLabels(dc *gg.Context, th *theme.Theme, octaves []layout.OctaveRect, o layout.Orientation) error {
	font, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return err
	}

	var size float64
	for _, oct := range octaves {
		for _, k := range oct.Keys {
			if isC(k) {
				w := k.Rect.Width()
				if o == layout.Rotate90 || o == layout.Rotate270 {
					w = k.Rect.Height()
				}
				size = w / 3
				break
			}
		}
		if size > 0 {
			break
		}
	}
	if size < 4 {
		return nil
	}

	dc.SetFontFace(truetype.NewFace(font, &truetype.Options{Size: size}))
	setRGB(dc, th.RGB(theme.RoleFG))
	for _, oct := range octaves {
		for _, k := range oct.Keys {
			if !isC(k) {
				continue
			}
			x, y := labelAnchor(k.Rect, o, size)
			dc.DrawStringAnchored(pitch.Name(k.ID), x, y, 0.5, 0.5)
		}
	}
	return nil
}

func isC(k layout.KeyRect) bool {
	return k.Kind.Row == pitch.RowNone && pitch.Class(k.ID) == 0
}

// labelAnchor sits near the near end of the key, where accidentals do not
// cover it.
func labelAnchor(r layout.Rect, o layout.Orientation, size float64) (float64, float64) {
	cx, cy := r.Center()
	switch o {
	case layout.Rotate90:
		return r.Left + size, cy
	case layout.Rotate180:
		return cx, r.Top + size
	case layout.Rotate270:
		return r.Right - size, cy
	}
	return cx, r.Bottom - size
}

// Image renders kb into a new image of the given size. The keyboard's
// bounds are moved to the image.
func Image(kb *keyboard.Keyboard, opts Options) (image.Image, error) {
	dc, err := snapshot(kb, opts)
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// PNG writes a snapshot of kb to w.
func PNG(w io.Writer, kb *keyboard.Keyboard, opts Options) error {
	dc, err := snapshot(kb, opts)
	if err != nil {
		return err
	}
	return dc.EncodePNG(w)
}

// SavePNG writes a snapshot of kb to path.
func SavePNG(path string, kb *keyboard.Keyboard, opts Options) error {
	dc, err := snapshot(kb, opts)
	if err != nil {
		return err
	}
	return dc.SavePNG(path)
}

func snapshot(kb *keyboard.Keyboard, opts Options) (*gg.Context, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("image size %dx%d", opts.Width, opts.Height)
	}
	kb.SetBounds(layout.Rect{Right: float64(opts.Width), Bottom: float64(opts.Height)})
	dc := gg.NewContext(opts.Width, opts.Height)
	return dc, Draw(dc, kb, opts)
}

func setRGB(dc *gg.Context, c theme.RGB) {
	dc.SetRGB255(int(c[0]), int(c[1]), int(c[2]))
}
