package layout

import (
	"fmt"
	"math"
	"sort"

	"go-keyboard/pitch"
)

// Stacking order of key classes. Higher is painted later and wins hit tests.
const (
	ZNatural    = 0
	ZAccidental = 1
	ZRow        = 2
	ZInBetween  = 3
)

// DefaultAccidentalHeight matches a standard piano's black key length.
var DefaultAccidentalHeight = Percentage(65)

// Options controls geometry computation.
type Options struct {
	Division         int
	Spacing          Spacing
	AccidentalHeight Length
	// InBetweenHeight defaults to 5/6 of AccidentalHeight when zero.
	InBetweenHeight Length
}

func (o Options) validate() error {
	if err := pitch.ValidateDivision(o.Division); err != nil {
		return err
	}
	if _, err := ParseSpacing(string(o.Spacing)); err != nil {
		return err
	}
	return nil
}

// KeyGeometry places one key inside its octave container. Left and Width are
// fractions of the container's width; Top and Height run along the key.
type KeyGeometry struct {
	ID     float64
	Kind   pitch.Kind
	Left   float64
	Width  float64
	Top    Length
	Height Length
	ZIndex int
}

// Octave is one container of keys.
type Octave struct {
	Index int
	// Basis is the container width in octave units. Partial octaves at the
	// span edges are narrower than 1.
	Basis float64
	// Start is the sum of the bases of all octaves to the left.
	Start  float64
	ZIndex int
	Keys   []KeyGeometry
}

// Layout is the geometry of a whole keyboard span.
type Layout struct {
	Octaves []Octave
	// Width is the total width in octave units.
	Width float64
}

// Compute lays out keys, which are grouped by octave in ascending id order.
func Compute(keys []Key, opts Options) (Layout, error) {
	if err := opts.validate(); err != nil {
		return Layout{}, err
	}
	if opts.Spacing == "" {
		opts.Spacing = Standard
	}
	if opts.AccidentalHeight.IsZero() {
		opts.AccidentalHeight = DefaultAccidentalHeight
	}
	if len(keys) == 0 {
		return Layout{}, fmt.Errorf("%w: no keys", ErrInvalidRange)
	}

	ids := make([]float64, len(keys))
	for i, k := range keys {
		ids[i] = k.ID
	}
	sort.Float64s(ids)

	groups := groupOctaves(ids, opts.Division)
	var l Layout
	for i, g := range groups {
		oct := computeOctave(g, opts)
		oct.Start = l.Width
		oct.ZIndex = len(groups) - i
		l.Width += oct.Basis
		l.Octaves = append(l.Octaves, oct)
	}
	return l, nil
}

type located struct {
	id   float64
	kind pitch.Kind
}

type octaveGroup struct {
	index int
	keys  []located
}

func groupOctaves(ids []float64, div int) []octaveGroup {
	var groups []octaveGroup
	for _, id := range ids {
		octave, _ := pitch.Locate(div, id)
		kind := pitch.Classify(div, id)
		if n := len(groups); n == 0 || groups[n-1].index != octave {
			groups = append(groups, octaveGroup{index: octave})
		}
		g := &groups[len(groups)-1]
		g.keys = append(g.keys, located{id: id, kind: kind})
	}
	return groups
}

func computeOctave(g octaveGroup, opts Options) Octave {
	first := g.keys[0].kind.Placement
	last := g.keys[len(g.keys)-1].kind.Placement
	sp := opts.Spacing

	origin := sp.Offset(first)
	basis := math.Min(sp.Offset(last)+sp.Width(last), 1) - origin
	if basis <= 0 {
		// a lone key folded onto the next octave's C
		basis = sp.Width(last)
	}

	oct := Octave{Index: g.index, Basis: basis}
	for _, k := range g.keys {
		p := k.kind.Placement
		top, height := band(k.kind.Row, opts)
		// B# would reach past the octave; it stops at the next C
		right := math.Min(sp.Offset(p)+sp.Width(p), 1)
		oct.Keys = append(oct.Keys, KeyGeometry{
			ID:     k.id,
			Kind:   k.kind,
			Left:   (sp.Offset(p) - origin) / basis,
			Width:  (right - sp.Offset(p)) / basis,
			Top:    top,
			Height: height,
			ZIndex: zIndex(k.kind.Row),
		})
	}
	stack(oct.Keys)
	return oct
}

// band returns the vertical extent of a row of keys.
func band(row pitch.Row, opts Options) (top, height Length) {
	acc := opts.AccidentalHeight
	zero := Length{Unit: acc.Unit}
	switch row {
	case pitch.RowProper:
		return zero, acc
	case pitch.RowTop:
		return zero, acc.Scale(1.0 / 3)
	case pitch.RowBottom:
		return acc.Scale(2.0 / 3), acc.Scale(1.0 / 3)
	case pitch.RowInBetween:
		if !opts.InBetweenHeight.IsZero() {
			return Length{Unit: opts.InBetweenHeight.Unit}, opts.InBetweenHeight
		}
		return zero, acc.Scale(5.0 / 6)
	}
	return Percentage(0), Percentage(100)
}

func zIndex(row pitch.Row) int {
	switch row {
	case pitch.RowProper:
		return ZAccidental
	case pitch.RowTop, pitch.RowBottom:
		return ZRow
	case pitch.RowInBetween:
		return ZInBetween
	}
	return ZNatural
}

// stack splits the band of keys sharing a placement and row into equal
// slices, lowest pitch nearest the far end, so fine divisions never draw two
// keys on the same spot.
func stack(keys []KeyGeometry) {
	type slot struct {
		p   pitch.Placement
		row pitch.Row
	}
	members := map[slot][]int{}
	for i, k := range keys {
		s := slot{k.Kind.Placement, k.Kind.Row}
		members[s] = append(members[s], i)
	}
	for _, idx := range members {
		n := len(idx)
		if n < 2 {
			continue
		}
		for j, i := range idx {
			k := &keys[i]
			slice := k.Height.Scale(1 / float64(n))
			k.Top = Length{Magnitude: k.Top.Magnitude + slice.Magnitude*float64(j), Unit: k.Top.Unit}
			k.Height = slice
		}
	}
}

// KeyRect is a key placed on screen.
type KeyRect struct {
	ID     float64
	Kind   pitch.Kind
	Rect   Rect
	ZIndex int
}

// OctaveRect is an octave container placed on screen, keys in id order.
type OctaveRect struct {
	Index  int
	Rect   Rect
	ZIndex int
	Keys   []KeyRect
}

// Rects projects the layout into bounds for the given orientation.
func (l Layout) Rects(bounds Rect, o Orientation) []OctaveRect {
	if l.Width <= 0 {
		return nil
	}
	extent := o.LengthExtent(bounds)
	along := func(v Length) float64 {
		if extent == 0 {
			return 0
		}
		return v.Resolve(extent) / extent
	}

	out := make([]OctaveRect, 0, len(l.Octaves))
	for _, oct := range l.Octaves {
		u0 := oct.Start / l.Width
		u1 := (oct.Start + oct.Basis) / l.Width
		or := OctaveRect{
			Index:  oct.Index,
			Rect:   o.Place(bounds, u0, u1, 0, 1),
			ZIndex: oct.ZIndex,
		}
		for _, k := range oct.Keys {
			ku0 := (oct.Start + k.Left*oct.Basis) / l.Width
			ku1 := ku0 + k.Width*oct.Basis/l.Width
			v0 := along(k.Top)
			v1 := v0 + along(k.Height)
			or.Keys = append(or.Keys, KeyRect{
				ID:     k.ID,
				Kind:   k.Kind,
				Rect:   o.Place(bounds, ku0, ku1, v0, v1),
				ZIndex: k.ZIndex,
			})
		}
		out = append(out, or)
	}
	return out
}

// Find returns the geometry of the key with the given id.
func (l Layout) Find(id float64) (KeyGeometry, bool) {
	for _, oct := range l.Octaves {
		for _, k := range oct.Keys {
			if k.ID == id {
				return k, true
			}
		}
	}
	return KeyGeometry{}, false
}
