package layout

import (
	"errors"
	"fmt"

	"go-keyboard/pitch"
)

var ErrUnknownSpacing = errors.New("unknown key spacing")

// Spacing selects the width policy of a keyboard.
type Spacing string

const (
	// Standard keeps the asymmetric, musically accurate piano widths.
	Standard Spacing = "standard"
	// Equal gives every natural of a pitch class a fixed footprint so that
	// keys look uniform regardless of musical spacing.
	Equal Spacing = "equal"
)

// SpacingFor maps the boolean equalWidths switch onto a profile.
func SpacingFor(equalWidths bool) Spacing {
	if equalWidths {
		return Equal
	}
	return Standard
}

func ParseSpacing(s string) (Spacing, error) {
	switch Spacing(s) {
	case Standard, "":
		return Standard, nil
	case Equal:
		return Equal, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSpacing, s)
}

// offsets are fractions of an octave's width, indexed by placement.
var standardOffsets = [...]float64{
	pitch.C:      0,
	pitch.CSharp: 1.0/12 + 1.0/384,
	pitch.D:      1.0 / 7,
	pitch.DSharp: 3.0/12 + 1.0/96,
	pitch.E:      2.0 / 7,
	pitch.ESharp: 37.0/96 + 1.0/96,
	pitch.F:      3.0 / 7,
	pitch.FSharp: 6.0/12 + 1.0/96,
	pitch.G:      4.0 / 7,
	pitch.GSharp: 8.0/12 + 1.0/192,
	pitch.A:      5.0 / 7,
	pitch.ASharp: 10.0 / 12,
	pitch.B:      6.0 / 7,
	pitch.BSharp: 93.0/96 + 1.0/192,
	pitch.CNext:  1,
}

var equalOffsets = [...]float64{
	pitch.C:      0,
	pitch.CSharp: 1.0 / 12,
	pitch.D:      3.0 / 24,
	pitch.DSharp: 3.0 / 12,
	pitch.E:      7.0 / 24,
	pitch.ESharp: 4.5 / 12,
	pitch.F:      5.0 / 12,
	pitch.FSharp: 6.0 / 12,
	pitch.G:      13.0 / 24,
	pitch.GSharp: 8.0 / 12,
	pitch.A:      17.0 / 24,
	pitch.ASharp: 10.0 / 12,
	pitch.B:      21.0 / 24,
	pitch.BSharp: 11.5 / 12,
	pitch.CNext:  1,
}

// Offset of a placement's left edge within its octave.
func (s Spacing) Offset(p pitch.Placement) float64 {
	if s == Equal {
		return equalOffsets[p]
	}
	return standardOffsets[p]
}

// Width of a placement as a fraction of a full octave.
func (s Spacing) Width(p pitch.Placement) float64 {
	if s == Equal {
		switch p {
		case pitch.C, pitch.E, pitch.F, pitch.B, pitch.CNext:
			return 1.0 / 8
		case pitch.D, pitch.G, pitch.A:
			return 1.0 / 6
		}
		return 1.0 / 12
	}
	switch {
	case p.IsInBetween():
		return 3.0 / 48
	case p.IsNatural():
		return 1.0 / 7
	}
	return 1.0 / 12
}
