package pitch

// Placement is a canonical slot a key snaps to for rendering and
// classification.
type Placement int

const (
	C Placement = iota
	CSharp
	D
	DSharp
	E
	ESharp // between E and F, only wide for divisions >= 24
	F
	FSharp
	G
	GSharp
	A
	ASharp
	B
	BSharp // between B and next C, only wide for divisions >= 24
	CNext
)

var placementNames = [...]string{"C", "C#", "D", "D#", "E", "E#", "F", "F#", "G", "G#", "A", "A#", "B", "B#", "C'"}

var placementPositions = [...]float64{0, 1, 2, 3, 4, 4.5, 5, 6, 7, 8, 9, 10, 11, 11.5, 12}

func (p Placement) String() string {
	if p < C || p > CNext {
		return "?"
	}
	return placementNames[p]
}

// Position is the nominal 12-EDO pitch class of the placement.
func (p Placement) Position() float64 {
	return placementPositions[p]
}

// IsNatural is true for C D E F G A B.
func (p Placement) IsNatural() bool {
	switch p {
	case C, D, E, F, G, A, B, CNext:
		return true
	}
	return false
}

// IsProperAccidental is true for the five ordinary sharps.
func (p Placement) IsProperAccidental() bool {
	switch p {
	case CSharp, DSharp, FSharp, GSharp, ASharp:
		return true
	}
	return false
}

// IsInBetween is true for the E-F and B-C slots.
func (p Placement) IsInBetween() bool {
	return p == ESharp || p == BSharp
}

// Range is the half-open interval [Start, End) of pitch classes that snap to
// Placement.
type Range struct {
	Placement  Placement
	Start, End float64
}

// Contains reports whether pitch class c falls inside the range.
func (r Range) Contains(c float64) bool {
	return r.Start <= c && c < r.End
}

// Width of the range in pitch-class units.
func (r Range) Width() float64 {
	return r.End - r.Start
}

// Boundaries are tuned so each key's visual centre sits on its nominal pitch.
var narrowRanges = []Range{
	{C, 0, 0.0625},
	{CSharp, 0.0625, 1.875},
	{D, 1.875, 2.125},
	{DSharp, 2.125, 3.75},
	{E, 3.75, 4.25},
	{ESharp, 4.25, 4.65},
	{F, 4.65, 5.125},
	{FSharp, 5.125, 6.875},
	{G, 6.875, 7.125},
	{GSharp, 7.125, 8.75},
	{A, 8.75, 9.25},
	{ASharp, 9.25, 10.725},
	{B, 10.725, 11.2942},
	{BSharp, 11.2942, 11.7},
	{CNext, 11.7, 12},
}

var wideRanges = []Range{
	{C, 0, 0.0625},
	{CSharp, 0.0625, 1.875},
	{D, 1.875, 2.125},
	{DSharp, 2.125, 3.75},
	{E, 3.75, 4.025},
	{ESharp, 4.025, 4.75},
	{F, 4.75, 5.125},
	{FSharp, 5.125, 6.875},
	{G, 6.875, 7.125},
	{GSharp, 7.125, 8.75},
	{A, 8.75, 9.25},
	{ASharp, 9.25, 10.725},
	{B, 10.725, 11.225},
	{BSharp, 11.225, 11.7},
	{CNext, 11.7, 12},
}

// Ranges returns the placement table for an octave division. The returned
// slice is ordered, contiguous and covers [0, 12). Callers must not modify it.
func Ranges(div int) []Range {
	if div >= 24 {
		return wideRanges
	}
	return narrowRanges
}

// Snap returns the placement whose range contains the pitch class of id.
// The next-octave C slot folds back onto C.
func Snap(div int, id float64) Placement {
	c := Class(id)
	for _, r := range Ranges(div) {
		if r.Contains(c) {
			if r.Placement == CNext {
				return C
			}
			return r.Placement
		}
	}
	// unreachable: Class is always in [0, 12)
	return C
}

// Locate returns the octave a key is drawn in together with its placement.
// Keys in the next-octave C slot are drawn on the following octave's C.
func Locate(div int, id float64) (octave int, p Placement) {
	octave = Octave(id)
	c := Class(id)
	for _, r := range Ranges(div) {
		if r.Contains(c) {
			p = r.Placement
			break
		}
	}
	if p == CNext {
		return octave + 1, C
	}
	return octave, p
}

// Row says where an accidental key sits inside its placement's band.
type Row int

const (
	RowNone   Row = iota // natural keys
	RowProper            // exactly on a 12-EDO sharp
	RowTop               // below the placement's nominal pitch
	RowBottom            // above the placement's nominal pitch
	RowInBetween
)

func (r Row) String() string {
	switch r {
	case RowProper:
		return "proper"
	case RowTop:
		return "top"
	case RowBottom:
		return "bottom"
	case RowInBetween:
		return "in-between"
	}
	return "natural"
}

// Kind is the full classification of a key for a given division.
type Kind struct {
	Placement Placement
	Row       Row
}

// Classify snaps id and works out which accidental row it occupies.
func Classify(div int, id float64) Kind {
	p := Snap(div, id)
	switch {
	case p.IsNatural():
		return Kind{Placement: p, Row: RowNone}
	case p.IsInBetween():
		return Kind{Placement: p, Row: RowInBetween}
	}
	c := Class(id)
	switch {
	case c < p.Position():
		return Kind{Placement: p, Row: RowTop}
	case c > p.Position():
		return Kind{Placement: p, Row: RowBottom}
	}
	return Kind{Placement: p, Row: RowProper}
}

// IsProperAccidental is true when id snaps to one of the five ordinary sharps.
func IsProperAccidental(div int, id float64) bool {
	return Snap(div, id).IsProperAccidental()
}

// IsInBetweenAccidental is true when id snaps to the E-F or B-C slot.
func IsInBetweenAccidental(div int, id float64) bool {
	return Snap(div, id).IsInBetween()
}
