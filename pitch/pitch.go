// Package pitch maps key ids onto pitch classes and the canonical placements
// a key snaps to within an octave.
//
// Key ids are 12-EDO relative (60 = middle C) and may be fractional when the
// octave is divided more finely than 12 steps.
package pitch

import (
	"errors"
	"fmt"
	"math"
)

// OctaveSize is the number of 12-EDO steps in one octave.
const OctaveSize = 12

// MaxDivision is the finest octave division the placement tables are tuned for.
const MaxDivision = 47

var ErrUnsupportedDivision = errors.New("unsupported octave division")

// ValidateDivision reports whether the placement tables can serve div.
func ValidateDivision(div int) error {
	if div < 1 || div > MaxDivision {
		return fmt.Errorf("%w: %d (want 1-%d)", ErrUnsupportedDivision, div, MaxDivision)
	}
	return nil
}

// Class returns id mod 12 in [0, 12), keeping the fractional part.
func Class(id float64) float64 {
	c := math.Mod(id, OctaveSize)
	if c < 0 {
		c += OctaveSize
	}
	// -0.0 and rounding at the upper edge both land on 0
	if c >= OctaveSize || c == 0 {
		return 0
	}
	return c
}

// Octave returns floor(id / 12).
func Octave(id float64) int {
	return int(math.Floor(id / OctaveSize))
}

// IsNaturalKey is true when the pitch class is exactly one of C D E F G A B.
func IsNaturalKey(id float64) bool {
	switch Class(id) {
	case 0, 2, 4, 5, 7, 9, 11:
		return true
	}
	return false
}

// IsAccidental is true when the pitch class is exactly one of the five
// 12-EDO sharps.
func IsAccidental(id float64) bool {
	switch Class(id) {
	case 1, 3, 6, 8, 10:
		return true
	}
	return false
}

var names = [OctaveSize]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Name renders an id as a note name with octave ("C4" for 60). Fractional
// ids get the name of the step below plus the cents above it.
func Name(id float64) string {
	base := math.Floor(id)
	n := names[int(Class(base))]
	octave := Octave(base) - 1
	cents := math.Round((id - base) * 100)
	if cents == 0 {
		return fmt.Sprintf("%s%d", n, octave)
	}
	return fmt.Sprintf("%s%d+%.0f", n, octave, cents)
}
