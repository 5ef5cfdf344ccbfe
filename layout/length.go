package layout

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrInvalidLength = errors.New("invalid length")

// Unit of a Length.
type Unit string

const (
	Percent Unit = "%"
	Pixels  Unit = "px"
)

// Length is a CSS-like length measured along a key's long axis. Percentages
// are relative to the keyboard's extent on that axis.
type Length struct {
	Magnitude float64
	Unit      Unit
}

func Percentage(v float64) Length { return Length{Magnitude: v, Unit: Percent} }
func Px(v float64) Length         { return Length{Magnitude: v, Unit: Pixels} }

// ParseLength accepts "65%", "40px", "65" or "65.5". A bare number is a
// percentage.
func ParseLength(s string) (Length, error) {
	s = strings.TrimSpace(s)
	unit := Percent
	switch {
	case strings.HasSuffix(s, "%"):
		s = strings.TrimSuffix(s, "%")
	case strings.HasSuffix(s, "px"):
		s = strings.TrimSuffix(s, "px")
		unit = Pixels
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return Length{}, fmt.Errorf("%w: %q", ErrInvalidLength, s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Length{}, fmt.Errorf("%w: non-finite %q", ErrInvalidLength, s)
	}
	if v < 0 {
		return Length{}, fmt.Errorf("%w: negative %q", ErrInvalidLength, s)
	}
	return Length{Magnitude: v, Unit: unit}, nil
}

// IsZero reports whether the length was never set.
func (l Length) IsZero() bool {
	return l.Unit == "" && l.Magnitude == 0
}

// Scale multiplies the magnitude, keeping the unit.
func (l Length) Scale(f float64) Length {
	return Length{Magnitude: l.Magnitude * f, Unit: l.Unit}
}

// Resolve converts the length to absolute units for an axis of the given
// extent.
func (l Length) Resolve(extent float64) float64 {
	if l.Unit == Pixels {
		return l.Magnitude
	}
	return extent * l.Magnitude / 100
}

func (l Length) String() string {
	return strconv.FormatFloat(l.Magnitude, 'f', -1, 64) + string(l.Unit)
}

func (l Length) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *Length) UnmarshalText(b []byte) error {
	v, err := ParseLength(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}
