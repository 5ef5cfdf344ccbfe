// Package layout builds the ordered key list of a keyboard span and computes
// where every key sits inside its octave and on screen.
package layout

import (
	"errors"
	"fmt"
	"math"

	"go-keyboard/pitch"
)

// NoChannel marks a key that is not sounding on any channel.
const NoChannel = -1

// epsilon absorbs float error when comparing grid ids against the span edges.
const epsilon = 1e-9

var ErrInvalidRange = errors.New("invalid key range")

// Key is one addressable pitch position.
type Key struct {
	ID       float64
	Velocity float64 // only meaningful while On
	Channel  int     // NoChannel unless sounding
	On       bool
}

// Octave returns floor(id / 12).
func (k Key) Octave() int {
	return pitch.Octave(k.ID)
}

// BuildKeys returns the keys of [start, end] at the resolution of div steps
// per octave. The grid is anchored at pitch 0, not at start, so microtonal
// grids line up whatever the start key. When a span edge is off the grid a
// key is inserted exactly on it.
func BuildKeys(start, end float64, div int) ([]Key, error) {
	if err := pitch.ValidateDivision(div); err != nil {
		return nil, err
	}
	if math.IsNaN(start) || math.IsNaN(end) || math.IsInf(start, 0) || math.IsInf(end, 0) {
		return nil, fmt.Errorf("%w: non-finite bounds %v..%v", ErrInvalidRange, start, end)
	}
	if end < start {
		return nil, fmt.Errorf("%w: end %v below start %v", ErrInvalidRange, end, start)
	}

	ids := gridIDs(start, end, div)
	if len(ids) == 0 || ids[0] != start {
		ids = append([]float64{start}, ids...)
	}
	if ids[len(ids)-1] != end {
		ids = append(ids, end)
	}

	keys := make([]Key, len(ids))
	for i, id := range ids {
		keys[i] = Key{ID: id, Channel: NoChannel}
	}
	return keys, nil
}

// gridIDs returns the multiples of 12/div inside [start, end]. Ids within
// epsilon of an edge are snapped onto it.
func gridIDs(start, end float64, div int) []float64 {
	step := func(i int) float64 {
		return float64(pitch.OctaveSize*i) / float64(div)
	}

	i := int(math.Ceil(start*float64(div)/pitch.OctaveSize - epsilon))
	var ids []float64
	for id := step(i); id <= end+epsilon; id = step(i) {
		switch {
		case math.Abs(id-start) < epsilon:
			id = start
		case math.Abs(id-end) < epsilon:
			id = end
		}
		ids = append(ids, id)
		i++
	}
	return ids
}
