package midi

import (
	"math"

	"go-keyboard/util"
)

// BendRange is the pitch bend range, in semitones, that receivers are
// assumed to use.
const BendRange = 2.0

const (
	bendMin = -8192
	bendMax = 8191
)

// NoteFor splits a key id into the nearest MIDI note and the pitch bend
// needed to reach the exact pitch. ok is false when the note is outside
// 0..127.
func NoteFor(id float64) (note uint8, bend int16, ok bool) {
	n := math.Round(id)
	if n < 0 || n > 127 {
		return 0, 0, false
	}
	b := math.Round((id - n) / BendRange * 8192)
	return uint8(n), int16(util.Clamp(b, bendMin, bendMax)), true
}

// VelocityByte scales a [0,1] velocity to 1..127. Zero is avoided because a
// note-on with velocity 0 is a note-off.
func VelocityByte(v float64) uint8 {
	return uint8(util.Clamp(math.Round(v*127), 1, 127))
}

// VelocityOf is the inverse of VelocityByte.
func VelocityOf(b uint8) float64 {
	return float64(b) / 127
}
