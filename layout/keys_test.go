package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-keyboard/pitch"
)

func ids(keys []Key) []float64 {
	out := make([]float64, len(keys))
	for i, k := range keys {
		out[i] = k.ID
	}
	return out
}

func TestBuildKeysChromatic(t *testing.T) {
	keys, err := BuildKeys(60, 67, 12)
	require.NoError(t, err)
	assert.Equal(t, []float64{60, 61, 62, 63, 64, 65, 66, 67}, ids(keys))
	for _, k := range keys {
		assert.False(t, k.On)
		assert.Equal(t, NoChannel, k.Channel)
		assert.Equal(t, 0.0, k.Velocity)
	}
}

func TestBuildKeysQuarterTones(t *testing.T) {
	keys, err := BuildKeys(60, 62, 24)
	require.NoError(t, err)
	assert.Equal(t, []float64{60, 60.5, 61, 61.5, 62}, ids(keys))
}

func TestBuildKeysInsertsOffGridEdges(t *testing.T) {
	keys, err := BuildKeys(61, 63, 17)
	require.NoError(t, err)
	got := ids(keys)
	require.NotEmpty(t, got)
	assert.Equal(t, 61.0, got[0])
	assert.Equal(t, 63.0, got[len(got)-1])
	// steps 87, 88 and 89 of the 17-EDO grid lie strictly inside the span
	require.Len(t, got, 5)
	assert.InDelta(t, 12*87.0/17, got[1], 1e-9)
	assert.InDelta(t, 12*88.0/17, got[2], 1e-9)
	assert.InDelta(t, 12*89.0/17, got[3], 1e-9)
}

func TestBuildKeysGridAnchoredAtZero(t *testing.T) {
	a, err := BuildKeys(48, 72, 19)
	require.NoError(t, err)
	b, err := BuildKeys(60, 72, 19)
	require.NoError(t, err)

	inA := map[float64]bool{}
	for _, id := range ids(a) {
		inA[id] = true
	}
	for _, id := range ids(b) {
		assert.True(t, inA[id], "id %v of the shorter span missing from the longer one", id)
	}
}

func TestBuildKeysSingleKey(t *testing.T) {
	keys, err := BuildKeys(60, 60, 12)
	require.NoError(t, err)
	assert.Equal(t, []float64{60}, ids(keys))

	keys, err = BuildKeys(61, 61, 17)
	require.NoError(t, err)
	assert.Equal(t, []float64{61}, ids(keys))
}

func TestBuildKeysProperties(t *testing.T) {
	for _, div := range []int{12, 17, 19, 24, 31, 36} {
		for start := 21; start < 40; start += 3 {
			for _, span := range []int{0, 1, 5, 12, 30} {
				end := start + span
				keys, err := BuildKeys(float64(start), float64(end), div)
				require.NoError(t, err)
				got := ids(keys)
				assert.Equal(t, float64(start), got[0], "div %d span %d-%d", div, start, end)
				assert.Equal(t, float64(end), got[len(got)-1], "div %d span %d-%d", div, start, end)
				for i := 1; i < len(got); i++ {
					assert.Less(t, got[i-1], got[i], "div %d not strictly ascending at %d", div, i)
				}

				again, err := BuildKeys(float64(start), float64(end), div)
				require.NoError(t, err)
				assert.Equal(t, keys, again)
			}
		}
	}
}

func TestBuildKeysErrors(t *testing.T) {
	_, err := BuildKeys(67, 60, 12)
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = BuildKeys(60, 67, 0)
	assert.ErrorIs(t, err, pitch.ErrUnsupportedDivision)

	_, err = BuildKeys(60, 67, 64)
	assert.ErrorIs(t, err, pitch.ErrUnsupportedDivision)
}

func TestKeyOctave(t *testing.T) {
	assert.Equal(t, 5, Key{ID: 60}.Octave())
	assert.Equal(t, 4, Key{ID: 59.5}.Octave())
}
