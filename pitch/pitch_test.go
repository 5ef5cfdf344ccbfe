package pitch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClass(t *testing.T) {
	cases := []struct {
		id   float64
		want float64
	}{
		{60, 0},
		{61, 1},
		{64.5, 4.5},
		{71, 11},
		{-1, 11},
		{-12, 0},
		{0, 0},
	}
	for _, c := range cases {
		assert.InDelta(t, c.want, Class(c.id), 1e-12, "id %v", c.id)
	}
}

func TestIsNaturalKey(t *testing.T) {
	naturals := map[float64]bool{0: true, 2: true, 4: true, 5: true, 7: true, 9: true, 11: true}
	for i := 48; i < 60; i++ {
		id := float64(i)
		assert.Equal(t, naturals[float64(i%12)], IsNaturalKey(id), "id %d", i)
		assert.Equal(t, !naturals[float64(i%12)], IsAccidental(id), "id %d", i)
	}
	assert.False(t, IsNaturalKey(61), "C# is not natural")
	assert.False(t, IsNaturalKey(60.5))
	assert.False(t, IsAccidental(60.5))
}

func TestOctave(t *testing.T) {
	assert.Equal(t, 5, Octave(60))
	assert.Equal(t, 5, Octave(71.9))
	assert.Equal(t, -1, Octave(-0.5))
}

func TestName(t *testing.T) {
	assert.Equal(t, "C4", Name(60))
	assert.Equal(t, "A4", Name(69))
	assert.Equal(t, "C#4+50", Name(61.5))
}

func TestValidateDivision(t *testing.T) {
	for _, div := range []int{12, 17, 19, 24, 31, 36} {
		assert.NoError(t, ValidateDivision(div))
	}
	for _, div := range []int{0, -12, 48, 96} {
		err := ValidateDivision(div)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnsupportedDivision)
	}
}

func TestRangesPartitionOctave(t *testing.T) {
	for _, div := range []int{12, 24} {
		ranges := Ranges(div)
		require.NotEmpty(t, ranges)
		assert.Equal(t, 0.0, ranges[0].Start)
		assert.Equal(t, 12.0, ranges[len(ranges)-1].End)
		for i := 1; i < len(ranges); i++ {
			assert.Equal(t, ranges[i-1].End, ranges[i].Start, "gap or overlap before %v", ranges[i].Placement)
			assert.Greater(t, ranges[i].Width(), 0.0)
		}
	}
}

func TestSnapIsTotal(t *testing.T) {
	for _, div := range []int{12, 17, 19, 24, 31, 36} {
		for c := 0.0; c < 12; c += 0.01 {
			hits := 0
			for _, r := range Ranges(div) {
				if r.Contains(c) {
					hits++
				}
			}
			assert.Equal(t, 1, hits, "div %d class %v", div, c)
		}
	}
}

func TestSnap(t *testing.T) {
	cases := []struct {
		name string
		div  int
		id   float64
		want Placement
	}{
		{"middle C", 12, 60, C},
		{"C sharp", 12, 61, CSharp},
		{"E", 12, 64, E},
		{"F", 12, 65, F},
		{"B", 12, 71, B},
		{"narrow E-F gap", 12, 64.5, ESharp},
		{"narrow E upper edge", 12, 64.2, E},
		{"wide E-F gap", 24, 64.2, ESharp},
		{"wide B-C gap", 24, 71.5, BSharp},
		{"next octave C folds", 24, 71.8, C},
		{"quarter sharp", 24, 60.5, CSharp},
		{"negative id", 12, -1, B},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Snap(c.div, c.id))
		})
	}
}

func TestClassify(t *testing.T) {
	assert.Equal(t, Kind{C, RowNone}, Classify(12, 60))
	assert.Equal(t, Kind{CSharp, RowProper}, Classify(12, 61))
	assert.Equal(t, Kind{CSharp, RowTop}, Classify(24, 60.5))
	assert.Equal(t, Kind{CSharp, RowBottom}, Classify(24, 61.5))
	assert.Equal(t, Kind{ESharp, RowInBetween}, Classify(24, 64.5))
	assert.Equal(t, Kind{BSharp, RowInBetween}, Classify(19, 60+12*18.0/19))

	assert.True(t, IsProperAccidental(12, 66))
	assert.False(t, IsProperAccidental(12, 67))
	assert.True(t, IsInBetweenAccidental(24, 71.5))
	assert.False(t, IsInBetweenAccidental(24, 71))
}
