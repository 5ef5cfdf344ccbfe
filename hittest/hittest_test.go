package hittest

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-keyboard/layout"
)

func scene(t *testing.T, start, end float64, div int, o layout.Orientation) *LayoutScene {
	t.Helper()
	return spacedScene(t, start, end, div, layout.Standard, o)
}

func spacedScene(t *testing.T, start, end float64, div int, sp layout.Spacing, o layout.Orientation) *LayoutScene {
	t.Helper()
	keys, err := layout.BuildKeys(start, end, div)
	require.NoError(t, err)
	l, err := layout.Compute(keys, layout.Options{Division: div, Spacing: sp})
	require.NoError(t, err)

	bounds := layout.Rect{Left: 10, Top: 20, Right: 850, Bottom: 140}
	if o == layout.Rotate90 || o == layout.Rotate270 {
		bounds = layout.Rect{Left: 10, Top: 20, Right: 130, Bottom: 860}
	}
	return &LayoutScene{Layout: l, Bounds: bounds, Orientation: o}
}

var orientations = []layout.Orientation{layout.Normal, layout.Rotate90, layout.Rotate180, layout.Rotate270}

func TestCenterRoundTrip(t *testing.T) {
	spans := []struct {
		start, end float64
		div        int
	}{
		{60, 71, 12},
		{48, 72, 12},
		{60, 71.5, 24},
		{55, 66, 24},
		{60, 84, 24},
		{60, 84, 36},
		{47.5, 48.5, 24},
	}
	for _, sp := range spans {
		for _, o := range orientations {
			t.Run(fmt.Sprintf("%v-%v/%d/%s", sp.start, sp.end, sp.div, o), func(t *testing.T) {
				s := scene(t, sp.start, sp.end, sp.div, o)
				tester := NewTester(NewLive(s), o)
				checked := 0
				for _, oct := range s.Octaves() {
					for _, k := range oct.Keys {
						x, y := k.Rect.Center()
						hit, ok := tester.At(x, y)
						require.True(t, ok, "key %v", k.ID)
						assert.Equal(t, k.ID, hit.ID)
						assert.InDelta(t, 0.5, hit.Velocity, 1e-9)
						checked++
					}
				}
				assert.Positive(t, checked)
			})
		}
	}
}

func TestAllChromaticCentersResolve(t *testing.T) {
	cases := []struct {
		start, end float64
		div        int
		keys       int
	}{
		{48, 72, 12, 25},
		{60, 84, 24, 49},
		{60, 84, 36, 73},
		{60, 71.5, 24, 24},
	}
	for _, c := range cases {
		for _, sp := range []layout.Spacing{layout.Standard, layout.Equal} {
			t.Run(fmt.Sprintf("%v-%v/%d/%s", c.start, c.end, c.div, sp), func(t *testing.T) {
				s := spacedScene(t, c.start, c.end, c.div, sp, layout.Normal)
				tester := NewTester(NewLive(s), layout.Normal)
				n := 0
				for _, oct := range s.Octaves() {
					for _, k := range oct.Keys {
						hit, ok := tester.At(k.Rect.Center())
						require.True(t, ok, "key %v", k.ID)
						assert.Equal(t, k.ID, hit.ID)
						n++
					}
				}
				assert.Equal(t, c.keys, n)
			})
		}
	}
}

func TestInBetweenKeyStaysInsideOctave(t *testing.T) {
	// the right edge of B# plays B#, not the next C
	s := scene(t, 60, 84, 24, layout.Normal)
	tester := NewTester(NewLive(s), layout.Normal)
	for _, oct := range s.Octaves() {
		for _, k := range oct.Keys {
			if k.ID != 71.5 {
				continue
			}
			assert.LessOrEqual(t, k.Rect.Right, oct.Rect.Right+1e-9)
			hit, ok := tester.At(k.Rect.Right-0.5, k.Rect.Top+1)
			require.True(t, ok)
			assert.Equal(t, 71.5, hit.ID)
			return
		}
	}
	t.Fatal("no B# key at 71.5")
}

func TestVelocityFollowsOrientation(t *testing.T) {
	for _, o := range orientations {
		s := scene(t, 60, 71, 12, o)
		tester := NewTester(NewLive(s), o)

		var c KeyElement
		for _, k := range s.Octaves()[0].Keys {
			if k.ID == 60 {
				c = k
			}
		}
		cx, cy := c.Rect.Center()
		var farX, farY, nearX, nearY float64 = cx, cy, cx, cy
		switch o {
		case layout.Normal:
			farY, nearY = c.Rect.Top+1, c.Rect.Bottom-1
		case layout.Rotate180:
			farY, nearY = c.Rect.Bottom-1, c.Rect.Top+1
		case layout.Rotate90:
			farX, nearX = c.Rect.Right-1, c.Rect.Left+1
		case layout.Rotate270:
			farX, nearX = c.Rect.Left+1, c.Rect.Right-1
		}
		far, ok := tester.At(farX, farY)
		require.True(t, ok, o)
		near, ok := tester.At(nearX, nearY)
		require.True(t, ok, o)
		assert.Equal(t, 60.0, far.ID, o)
		assert.Equal(t, 60.0, near.ID, o)
		assert.Less(t, far.Velocity, 0.02, o)
		assert.Greater(t, near.Velocity, 0.98, o)
	}
}

func TestAccidentalWinsOverNatural(t *testing.T) {
	s := scene(t, 60, 71, 12, layout.Normal)
	tester := NewTester(NewLive(s), layout.Normal)

	var cs layout.Rect
	for _, k := range s.Octaves()[0].Keys {
		if k.ID == 61 {
			cs = k.Rect
		}
	}
	// the left edge of C# sits over C
	hit, ok := tester.At(cs.Left+0.5, cs.Top+5)
	require.True(t, ok)
	assert.Equal(t, 61.0, hit.ID)

	// below the accidental only the natural remains
	hit, ok = tester.At(cs.Left+0.5, cs.Bottom+5)
	require.True(t, ok)
	assert.Equal(t, 60.0, hit.ID)
}

func TestMiss(t *testing.T) {
	s := scene(t, 60, 71, 12, layout.Normal)
	tester := NewTester(NewLive(s), layout.Normal)

	_, ok := tester.At(0, 0)
	assert.False(t, ok)
	_, ok = tester.At(900, 80)
	assert.False(t, ok)

	empty := NewTester(nil, layout.Normal)
	_, ok = empty.At(100, 100)
	assert.False(t, ok)
}

type fixedProvider KeyBounds

func (f fixedProvider) KeyBoundsAt(x, y float64) (KeyBounds, bool) {
	return KeyBounds(f), true
}

func TestVelocityClamped(t *testing.T) {
	p := fixedProvider{ID: 60, Rect: layout.Rect{Left: 0, Top: 0, Right: 10, Bottom: 100}}
	tester := NewTester(p, layout.Normal)

	hit, _ := tester.At(5, 150)
	assert.Equal(t, 1.0, hit.Velocity)
	hit, _ = tester.At(5, -30)
	assert.Equal(t, 0.0, hit.Velocity)
}

func TestLiveAndCachedAgree(t *testing.T) {
	for _, o := range orientations {
		s := scene(t, 53, 77.5, 24, o)
		live := NewLive(s)
		cached := NewCached(s, &FrameQueue{})

		b := s.Bounds
		for x := b.Left - 5; x <= b.Right+5; x += 3.7 {
			for y := b.Top - 5; y <= b.Bottom+5; y += 2.9 {
				lk, lok := live.KeyBoundsAt(x, y)
				ck, cok := cached.KeyBoundsAt(x, y)
				require.Equal(t, lok, cok, "%s (%v, %v)", o, x, y)
				assert.Equal(t, lk, ck, "%s (%v, %v)", o, x, y)
			}
		}
	}
}

func TestCachedRefreshesOnNextFrame(t *testing.T) {
	s := scene(t, 60, 71, 12, layout.Normal)
	frames := &FrameQueue{}
	cached := NewCached(s, frames)

	_, ok := cached.KeyBoundsAt(50, 80)
	require.True(t, ok)

	s.Bounds = layout.Rect{Left: 1000, Top: 20, Right: 1840, Bottom: 140}
	cached.Invalidate()
	cached.Invalidate()
	assert.True(t, cached.Stale())
	assert.Equal(t, 1, frames.Pending())

	// stale until the frame runs
	_, ok = cached.KeyBoundsAt(50, 80)
	assert.True(t, ok)
	_, ok = cached.KeyBoundsAt(1050, 80)
	assert.False(t, ok)

	assert.Equal(t, 1, frames.Flush())
	assert.False(t, cached.Stale())
	_, ok = cached.KeyBoundsAt(50, 80)
	assert.False(t, ok)
	_, ok = cached.KeyBoundsAt(1050, 80)
	assert.True(t, ok)
	assert.Equal(t, 0, frames.Flush())
}

func TestCachedSnapshotIsIsolated(t *testing.T) {
	octs := []OctaveElement{{
		Rect: layout.Rect{Right: 10, Bottom: 10},
		Keys: []KeyElement{{ID: 60, Rect: layout.Rect{Right: 10, Bottom: 10}}},
	}}
	s := staticScene(octs)
	cached := NewCached(s, &FrameQueue{})
	octs[0].Keys[0].ID = 99

	kb, ok := cached.KeyBoundsAt(5, 5)
	require.True(t, ok)
	assert.Equal(t, 60.0, kb.ID)
}

type staticScene []OctaveElement

func (s staticScene) Octaves() []OctaveElement { return s }

func TestTiesGoToLaterElement(t *testing.T) {
	r := layout.Rect{Right: 10, Bottom: 10}
	s := staticScene{{
		Rect: r,
		Keys: []KeyElement{{ID: 60, Rect: r}, {ID: 61, Rect: r}, {ID: 59, Rect: r, ZIndex: -1}},
	}}
	kb, ok := NewLive(s).KeyBoundsAt(5, 5)
	require.True(t, ok)
	assert.Equal(t, 61.0, kb.ID)
}

func TestFrameQueueDefersNestedRequests(t *testing.T) {
	q := &FrameQueue{}
	var ran []string
	q.RequestFrame(func() {
		ran = append(ran, "a")
		q.RequestFrame(func() { ran = append(ran, "b") })
	})
	assert.Equal(t, 1, q.Flush())
	assert.Equal(t, []string{"a"}, ran)
	assert.Equal(t, 1, q.Flush())
	assert.Equal(t, []string{"a", "b"}, ran)
}
