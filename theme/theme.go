package theme

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette  *Palette
	Channels *Palette
	Symbols  Symbols
}

type Symbols struct {
	Natural    rune // █ natural key body
	Accidental rune // ▓ accidental key body
	InBetween  rune // ▒ in-between accidental
	Pressed    rune // ● key sounding
	Separator  rune // │ gap between naturals
}

// New builds a theme. channels may be nil for the built-in channel colours.
func New(palette, channels *Palette) *Theme {
	if channels == nil {
		channels = DefaultChannels()
	}
	return &Theme{
		Palette:  palette,
		Channels: channels,
		Symbols: Symbols{
			Natural:    '█',
			Accidental: '▓',
			InBetween:  '▒',
			Pressed:    '●',
			Separator:  '│',
		},
	}
}

// Default is the ivory palette with the built-in channel colours.
func Default() *Theme {
	return New(MustLoadGPL("ivory"), nil)
}

var defaultChannels = sync.OnceValue(func() *Palette { return MustLoadGPL("channels") })

// DefaultChannels is one colour per MIDI channel. Callers must not modify it.
func DefaultChannels() *Palette {
	return defaultChannels()
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG         = 0.0  // ebony
	RoleAccidental = 0.1  // key black
	RoleMuted      = 0.3  // help text
	RoleFG         = 0.6  // labels
	RoleNatural    = 0.85 // key white
	RoleBright     = 1.0
)

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Natural() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleNatural))
}

func (t *Theme) Accidental() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccidental))
}

func (t *Theme) Bright() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBright))
}

// Channel returns the lipgloss colour of a channel.
func (t *Theme) Channel(ch int) lipgloss.Color {
	return rgbToLipgloss(t.Channels.Index(ch))
}

// ChannelRGB returns the raw colour of a channel (for raster output).
func (t *Theme) ChannelRGB(ch int) RGB {
	return t.Channels.Index(ch)
}

// RGB returns raw RGB for any normalized value
func (t *Theme) RGB(norm float64) RGB {
	return t.Palette.Lookup(norm)
}

// Shade dims c towards black by amount 0-1. Velocity drives it when painting
// sounding keys.
func Shade(c RGB, amount float64) RGB {
	k := 1 - amount
	return RGB{
		uint8(float64(c[0]) * k),
		uint8(float64(c[1]) * k),
		uint8(float64(c[2]) * k),
	}
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(c.Hex())
}
