package keyboard

import (
	"errors"
	"fmt"

	"go-keyboard/input"
	"go-keyboard/layout"
	"go-keyboard/pitch"
	"go-keyboard/theme"
)

var (
	ErrInvalidChannel  = errors.New("invalid channel")
	ErrInvalidVelocity = errors.New("invalid velocity")
)

// MaxChannel is the highest channel number.
const MaxChannel = 15

// Note is a host-supplied sounding key, used for highlighting only.
type Note struct {
	Channel  int
	ID       float64
	Velocity float64
}

// Props configures a Keyboard.
type Props struct {
	StartKey       float64
	EndKey         float64
	OctaveDivision int

	KeySpacing layout.Spacing
	// EqualWidths selects layout.Equal regardless of KeySpacing.
	EqualWidths bool

	AccidentalKeyHeight          layout.Length
	InBetweenAccidentalKeyHeight layout.Length

	KeyboardMapping  map[int]float64
	KeyboardVelocity float64
	DragVelocity     input.VelocityPolicy
	IgnoreFocus      bool

	KeysOn   []Note
	OnKeyOn  input.Handler
	OnKeyOff input.Handler

	ActiveChannel int
	ChannelColors []theme.RGB

	Orientation layout.Orientation
	Disabled    bool

	// LiveHitTest reads the scene on every pointer event instead of using
	// the per-frame bounds cache.
	LiveHitTest bool
}

// DefaultProps is two octaves from C3 with the home-row mapping on C4.
func DefaultProps() Props {
	return Props{
		StartKey:            48,
		EndKey:              72,
		OctaveDivision:      12,
		KeySpacing:          layout.Standard,
		AccidentalKeyHeight: layout.DefaultAccidentalHeight,
		KeyboardMapping:     input.QwertyMapping(60),
		KeyboardVelocity:    input.DefaultKeyboardVelocity,
		Orientation:         layout.Normal,
	}
}

func (p Props) spacing() layout.Spacing {
	if p.EqualWidths {
		return layout.Equal
	}
	if p.KeySpacing == "" {
		return layout.Standard
	}
	return p.KeySpacing
}

func (p Props) layoutOptions() layout.Options {
	return layout.Options{
		Division:         p.OctaveDivision,
		Spacing:          p.spacing(),
		AccidentalHeight: p.AccidentalKeyHeight,
		InBetweenHeight:  p.InBetweenAccidentalKeyHeight,
	}
}

// Validate checks everything that would otherwise misrender.
func (p Props) Validate() error {
	if err := pitch.ValidateDivision(p.OctaveDivision); err != nil {
		return err
	}
	if p.EndKey < p.StartKey {
		return fmt.Errorf("%w: end %v below start %v", layout.ErrInvalidRange, p.EndKey, p.StartKey)
	}
	if _, err := layout.ParseSpacing(string(p.KeySpacing)); err != nil {
		return err
	}
	if _, err := layout.ParseOrientation(string(p.Orientation)); err != nil {
		return err
	}
	if err := validChannel(p.ActiveChannel); err != nil {
		return err
	}
	if p.KeyboardVelocity < 0 || p.KeyboardVelocity > 1 {
		return fmt.Errorf("%w: keyboard velocity %v", ErrInvalidVelocity, p.KeyboardVelocity)
	}
	for _, n := range p.KeysOn {
		if err := n.validate(); err != nil {
			return err
		}
	}
	return nil
}

func validChannel(ch int) error {
	if ch < 0 || ch > MaxChannel {
		return fmt.Errorf("%w: %d (want 0-%d)", ErrInvalidChannel, ch, MaxChannel)
	}
	return nil
}

func (n Note) validate() error {
	if err := validChannel(n.Channel); err != nil {
		return err
	}
	if n.Velocity < 0 || n.Velocity > 1 {
		return fmt.Errorf("%w: %v for key %v", ErrInvalidVelocity, n.Velocity, n.ID)
	}
	return nil
}
