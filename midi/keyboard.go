package midi

import (
	"fmt"
	"sort"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-keyboard/debug"
	"go-keyboard/keyboard"
)

const ccAllNotesOff = 123

// Listener follows the notes held on an external MIDI keyboard and reports
// them as keysOn highlighting. Pitch bend shifts the reported key ids of its
// channel.
type Listener struct {
	onChange func([]keyboard.Note)
	stopFunc func()

	mu   sync.Mutex
	held map[held]uint8
	bend [16]int16
}

type held struct {
	channel uint8
	note    uint8
}

// NewListener reports every change of the held notes to onChange.
func NewListener(onChange func([]keyboard.Note)) *Listener {
	return &Listener{onChange: onChange, held: make(map[held]uint8)}
}

// Listen opens inPort and feeds it to the listener.
func (l *Listener) Listen(inPort drivers.In) error {
	stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
		l.Handle(msg)
	})
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	l.stopFunc = stop
	return nil
}

// ListenByName opens the input port whose name contains name.
func (l *Listener) ListenByName(name string) error {
	in, err := gomidi.FindInPort(name)
	if err != nil {
		return fmt.Errorf("find input %q: %w", name, err)
	}
	return l.Listen(in)
}

// Handle applies one incoming message.
func (l *Listener) Handle(msg gomidi.Message) {
	var channel, note, velocity, cc, value uint8
	var rel int16
	var abs uint16

	l.mu.Lock()
	changed := true
	switch {
	case msg.GetNoteOn(&channel, &note, &velocity):
		if velocity == 0 {
			delete(l.held, held{channel, note})
		} else {
			l.held[held{channel, note}] = velocity
		}
	case msg.GetNoteOff(&channel, &note, &velocity):
		delete(l.held, held{channel, note})
	case msg.GetPitchBend(&channel, &rel, &abs):
		l.bend[channel] = rel
	case msg.GetControlChange(&channel, &cc, &value) && cc == ccAllNotesOff:
		for h := range l.held {
			if h.channel == channel {
				delete(l.held, h)
			}
		}
	default:
		changed = false
	}
	var notes []keyboard.Note
	if changed {
		notes = l.notes()
	}
	l.mu.Unlock()

	if changed {
		debug.LogEvery(16, "midi", "input", "msg", msg.String(), "held", len(notes))
		if l.onChange != nil {
			l.onChange(notes)
		}
	}
}

// Notes is the current keysOn snapshot.
func (l *Listener) Notes() []keyboard.Note {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.notes()
}

func (l *Listener) notes() []keyboard.Note {
	out := make([]keyboard.Note, 0, len(l.held))
	for h, v := range l.held {
		out = append(out, keyboard.Note{
			Channel:  int(h.channel),
			ID:       float64(h.note) + float64(l.bend[h.channel])/8192*BendRange,
			Velocity: VelocityOf(v),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Channel != out[j].Channel {
			return out[i].Channel < out[j].Channel
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (l *Listener) Close() error {
	if l.stopFunc != nil {
		l.stopFunc()
		l.stopFunc = nil
	}
	return nil
}
