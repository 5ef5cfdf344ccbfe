package midi

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	gomidi "gitlab.com/gomidi/midi/v2"

	"go-keyboard/debug"
	"go-keyboard/input"
)

// Sink turns keyboard events into MIDI messages.
type Sink struct {
	send  func(gomidi.Message) error
	close func() error

	mu       sync.Mutex
	bend     [16]int16
	sounding map[uuid.UUID]sent
	err      error
}

type sent struct {
	channel uint8
	note    uint8
}

// NewSink sends through send, which has the shape returned by
// gomidi.SendTo.
func NewSink(send func(gomidi.Message) error) *Sink {
	return &Sink{send: send, sounding: make(map[uuid.UUID]sent)}
}

// OpenSink opens the output port whose name contains name.
func OpenSink(name string) (*Sink, error) {
	out, err := gomidi.FindOutPort(name)
	if err != nil {
		return nil, fmt.Errorf("find output %q: %w", name, err)
	}
	send, err := gomidi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	s := NewSink(send)
	s.close = out.Close
	return s, nil
}

// KeyOn is an input.Handler.
func (s *Sink) KeyOn(ev input.Event) {
	note, bend, ok := NoteFor(ev.ID)
	if !ok || ev.Channel < 0 || ev.Channel > 15 {
		debug.Warn("midi", "key outside midi range", "id", ev.ID, "channel", ev.Channel)
		return
	}
	ch := uint8(ev.Channel)

	s.mu.Lock()
	defer s.mu.Unlock()

	// one bend per channel; the latest key wins
	if s.bend[ch] != bend {
		s.bend[ch] = bend
		s.write(gomidi.Pitchbend(ch, bend))
	}
	s.write(gomidi.NoteOn(ch, note, VelocityByte(ev.Velocity)))
	s.sounding[ev.Gesture] = sent{channel: ch, note: note}
}

// KeyOff is an input.Handler.
func (s *Sink) KeyOff(ev input.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.sounding[ev.Gesture]
	if !ok {
		note, _, inRange := NoteFor(ev.ID)
		if !inRange || ev.Channel < 0 || ev.Channel > 15 {
			return
		}
		n = sent{channel: uint8(ev.Channel), note: note}
	}
	delete(s.sounding, ev.Gesture)
	s.write(gomidi.NoteOff(n.channel, n.note))
}

// Sounding is the number of notes sent without a matching note-off.
func (s *Sink) Sounding() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sounding)
}

// Panic ends every sounding note and recentres the bends.
func (s *Sink) Panic() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for g, n := range s.sounding {
		s.write(gomidi.NoteOff(n.channel, n.note))
		delete(s.sounding, g)
	}
	for ch, b := range s.bend {
		if b != 0 {
			s.bend[ch] = 0
			s.write(gomidi.Pitchbend(uint8(ch), 0))
		}
	}
}

// Err returns the first send error.
func (s *Sink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close silences the sink and closes its port.
func (s *Sink) Close() error {
	s.Panic()
	if s.close != nil {
		return s.close()
	}
	return nil
}

func (s *Sink) write(msg gomidi.Message) {
	if err := s.send(msg); err != nil {
		if s.err == nil {
			s.err = err
		}
		debug.Warn("midi", "send failed", "msg", msg.String(), "err", err)
		return
	}
	debug.Trace("midi", "sent", "msg", msg.String())
}
