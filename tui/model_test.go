package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-keyboard/input"
	"go-keyboard/keyboard"
	"go-keyboard/midi"
)

type recorder struct {
	on, off []input.Event
}

func newModel(t *testing.T) (Model, *recorder) {
	t.Helper()
	var rec recorder
	p := keyboard.DefaultProps()
	p.StartKey, p.EndKey = 60, 71
	p.OnKeyOn = func(ev input.Event) { rec.on = append(rec.on, ev) }
	p.OnKeyOff = func(ev input.Event) { rec.off = append(rec.off, ev) }

	keys := input.NewDispatcher()
	kb, err := keyboard.New(p, keys)
	require.NoError(t, err)
	t.Cleanup(kb.Close)

	m := NewModel(kb, keys, nil, nil)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 70, Height: 20})
	return next.(Model), &rec
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func runes(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestViewPaintsKeyboard(t *testing.T) {
	m, _ := newModel(t)
	out := m.View()
	lines := strings.Split(out, "\n")

	assert.Contains(t, lines[0], "C4-B4")
	assert.Contains(t, lines[0], "12-EDO")
	assert.Equal(t, 70, len([]rune(lines[kbTop])))
	assert.Contains(t, lines[kbTop], string(m.Theme.Symbols.Accidental))
	assert.Contains(t, lines[kbTop+m.bounds.kbHeight-1], string(m.Theme.Symbols.Separator))
}

func TestMousePlaysAfterView(t *testing.T) {
	m, rec := newModel(t)
	m.View()

	// C spans columns 0-9; the bottom row is below the accidentals
	y := kbTop + m.bounds.kbHeight - 1
	m, _ = update(m, tea.MouseMsg{X: 4, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	require.Len(t, rec.on, 1)
	assert.Equal(t, 60.0, rec.on[0].ID)

	m, _ = update(m, tea.MouseMsg{X: 15, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	require.Len(t, rec.on, 2)
	assert.Equal(t, 62.0, rec.on[1].ID)
	require.Len(t, rec.off, 1)

	update(m, tea.MouseMsg{X: 15, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	assert.Len(t, rec.off, 2)

	assert.Contains(t, m.View(), "C4")
}

func TestKeyHoldAndRelease(t *testing.T) {
	m, rec := newModel(t)

	m, cmd := update(m, runes('a'))
	require.NotNil(t, cmd)
	require.Len(t, rec.on, 1)
	assert.Equal(t, 60.0, rec.on[0].ID)
	first := m.state.held['a']

	// a repeat pushes the release back
	m, _ = update(m, runes('a'))
	assert.Len(t, rec.on, 1)
	m, _ = update(m, holdExpiredMsg{code: 'a', at: first})
	assert.Empty(t, rec.off)

	m, _ = update(m, holdExpiredMsg{code: 'a', at: m.state.held['a']})
	require.Len(t, rec.off, 1)
	assert.Empty(t, m.state.held)
}

func TestBlurReleasesHeldKeys(t *testing.T) {
	m, rec := newModel(t)
	m, _ = update(m, runes('d'))
	require.Len(t, rec.on, 1)

	m, _ = update(m, tea.BlurMsg{})
	assert.Len(t, rec.off, 1)
	update(m, runes('d'))
	assert.Len(t, rec.on, 1)
}

func TestChannelAndTranspose(t *testing.T) {
	m, rec := newModel(t)

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'3'}})
	assert.Equal(t, 2, m.Keyboard.Props().ActiveChannel)

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyRight})
	p := m.Keyboard.Props()
	assert.Equal(t, 72.0, p.StartKey)
	assert.Equal(t, 72.0, p.KeyboardMapping['a'])

	m, _ = update(m, runes('a'))
	require.Len(t, rec.on, 1)
	assert.Equal(t, 72.0, rec.on[0].ID)
	assert.Equal(t, 2, rec.on[0].Channel)

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 13, m.Keyboard.Props().OctaveDivision)
}

func TestConfigureErrorShowsStatus(t *testing.T) {
	// twelve steps down reaches division 0
	m, _ := newModel(t)
	for i := 0; i < 12; i++ {
		m, _ = update(m, tea.KeyMsg{Type: tea.KeyDown})
	}
	assert.NotEmpty(t, m.state.status)
	assert.Contains(t, m.View(), m.state.status)
}

func TestNotesAndDevices(t *testing.T) {
	m, _ := newModel(t)
	m, _ = update(m, NotesMsg{{Channel: 4, ID: 64, Velocity: 1}})
	on := 0
	for _, k := range m.Keyboard.Keys() {
		if k.On {
			on++
			assert.Equal(t, 4, k.Channel)
		}
	}
	assert.Equal(t, 1, on)

	m, _ = update(m, DeviceEventMsg{Type: midi.DeviceConnected, Port: midi.Port{Name: "Synth", Direction: midi.Out}})
	assert.Equal(t, "midi out connected: Synth", m.state.status)
}

func TestQuit(t *testing.T) {
	m, rec := newModel(t)
	m, _ = update(m, runes('a'))
	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Len(t, rec.off, 1)
	assert.Empty(t, m.View())
}
