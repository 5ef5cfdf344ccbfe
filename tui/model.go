package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-keyboard/debug"
	"go-keyboard/hittest"
	"go-keyboard/input"
	"go-keyboard/keyboard"
	"go-keyboard/layout"
	"go-keyboard/midi"
	"go-keyboard/pitch"
	"go-keyboard/render"
	"go-keyboard/theme"
	"go-keyboard/widgets"
)

// DefaultHold is how long a key stays down after the terminal last reported
// it. It has to outlast the terminal's initial key repeat delay.
const DefaultHold = 600 * time.Millisecond

const (
	kbTop     = 2
	maxHeight = 12
)

// layoutBounds holds cached layout info
type layoutBounds struct {
	width, height int
	kbHeight      int
}

// state is shared between copies of the Model.
type state struct {
	held   map[int]time.Time
	status string
}

type Model struct {
	Keyboard  *keyboard.Keyboard
	Keys      *input.Dispatcher
	DeviceMgr *midi.DeviceManager
	Theme     *theme.Theme
	Hold      time.Duration
	quitting  bool
	bounds    *layoutBounds
	state     *state
}

// NotesMsg replaces the host-driven keysOn, typically from a MIDI input.
type NotesMsg []keyboard.Note

type DeviceEventMsg midi.DeviceEvent

// holdExpiredMsg releases code unless it was pressed again after at.
type holdExpiredMsg struct {
	code int
	at   time.Time
}

// NewModel drives kb, which must have been built with keys as its key
// source. deviceMgr may be nil.
func NewModel(kb *keyboard.Keyboard, keys *input.Dispatcher, deviceMgr *midi.DeviceManager, th *theme.Theme) Model {
	if th == nil {
		th = theme.Default()
	}
	kb.Controller().Focus()
	return Model{
		Keyboard:  kb,
		Keys:      keys,
		DeviceMgr: deviceMgr,
		Theme:     th,
		Hold:      DefaultHold,
		bounds:    &layoutBounds{},
		state:     &state{held: make(map[int]time.Time)},
	}
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	if deviceMgr == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	return ListenForDevices(m.DeviceMgr)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	ctrl := m.Keyboard.Controller()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bounds.width, m.bounds.height = msg.Width, msg.Height

	case tea.FocusMsg:
		ctrl.Focus()

	case tea.BlurMsg:
		m.releaseHeld()
		ctrl.Blur()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			m.releaseHeld()
			return m, tea.Quit
		case "left":
			m.transpose(-pitch.OctaveSize)
			return m, nil
		case "right":
			m.transpose(pitch.OctaveSize)
			return m, nil
		case "up":
			m.divide(1)
			return m, nil
		case "down":
			m.divide(-1)
			return m, nil
		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			m.setChannel(int(msg.String()[0] - '1'))
			return m, nil
		}
		if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 {
			return m, m.keyDown(int(msg.Runes[0]), msg.Alt)
		}

	case holdExpiredMsg:
		if at, ok := m.state.held[msg.code]; ok && at.Equal(msg.at) {
			delete(m.state.held, msg.code)
			m.Keys.Dispatch(input.KeyEvent{Code: msg.code})
		}

	case tea.MouseMsg:
		m.mouse(msg)

	case NotesMsg:
		if err := m.Keyboard.SetKeysOn(msg); err != nil {
			m.state.status = err.Error()
		}

	case DeviceEventMsg:
		event := midi.DeviceEvent(msg)
		verb := "connected"
		if event.Type == midi.DeviceDisconnected {
			verb = "disconnected"
		}
		m.state.status = fmt.Sprintf("midi %s %s: %s", event.Port.Direction, verb, event.Port.Name)
		return m, ListenForDevices(m.DeviceMgr)
	}

	return m, nil
}

// keyDown presses code and schedules its release. Terminals only report
// repeats, so every report pushes the release back.
func (m Model) keyDown(code int, alt bool) tea.Cmd {
	now := time.Now()
	_, repeat := m.state.held[code]
	m.state.held[code] = now

	var mods input.Modifier
	if alt {
		mods |= input.ModAlt
	}
	m.Keys.Dispatch(input.KeyEvent{Code: code, Down: true, Repeat: repeat, Modifiers: mods})

	return tea.Tick(m.Hold, func(time.Time) tea.Msg {
		return holdExpiredMsg{code: code, at: now}
	})
}

func (m Model) releaseHeld() {
	for code := range m.state.held {
		m.Keys.Dispatch(input.KeyEvent{Code: code})
	}
	m.state.held = make(map[int]time.Time)
}

func (m Model) mouse(msg tea.MouseMsg) {
	ctrl := m.Keyboard.Controller()
	x, y := float64(msg.X)+0.5, float64(msg.Y)+0.5

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			ctrl.MouseDown(x, y, input.ButtonPrimary)
		}
	case tea.MouseActionMotion:
		ctrl.MouseMove(x, y)
	case tea.MouseActionRelease:
		ctrl.MouseUp(x, y, input.ButtonPrimary)
	}
}

func (m Model) configure(mutate func(*keyboard.Props)) {
	p := m.Keyboard.Props()
	mutate(&p)
	if err := m.Keyboard.Configure(p); err != nil {
		m.state.status = err.Error()
		debug.Warn("tui", "configure rejected", "err", err)
		return
	}
	m.state.status = ""
}

func (m Model) transpose(by float64) {
	m.releaseHeld()
	m.configure(func(p *keyboard.Props) {
		p.StartKey += by
		p.EndKey += by
		shifted := make(map[int]float64, len(p.KeyboardMapping))
		for code, id := range p.KeyboardMapping {
			shifted[code] = id + by
		}
		p.KeyboardMapping = shifted
	})
}

func (m Model) divide(by int) {
	m.configure(func(p *keyboard.Props) { p.OctaveDivision += by })
}

func (m Model) setChannel(ch int) {
	m.configure(func(p *keyboard.Props) { p.ActiveChannel = ch })
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	p := m.Keyboard.Props()
	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Bright())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	statusStyle := lipgloss.NewStyle().
		Foreground(m.Theme.FG()).
		Background(m.Theme.Muted()).
		Padding(0, 1)

	header := headerStyle.Render(fmt.Sprintf("go-keyboard  %s-%s  %d-EDO  ch:%d",
		pitch.Name(p.StartKey), pitch.Name(p.EndKey), p.OctaveDivision, p.ActiveChannel+1))

	// Compute layout bounds
	width := m.bounds.width
	if width <= 0 {
		width = 80
	}
	m.bounds.kbHeight = keyboardHeight(m.bounds.height)
	b := layout.Rect{Left: 0, Top: kbTop, Right: float64(width), Bottom: float64(kbTop + m.bounds.kbHeight)}
	m.Keyboard.SetBounds(b)
	m.Keyboard.Frame()

	colors := make([]theme.RGB, keyboard.MaxChannel+1)
	for ch := range colors {
		colors[ch] = m.Keyboard.ChannelColor(ch)
	}
	legend := widgets.RenderChannelLegend(colors, p.ActiveChannel)

	help := dimStyle.Render(widgets.RenderKeyHelp([]widgets.KeySection{{
		Keys: []widgets.KeyBinding{
			{Key: "mouse/keys", Desc: widgets.RenderMapping(p.KeyboardMapping)},
			{Key: "1-9", Desc: "channel"},
			{Key: "←/→ ↑/↓", Desc: "octave, division"},
			{Key: "esc", Desc: "quit"},
		},
	}}))

	var out strings.Builder
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(m.paint(b, width))
	out.WriteString("\n\n")
	out.WriteString(legend)
	out.WriteString("\n")
	out.WriteString(help)
	if m.state.status != "" {
		out.WriteString("\n")
		out.WriteString(statusStyle.Render(m.state.status))
	}
	return out.String()
}

func keyboardHeight(rows int) int {
	h := rows - kbTop - 8
	if h > maxHeight {
		h = maxHeight
	}
	if h < 3 {
		h = 3
	}
	return h
}

// paint samples the keyboard at every cell centre and paints runs of
// cells with the same key in one style.
func (m Model) paint(b layout.Rect, width int) string {
	p := m.Keyboard.Props()
	scene := &hittest.LayoutScene{Layout: m.Keyboard.Layout(), Bounds: b, Orientation: p.Orientation}
	if scene.Orientation == "" {
		scene.Orientation = layout.Normal
	}
	live := hittest.NewLive(scene)

	state := make(map[float64]layout.Key)
	for _, k := range m.Keyboard.Keys() {
		state[k.ID] = k
	}
	kinds := make(map[float64]pitch.Kind)
	for _, oct := range m.Keyboard.Layout().Octaves {
		for _, k := range oct.Keys {
			kinds[k.ID] = k.Kind
		}
	}

	bg := m.Theme.RGB(theme.RoleBG)
	rows := make([]string, 0, m.bounds.kbHeight)
	for row := 0; row < m.bounds.kbHeight; row++ {
		y := b.Top + float64(row) + 0.5
		var line strings.Builder
		var run strings.Builder
		var style lipgloss.Style
		flush := func() {
			if run.Len() > 0 {
				line.WriteString(style.Render(run.String()))
				run.Reset()
			}
		}

		prev, hadPrev := 0.0, false
		for col := 0; col < width; col++ {
			hit, ok := live.KeyBoundsAt(float64(col)+0.5, y)
			var fg theme.RGB
			symbol := ' '
			if ok {
				kind := kinds[hit.ID]
				s := state[hit.ID]
				fg = render.KeyColor(m.Theme, kind, s, m.Keyboard.ChannelColor(s.Channel))
				symbol = m.symbol(kind, s, row == m.bounds.kbHeight-1)
				if hadPrev && prev != hit.ID && kind.Row == pitch.RowNone {
					symbol = m.Theme.Symbols.Separator
				}
			}
			next := lipgloss.NewStyle().Foreground(lipgloss.Color(fg.Hex())).Background(lipgloss.Color(bg.Hex()))
			if symbol == m.Theme.Symbols.Separator {
				next = lipgloss.NewStyle().Foreground(lipgloss.Color(bg.Hex())).Background(lipgloss.Color(fg.Hex()))
			}
			if run.Len() > 0 && !sameColors(style, next) {
				flush()
			}
			style = next
			run.WriteRune(symbol)
			prev, hadPrev = hit.ID, ok
		}
		flush()
		rows = append(rows, line.String())
	}
	return strings.Join(rows, "\n")
}

// symbol picks the glyph of a key cell. Sounding keys are marked on the
// last row.
func (m Model) symbol(kind pitch.Kind, s layout.Key, last bool) rune {
	switch {
	case s.On && last:
		return m.Theme.Symbols.Pressed
	case kind.Row == pitch.RowNone:
		return m.Theme.Symbols.Natural
	case kind.Row == pitch.RowInBetween:
		return m.Theme.Symbols.InBetween
	}
	return m.Theme.Symbols.Accidental
}

func sameColors(a, b lipgloss.Style) bool {
	return a.GetForeground() == b.GetForeground() && a.GetBackground() == b.GetBackground()
}
