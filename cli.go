package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"go-keyboard/config"
	"go-keyboard/input"
	"go-keyboard/keyboard"
	"go-keyboard/layout"
	"go-keyboard/midi"
	"go-keyboard/pitch"
	"go-keyboard/render"
	"go-keyboard/theme"
	"go-keyboard/tui"
)

type CLI struct {
	ConfigFile string     `name:"config" help:"Config file (json, yaml or toml)." type:"path"`
	Log        config.Log `embed:"" prefix:"log."`

	Play   PlayCmd       `cmd:"" default:"withargs" help:"Play the keyboard in the terminal."`
	Render RenderCmd     `cmd:"" help:"Render the keyboard to a PNG image."`
	Layout LayoutCmd     `cmd:"" help:"Print the key geometry."`
	Ports  PortsCmd      `cmd:"" help:"List MIDI ports."`
	Config ConfigCommand `cmd:"" help:"Configuration helpers."`
}

// Look configures the palettes.
type Look struct {
	Palette        string `name:"palette" help:"GIMP palette for the keys (built-in name or .gpl path)." default:"ivory"`
	ChannelPalette string `name:"channel-palette" help:"GIMP palette with one colour per channel." default:"channels"`
}

func (l Look) theme() (*theme.Theme, error) {
	palette, err := theme.LoadGPL(l.Palette)
	if err != nil {
		return nil, err
	}
	channels, err := theme.LoadGPL(l.ChannelPalette)
	if err != nil {
		return nil, err
	}
	return theme.New(palette, channels), nil
}

type PlayCmd struct {
	config.Keyboard `embed:""`
	Look            `embed:""`

	MidiOut string        `name:"midi-out" help:"Send notes to the MIDI output whose name contains this."`
	MidiIn  string        `name:"midi-in" help:"Highlight notes from the MIDI input whose name contains this."`
	Hold    time.Duration `name:"hold" help:"Release a computer key this long after its last repeat." default:"600ms"`
}

func (c *PlayCmd) Run(logger *slog.Logger) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("play needs a terminal; use render or layout instead")
	}

	props, err := c.Keyboard.Props()
	if err != nil {
		return err
	}
	th, err := c.theme()
	if err != nil {
		return err
	}

	if c.MidiOut != "" {
		sink, err := midi.OpenSink(c.MidiOut)
		if err != nil {
			return err
		}
		defer sink.Close()
		props.OnKeyOn = sink.KeyOn
		props.OnKeyOff = sink.KeyOff
		logger.Info("midi output open", "port", c.MidiOut)
	}

	keys := input.NewDispatcher()
	kb, err := keyboard.New(props, keys)
	if err != nil {
		return err
	}
	defer kb.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	deviceMgr := midi.NewDeviceManager(nil)
	go deviceMgr.Run(ctx)

	m := tui.NewModel(kb, keys, deviceMgr, th)
	m.Hold = c.Hold
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithReportFocus())

	if c.MidiIn != "" {
		l := midi.NewListener(func(notes []keyboard.Note) { p.Send(tui.NotesMsg(notes)) })
		if err := l.ListenByName(c.MidiIn); err != nil {
			return err
		}
		defer l.Close()
		logger.Info("midi input open", "port", c.MidiIn)
	}

	_, err = p.Run()
	return err
}

type RenderCmd struct {
	config.Keyboard `embed:""`
	Look            `embed:""`

	Output string   `name:"output" short:"o" help:"PNG file to write." default:"keyboard.png" type:"path"`
	Width  int      `name:"width" help:"Image width in pixels." default:"1400"`
	Height int      `name:"height" help:"Image height in pixels." default:"200"`
	Labels bool     `name:"labels" help:"Label every C." default:"true" negatable:""`
	On     []string `name:"on" help:"Keys to highlight as id or channel:id, e.g. 60,2:64.5."`
}

func (c *RenderCmd) Run(logger *slog.Logger) error {
	props, err := c.Keyboard.Props()
	if err != nil {
		return err
	}
	props.KeysOn, err = parseNotes(c.On, props.ActiveChannel)
	if err != nil {
		return err
	}
	th, err := c.theme()
	if err != nil {
		return err
	}

	kb, err := keyboard.New(props, nil)
	if err != nil {
		return err
	}
	defer kb.Close()

	if err := render.SavePNG(c.Output, kb, render.Options{Width: c.Width, Height: c.Height, Theme: th, Labels: c.Labels}); err != nil {
		return err
	}
	logger.Info("rendered keyboard", "file", c.Output, "keys", len(kb.Keys()))
	fmt.Println(c.Output)
	return nil
}

// parseNotes reads "id" or "channel:id" entries. Channels are 1-based on the
// command line.
func parseNotes(specs []string, channel int) ([]keyboard.Note, error) {
	var out []keyboard.Note
	for _, s := range specs {
		ch := channel
		idPart := s
		if before, after, ok := strings.Cut(s, ":"); ok {
			n, err := strconv.Atoi(before)
			if err != nil || n < 1 || n > keyboard.MaxChannel+1 {
				return nil, fmt.Errorf("note %q: %w", s, keyboard.ErrInvalidChannel)
			}
			ch, idPart = n-1, after
		}
		id, err := strconv.ParseFloat(idPart, 64)
		if err != nil {
			return nil, fmt.Errorf("note %q: %w", s, err)
		}
		out = append(out, keyboard.Note{Channel: ch, ID: id, Velocity: 1})
	}
	return out, nil
}

type LayoutCmd struct {
	config.Keyboard `embed:""`

	Width  float64 `name:"width" help:"Keyboard width." default:"1400"`
	Height float64 `name:"height" help:"Keyboard height." default:"200"`
	Format string  `name:"format" help:"Output format." enum:"text,json,yaml,toml" default:"text"`
}

func (c *LayoutCmd) Run() error {
	props, err := c.Keyboard.Props()
	if err != nil {
		return err
	}
	kb, err := keyboard.New(props, nil)
	if err != nil {
		return err
	}
	defer kb.Close()
	kb.SetBounds(layout.Rect{Right: c.Width, Bottom: c.Height})

	if c.Format == "text" {
		return writeLayoutText(os.Stdout, kb.Rects())
	}
	data, err := config.Marshal(layoutTable(kb.Rects()), c.Format)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func writeLayoutText(w io.Writer, octaves []layout.OctaveRect) error {
	for _, oct := range octaves {
		if _, err := fmt.Fprintf(w, "octave %d z=%d [%.1f %.1f %.1f %.1f]\n",
			oct.Index, oct.ZIndex, oct.Rect.Left, oct.Rect.Top, oct.Rect.Right, oct.Rect.Bottom); err != nil {
			return err
		}
		for _, k := range oct.Keys {
			if _, err := fmt.Fprintf(w, "  %-8s %-4s %-10s z=%d [%.1f %.1f %.1f %.1f]\n",
				pitch.Name(k.ID), k.Kind.Placement, k.Kind.Row, k.ZIndex,
				k.Rect.Left, k.Rect.Top, k.Rect.Right, k.Rect.Bottom); err != nil {
				return err
			}
		}
	}
	return nil
}

func layoutTable(octaves []layout.OctaveRect) map[string]any {
	var rows []map[string]any
	for _, oct := range octaves {
		for _, k := range oct.Keys {
			rows = append(rows, map[string]any{
				"id":        k.ID,
				"name":      pitch.Name(k.ID),
				"octave":    oct.Index,
				"placement": k.Kind.Placement.String(),
				"row":       k.Kind.Row.String(),
				"z":         k.ZIndex,
				"left":      k.Rect.Left,
				"top":       k.Rect.Top,
				"right":     k.Rect.Right,
				"bottom":    k.Rect.Bottom,
			})
		}
	}
	return map[string]any{"keys": rows}
}

type PortsCmd struct {
	Watch bool `name:"watch" short:"w" help:"Keep watching for ports until interrupted."`
}

func (c *PortsCmd) Run() error {
	dm := midi.NewDeviceManager(nil)
	if !c.Watch {
		if !dm.Scan() {
			return errors.New("midi driver did not answer")
		}
		for _, p := range dm.Ports() {
			fmt.Printf("%-4s %s\n", p.Direction, p.Name)
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go dm.Run(ctx)
	for ev := range dm.Events() {
		sign := "+"
		if ev.Type == midi.DeviceDisconnected {
			sign = "-"
		}
		fmt.Printf("%s %-4s %s\n", sign, ev.Port.Direction, ev.Port.Name)
	}
	return nil
}

// ConfigCommand groups config-related subcommands.
type ConfigCommand struct {
	Init ConfigInit `cmd:"" help:"Generate a configuration template"`
}

// ConfigInit scaffolds a config or mapping file.
type ConfigInit struct {
	What   string `arg:"" name:"what" help:"Template to generate." enum:"play,render,layout,mapping"`
	Format string `help:"Output format" enum:"json,yaml,toml" default:"json"`
	Output string `help:"Destination file path (defaults to current directory)"`
	Force  bool   `help:"Overwrite if the file already exists"`
}

type logSection struct {
	Log config.Log `embed:"" prefix:"log."`
}

func (c *ConfigInit) Run() error {
	format, err := config.NormalizeFormat(c.Format)
	if err != nil {
		return err
	}

	var root map[string]any
	switch c.What {
	case "play":
		root = config.Template(PlayCmd{})
	case "render":
		root = config.Template(RenderCmd{})
	case "layout":
		root = config.Template(LayoutCmd{})
	case "mapping":
		root = config.MappingTemplate()
	default:
		return fmt.Errorf("unknown template %q", c.What)
	}
	if c.What != "mapping" {
		for k, v := range config.Template(logSection{}) {
			root[k] = v
		}
	}

	dest := c.Output
	if dest == "" {
		dest = c.What + "." + format
	}
	if err := config.WriteTemplate(dest, root, format, c.Force); err != nil {
		return err
	}
	fmt.Println(dest)
	return nil
}
