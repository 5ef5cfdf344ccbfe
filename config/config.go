package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"go-keyboard/input"
	"go-keyboard/keyboard"
	"go-keyboard/layout"
	"go-keyboard/theme"
)

var ErrUnsupportedFormat = errors.New("unsupported config format")

// Keyboard holds the widget flags shared by every command that builds a
// keyboard. Field names double as config file keys.
type Keyboard struct {
	StartKey         float64  `name:"start-key" help:"Lowest key id (60 is middle C)." default:"48"`
	EndKey           float64  `name:"end-key" help:"Highest key id." default:"72"`
	OctaveDivision   int      `name:"octave-division" help:"Equal steps per octave (1-47)." default:"12"`
	KeySpacing       string   `name:"key-spacing" help:"Width profile." enum:"standard,equal" default:"standard"`
	EqualWidths      bool     `name:"equal-widths" help:"Shorthand for --key-spacing=equal."`
	AccidentalHeight string   `name:"accidental-key-height" help:"Accidental length, e.g. 65% or 40px." default:"65%"`
	InBetweenHeight  string   `name:"in-between-accidental-key-height" help:"In-between accidental length (5/6 of the accidental length when empty)."`
	Orientation      string   `name:"orientation" help:"Keyboard rotation." enum:"normal,rotate-90,rotate-180,rotate-270" default:"normal"`
	ActiveChannel    int      `name:"active-channel" help:"Channel of locally played notes (0-15)." default:"0"`
	KeyboardVelocity float64  `name:"keyboard-velocity" help:"Velocity of notes played from the computer keyboard." default:"0.75"`
	KeepVelocity     bool     `name:"keep-drag-velocity" help:"Keys entered by a mouse drag reuse the press velocity."`
	IgnoreFocus      bool     `name:"ignore-focus" help:"Accept computer keyboard input without focus."`
	Mapping          string   `name:"mapping" help:"Keyboard mapping file (json, yaml or toml)." type:"path"`
	ChannelColors    []string `name:"channel-colors" help:"Channel colours as #rrggbb, one per channel."`
	LiveHitTest      bool     `name:"live-hit-test" help:"Hit test against live geometry instead of the per-frame cache."`
}

// Log configures the debug log.
type Log struct {
	Level string `name:"level" help:"Log level." enum:"trace,debug,info,warn,error" default:"info"`
	File  string `name:"file" help:"Debug log file. Logging is off unless set or level is debug or trace." type:"path"`
}

// Props converts the flags into widget props, loading the mapping file.
func (k Keyboard) Props() (keyboard.Props, error) {
	p := keyboard.DefaultProps()
	p.StartKey = k.StartKey
	p.EndKey = k.EndKey
	p.OctaveDivision = k.OctaveDivision
	p.KeySpacing = layout.Spacing(k.KeySpacing)
	p.EqualWidths = k.EqualWidths
	p.Orientation = layout.Orientation(k.Orientation)
	p.ActiveChannel = k.ActiveChannel
	p.KeyboardVelocity = k.KeyboardVelocity
	p.IgnoreFocus = k.IgnoreFocus
	p.LiveHitTest = k.LiveHitTest
	if k.KeepVelocity {
		p.DragVelocity = input.KeepPressVelocity
	}

	if k.AccidentalHeight != "" {
		l, err := layout.ParseLength(k.AccidentalHeight)
		if err != nil {
			return p, fmt.Errorf("accidental-key-height: %w", err)
		}
		p.AccidentalKeyHeight = l
	}
	if k.InBetweenHeight != "" {
		l, err := layout.ParseLength(k.InBetweenHeight)
		if err != nil {
			return p, fmt.Errorf("in-between-accidental-key-height: %w", err)
		}
		p.InBetweenAccidentalKeyHeight = l
	}

	if k.Mapping != "" {
		m, err := LoadMapping(k.Mapping)
		if err != nil {
			return p, err
		}
		p.KeyboardMapping = m
	}

	for _, s := range k.ChannelColors {
		c, err := theme.ParseHex(s)
		if err != nil {
			return p, fmt.Errorf("channel-colors: %w", err)
		}
		p.ChannelColors = append(p.ChannelColors, c)
	}

	return p, p.Validate()
}

// Dir returns the config directory path
func Dir() (string, error) {
	if runtime.GOOS != "windows" {
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "go-keyboard"), nil
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-keyboard"), nil
}

// FormatOf names the format of path by its extension.
func FormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json", nil
	case ".yaml", ".yml":
		return "yaml", nil
	case ".toml":
		return "toml", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
}

// NormalizeFormat maps format spellings onto json, yaml or toml.
func NormalizeFormat(f string) (string, error) {
	switch strings.ToLower(f) {
	case "json":
		return "json", nil
	case "yaml", "yml":
		return "yaml", nil
	case "toml":
		return "toml", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

// CandidatePaths lists config files to try per format. userPath, when set,
// comes first and is routed by its extension.
func CandidatePaths(userPath string) (jsonPaths, yamlPaths, tomlPaths []string) {
	add := func(slice *[]string, p string) { *slice = append(*slice, p) }

	if userPath != "" {
		switch f, _ := FormatOf(userPath); f {
		case "yaml":
			add(&yamlPaths, userPath)
		case "toml":
			add(&tomlPaths, userPath)
		default:
			add(&jsonPaths, userPath)
		}
	}

	var dirs []string
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}
	if dir, err := Dir(); err == nil {
		dirs = append(dirs, dir)
	}
	for _, dir := range dirs {
		for _, base := range []string{"go-keyboard", "config"} {
			add(&jsonPaths, filepath.Join(dir, base+".json"))
			add(&yamlPaths, filepath.Join(dir, base+".yaml"))
			add(&yamlPaths, filepath.Join(dir, base+".yml"))
			add(&tomlPaths, filepath.Join(dir, base+".toml"))
		}
	}
	return
}

// FindUserConfig picks --config out of raw arguments before kong parses
// them, so the file can feed kong's resolvers.
func FindUserConfig(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if strings.HasPrefix(a, "--config=") {
			return a[len("--config="):]
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return os.Getenv("GO_KEYBOARD_CONFIG")
}
