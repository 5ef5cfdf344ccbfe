package widgets

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-keyboard/pitch"
	"go-keyboard/theme"
)

// RenderSwatch renders a single coloured square
func RenderSwatch(color theme.RGB) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(color.Hex()))
	return style.Render("■")
}

// RenderLegendItem renders a single legend item: "■ Name - description"
func RenderLegendItem(color theme.RGB, name, desc string) string {
	return fmt.Sprintf("  %s %s - %s", RenderSwatch(color), name, desc)
}

// RenderChannelLegend renders one swatch per channel with the active
// channel's number bracketed.
func RenderChannelLegend(colors []theme.RGB, active int) string {
	var out strings.Builder
	for ch, c := range colors {
		if ch > 0 {
			out.WriteString(" ")
		}
		out.WriteString(RenderSwatch(c))
		if ch == active {
			out.WriteString(fmt.Sprintf("[%d]", ch+1))
		} else {
			out.WriteString(fmt.Sprintf("%d", ch+1))
		}
	}
	return out.String()
}

// RenderMapping lists the computer keys of a mapping in key id order with
// the note each one plays.
func RenderMapping(mapping map[int]float64) string {
	codes := make([]int, 0, len(mapping))
	for code := range mapping {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool {
		if mapping[codes[i]] != mapping[codes[j]] {
			return mapping[codes[i]] < mapping[codes[j]]
		}
		return codes[i] < codes[j]
	})

	var parts []string
	for _, code := range codes {
		parts = append(parts, fmt.Sprintf("%s:%s", codeName(code), pitch.Name(mapping[code])))
	}
	return strings.Join(parts, " ")
}

func codeName(code int) string {
	if code > ' ' && code < 0x7f {
		return string(rune(code))
	}
	return fmt.Sprintf("#%d", code)
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}
