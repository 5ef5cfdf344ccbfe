package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"unicode/utf8"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"

	"go-keyboard/debug"
	"go-keyboard/util"
)

// LoadMapping reads a keyboard mapping file. The format follows the file
// extension.
func LoadMapping(path string) (map[int]float64, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, skipped, err := ParseMapping(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for _, s := range skipped {
		debug.Warn("config", "skipped mapping entry", "file", path, "entry", s)
	}
	return m, nil
}

// ParseMapping decodes a table of key code to key id. A key is either a
// single character, mapped to its rune value, or an integer key code.
// Entries with any other key or a non-numeric id are skipped and returned in
// skipped.
func ParseMapping(data []byte, format string) (m map[int]float64, skipped []string, err error) {
	raw, err := decode(data, format)
	if err != nil {
		return nil, nil, err
	}

	m = make(map[int]float64, len(raw))
	for _, k := range util.SortedKeys(raw) {
		code, okCode := keyCode(k)
		id, okID := number(raw[k])
		if !okCode || !okID {
			skipped = append(skipped, fmt.Sprintf("%s=%v", k, raw[k]))
			continue
		}
		m[code] = id
	}
	return m, skipped, nil
}

func decode(data []byte, format string) (map[string]any, error) {
	var raw any
	switch format {
	case "json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	case "yaml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	case "toml":
		tree, err := toml.LoadBytes(data)
		if err != nil {
			return nil, err
		}
		raw = tree.ToMap()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	switch t := raw.(type) {
	case map[string]any:
		return t, nil
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, v := range t {
			out[fmt.Sprint(k)] = v
		}
		return out, nil
	case nil:
		return map[string]any{}, nil
	}
	return nil, fmt.Errorf("mapping must be a table of key code to key id, got %T", raw)
}

func keyCode(k string) (int, bool) {
	if utf8.RuneCountInString(k) == 1 {
		r, _ := utf8.DecodeRuneInString(k)
		return int(r), true
	}
	n, err := strconv.Atoi(k)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// MappingTable renders m with printable codes as characters, ready to be
// marshalled into any of the config formats. Other codes get at least two
// digits so they never read back as characters.
func MappingTable(m map[int]float64) map[string]any {
	out := make(map[string]any, len(m))
	for code, id := range m {
		key := fmt.Sprintf("%02d", code)
		if code > ' ' && code < 0x7f {
			key = string(rune(code))
		}
		out[key] = id
	}
	return out
}
