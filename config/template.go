package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"

	"go-keyboard/input"
)

// Template builds a config file body from the kong tags of v: every flag
// under its name with its default value. Fields embedded with a prefix
// nest under the prefix.
func Template(v any) map[string]any {
	return buildMapFromStruct(reflect.TypeOf(v))
}

// MappingTemplate is the home-row mapping starting at middle C.
func MappingTemplate() map[string]any {
	return MappingTable(input.QwertyMapping(60))
}

// Marshal encodes a template in format.
func Marshal(root map[string]any, format string) ([]byte, error) {
	f, err := NormalizeFormat(format)
	if err != nil {
		return nil, err
	}
	switch f {
	case "yaml":
		return yaml.Marshal(root)
	case "toml":
		return toml.Marshal(root)
	}
	return json.MarshalIndent(root, "", "  ")
}

// WriteTemplate writes root to dest, refusing to overwrite unless force.
func WriteTemplate(dest string, root map[string]any, format string, force bool) error {
	if !force {
		if _, err := os.Stat(dest); err == nil {
			return errors.New("destination exists; use --force to overwrite")
		}
	}
	data, err := Marshal(root, format)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0o644)
}

func buildMapFromStruct(t reflect.Type) map[string]any {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	out := map[string]any{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Tag.Get("kong") == "-" {
			continue
		}

		if _, ok := f.Tag.Lookup("embed"); ok {
			name := strings.TrimSuffix(f.Tag.Get("prefix"), ".")
			sub := buildMapFromStruct(f.Type)
			if name == "" {
				for k, v := range sub {
					out[k] = v
				}
			} else {
				out[name] = sub
			}
			continue
		}

		key := f.Tag.Get("name")
		if key == "" {
			key = kebab(f.Name)
		}
		if val := defaultValue(f.Type, f.Tag.Get("default")); val != nil {
			out[key] = val
		}
	}
	return out
}

// kebab turns StartKey into start-key, the way kong names flags.
func kebab(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('-')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

var durationType = reflect.TypeOf(time.Duration(0))

func defaultValue(t reflect.Type, def string) any {
	if t == durationType {
		return def
	}
	switch t.Kind() {
	case reflect.String:
		return def
	case reflect.Bool:
		b, _ := strconv.ParseBool(def)
		return b
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, _ := strconv.ParseInt(def, 10, 64)
		return n
	case reflect.Float32, reflect.Float64:
		f, _ := strconv.ParseFloat(def, 64)
		return f
	case reflect.Slice:
		if def == "" {
			return []string{}
		}
		return strings.Split(def, ",")
	case reflect.Struct:
		return buildMapFromStruct(t)
	}
	return nil
}
