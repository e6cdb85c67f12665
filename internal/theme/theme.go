// Package theme resolves icon keys and state colours for rendering.
package theme

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tinytelemetry/guardbar/internal/widget"
	"gopkg.in/yaml.v3"
)

// DefaultName is the built-in theme.
const DefaultName = "default"

// Theme maps icon keys to glyphs and states to lipgloss colours.
// It is built once at startup and only read afterwards.
type Theme struct {
	Name      string
	Separator string
	icons     map[string]string
	colors    map[widget.State]string
}

// file is the on-disk YAML shape.
type file struct {
	Name      string            `yaml:"name"`
	Extends   string            `yaml:"extends"`
	Separator *string           `yaml:"separator"`
	Icons     map[string]string `yaml:"icons"`
	Colors    map[string]string `yaml:"colors"`
}

var builtin = map[string]func() *Theme{
	"default": func() *Theme {
		return &Theme{
			Name:      "default",
			Separator: " | ",
			icons: map[string]string{
				"firewall":   "\U000f0582",
				"killswitch": "\U000f0565",
			},
			colors: map[widget.State]string{
				widget.Idle:     "250",
				widget.Info:     "39",
				widget.Good:     "42",
				widget.Warning:  "220",
				widget.Critical: "196",
			},
		}
	},
	"plain": func() *Theme {
		return &Theme{
			Name:      "plain",
			Separator: " | ",
			icons: map[string]string{
				"firewall":   "FW",
				"killswitch": "KS",
			},
			colors: map[widget.State]string{},
		}
	},
}

// Builtin returns a copy of a built-in theme.
func Builtin(name string) (*Theme, error) {
	if name == "" {
		name = DefaultName
	}
	mk, ok := builtin[name]
	if !ok {
		return nil, fmt.Errorf("theme: unknown built-in theme %q", name)
	}
	return mk(), nil
}

// Load resolves the theme to use. With an empty path the built-in theme name
// is returned; otherwise the file is layered over the built-in it extends
// (or over name when it does not say).
func Load(name, path string) (*Theme, error) {
	if path == "" {
		return Builtin(name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("theme: read %s: %w", path, err)
	}
	return Parse(name, data)
}

// Parse decodes a YAML theme. Unknown fields are rejected.
func Parse(name string, data []byte) (*Theme, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("theme: parse: %w", err)
	}

	base := name
	if f.Extends != "" {
		base = f.Extends
	}
	t, err := Builtin(base)
	if err != nil {
		return nil, err
	}

	if f.Name != "" {
		t.Name = f.Name
	}
	if f.Separator != nil {
		t.Separator = *f.Separator
	}
	for k, v := range f.Icons {
		t.icons[k] = v
	}
	for k, v := range f.Colors {
		t.colors[widget.ParseState(k)] = v
	}
	return t, nil
}

// Icon returns the glyph for key, or key itself when the theme has none.
func (t *Theme) Icon(key string) string {
	if t == nil {
		return key
	}
	if glyph, ok := t.icons[key]; ok {
		return glyph
	}
	return key
}

// Color returns the colour for state, or "" for the terminal default.
func (t *Theme) Color(state widget.State) string {
	if t == nil {
		return ""
	}
	return t.colors[state]
}
