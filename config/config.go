// Package config describes charts declaratively. A chart file lists its
// canvas, coordinate system and layers, each with inline data and a style
// table, and can be written as TOML or YAML.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/phanxgames/canopy"
)

// Format names a config encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Backend names accepted by Chart.Backend.
const (
	BackendScene = "scene"
	BackendSVG   = "svg"
)

// Chart is the top-level chart file.
type Chart struct {
	Width      float64 `toml:"width" yaml:"width"`
	Height     float64 `toml:"height" yaml:"height"`
	Backend    string  `toml:"backend" yaml:"backend,omitempty"`
	Coordinate string  `toml:"coordinate" yaml:"coordinate,omitempty"`
	Theme      string  `toml:"theme" yaml:"theme,omitempty"`
	Layers     []Layer `toml:"layers" yaml:"layers"`
}

// Layer declares one chart layer.
type Layer struct {
	Type   string `toml:"type" yaml:"type"`
	ID     string `toml:"id" yaml:"id,omitempty"`
	Axis   string `toml:"axis" yaml:"axis,omitempty"`
	Layout *Rect  `toml:"layout" yaml:"layout,omitempty"`
	Data   *Data  `toml:"data" yaml:"data,omitempty"`
	// Style is decoded by the layer into its own style struct.
	Style     map[string]any                      `toml:"style" yaml:"style,omitempty"`
	Animation map[string]canopy.SublayerAnimation `toml:"animation" yaml:"animation,omitempty"`
	// Nice overrides the layer style's nice policy.
	Nice *canopy.Nice `toml:"nice" yaml:"nice,omitempty"`
}

// Rect is a layer layout in canvas units.
type Rect struct {
	X      float64 `toml:"x" yaml:"x"`
	Y      float64 `toml:"y" yaml:"y"`
	Width  float64 `toml:"width" yaml:"width"`
	Height float64 `toml:"height" yaml:"height"`
}

// Canopy converts r.
func (r *Rect) Canopy() canopy.Rect {
	if r == nil {
		return canopy.Rect{}
	}
	return canopy.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

// Data is an inline table. Cells may be strings or numbers.
type Data struct {
	Columns []string `toml:"columns" yaml:"columns"`
	Rows    [][]any  `toml:"rows" yaml:"rows"`
}

// Table converts d, formatting numeric cells.
func (d *Data) Table() (*canopy.Table, error) {
	rows := make([][]string, len(d.Rows))
	for i, r := range d.Rows {
		if len(r) != len(d.Columns) {
			return nil, fmt.Errorf("row %d has %d cells, want %d", i, len(r), len(d.Columns))
		}
		rows[i] = make([]string, len(r))
		for j, v := range r {
			s, err := cell(v)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", i, d.Columns[j], err)
			}
			rows[i][j] = s
		}
	}
	return canopy.NewTable(d.Columns, rows), nil
}

func cell(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	case nil:
		return "", nil
	}
	return "", fmt.Errorf("unsupported cell type %T", v)
}

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown config extension %q", filepath.Ext(path))
}

// Load reads and validates a chart file, choosing the decoder by extension.
func Load(path string) (*Chart, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path) //nolint:gosec // path is provided by caller
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck

	cfg, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads and validates a chart in format from r.
func Decode(r io.Reader, format Format) (*Chart, error) {
	var cfg Chart
	switch format {
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config format %q", format)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes c to path as YAML.
func (c *Chart) Save(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is provided by caller
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck
	return c.Encode(f)
}

// Encode writes c as YAML.
func (c *Chart) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}

// Validate checks the chart for structural problems the layers cannot
// report themselves.
func (c *Chart) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return canopy.NewError(canopy.ErrCodeConfiguration, "chart size must be positive, got %vx%v", c.Width, c.Height)
	}
	switch c.Backend {
	case "", BackendScene, BackendSVG:
	default:
		return canopy.NewError(canopy.ErrCodeConfiguration, "unknown backend %q", c.Backend)
	}
	if _, err := canopy.ParseCoordinateSystem(c.Coordinate); err != nil {
		return err
	}
	if c.Theme != "" {
		if _, err := canopy.ThemeByName(c.Theme); err != nil {
			return err
		}
	}
	ids := make(map[string]int)
	axes := 0
	for i, l := range c.Layers {
		if l.Type == "" {
			return canopy.NewError(canopy.ErrCodeConfiguration, "layer %d: missing type", i)
		}
		if l.Type == "axis" {
			axes++
		}
		if l.ID != "" {
			if j, dup := ids[l.ID]; dup {
				return canopy.NewError(canopy.ErrCodeConfiguration, "layers %d and %d share id %q", j, i, l.ID)
			}
			ids[l.ID] = i
		}
		switch l.Axis {
		case "", canopy.AxisMain, canopy.AxisMinor:
		default:
			return canopy.NewError(canopy.ErrCodeConfiguration, "layer %d: unknown axis %q", i, l.Axis)
		}
		if l.Data != nil {
			if _, err := l.Data.Table(); err != nil {
				return canopy.WrapError(canopy.ErrCodeConfiguration, err, "layer %d: data", i)
			}
		}
	}
	if axes > 1 {
		return canopy.NewError(canopy.ErrCodeConfiguration, "%d axis layers, at most one allowed", axes)
	}
	return nil
}

// String renders c as YAML, for logs.
func (c *Chart) String() string {
	var b bytes.Buffer
	if err := c.Encode(&b); err != nil {
		return fmt.Sprintf("config.Chart(%v)", err)
	}
	return b.String()
}
