package canopy

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// RGBA converts c to a straight-alpha color.NRGBA.
func (c Color) RGBA() color.NRGBA {
	return color.NRGBA{R: unit8(c.R), G: unit8(c.G), B: unit8(c.B), A: unit8(c.A)}
}

// Hex returns the color as "#rrggbb", ignoring alpha.
func (c Color) Hex() string {
	n := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
}

// ParseColor parses "#rgb", "#rrggbb" or "#rrggbbaa". Unparseable input
// yields opaque black and an error.
func ParseColor(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) == 6 {
		s += "ff"
	}
	if len(s) != 8 {
		return Color{A: 1}, fmt.Errorf("parse color %q: bad length", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{A: 1}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return Color{
		R: float64(v>>24&0xff) / 255,
		G: float64(v>>16&0xff) / 255,
		B: float64(v>>8&0xff) / 255,
		A: float64(v&0xff) / 255,
	}, nil
}

// MarshalText encodes the color as "#rrggbb", or "#rrggbbaa" when it is
// translucent.
func (c Color) MarshalText() ([]byte, error) {
	if c.A >= 1 {
		return []byte(c.Hex()), nil
	}
	return []byte(fmt.Sprintf("%s%02x", c.Hex(), unit8(c.A))), nil
}

// UnmarshalText decodes any form ParseColor accepts, so colors can be
// written as hex strings in TOML and YAML.
func (c *Color) UnmarshalText(b []byte) error {
	v, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

func unit8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// Vec2 is a 2D vector used for positions, offsets and sizes.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}


// CoordinateSystem is the coordinate space owned by the axis layer.
type CoordinateSystem uint8

const (
	Cartesian  CoordinateSystem = iota // x/y rectangular axes
	Polar                              // angle/radius
	Geographic                         // projected longitude/latitude from a base map
)

func (c CoordinateSystem) String() string {
	switch c {
	case Cartesian:
		return "cartesian"
	case Polar:
		return "polar"
	case Geographic:
		return "geographic"
	default:
		return "unknown"
	}
}

// ParseCoordinateSystem maps a config name to a CoordinateSystem.
func ParseCoordinateSystem(s string) (CoordinateSystem, error) {
	switch strings.ToLower(s) {
	case "", "cartesian":
		return Cartesian, nil
	case "polar":
		return Polar, nil
	case "geographic", "geo":
		return Geographic, nil
	}
	return Cartesian, NewError(ErrCodeConfiguration, "unknown coordinate system %q", s)
}

// Shape identifies which draw routine renders a sublayer's geometry.
type Shape uint8

const (
	ShapeRect   Shape = iota // axis-aligned rectangles
	ShapeArc                 // annular sectors
	ShapeCircle              // circles
	ShapeLine                // polylines
	ShapeText                // text labels
)

func (s Shape) String() string {
	switch s {
	case ShapeRect:
		return "rect"
	case ShapeArc:
		return "arc"
	case ShapeCircle:
		return "circle"
	case ShapeLine:
		return "line"
	case ShapeText:
		return "text"
	default:
		return "unknown"
	}
}

// EventType identifies a kind of pointer interaction.
type EventType uint8

const (
	EventPointerDown  EventType = iota // fires when a pointer button is pressed
	EventPointerUp                     // fires when a pointer button is released
	EventPointerMove                   // fires when the pointer moves without a button
	EventClick                         // fires on press then release over the same node
	EventPointerEnter                  // fires when the pointer enters a node's bounds
	EventPointerLeave                  // fires when the pointer leaves a node's bounds
)

// Name returns the layer event name an interaction is re-fired under.
func (e EventType) Name() string {
	switch e {
	case EventPointerDown:
		return "pointerdown"
	case EventPointerUp:
		return "pointerup"
	case EventPointerMove:
		return "pointermove"
	case EventClick:
		return "click"
	case EventPointerEnter:
		return "pointerenter"
	case EventPointerLeave:
		return "pointerleave"
	default:
		return "unknown"
	}
}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button (scroll wheel click)
)
