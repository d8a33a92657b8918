package canopy

// AnimationSpec names an animation kind and its options.
type AnimationSpec struct {
	Type    string           `toml:"type" yaml:"type"`
	Options AnimationOptions `toml:"options" yaml:"options,omitempty"`
}

// SublayerAnimation is the animation set of a sublayer. Enter plays on the
// first draw, Loop repeats after it, and Update times the transition of a
// redraw (only its duration, delay and easing are used).
type SublayerAnimation struct {
	Enter  *AnimationSpec `toml:"enter" yaml:"enter,omitempty"`
	Loop   *AnimationSpec `toml:"loop" yaml:"loop,omitempty"`
	Update *AnimationSpec `toml:"update" yaml:"update,omitempty"`
}

// Merge returns s with every AnimationSpec set in override applied on top.
// Within one, non-zero override fields win.
func (s SublayerAnimation) Merge(override SublayerAnimation) SublayerAnimation {
	return SublayerAnimation{
		Enter:  mergeSpec(s.Enter, override.Enter),
		Loop:   mergeSpec(s.Loop, override.Loop),
		Update: mergeSpec(s.Update, override.Update),
	}
}

func mergeSpec(base, over *AnimationSpec) *AnimationSpec {
	switch {
	case over == nil:
		return base
	case base == nil:
		c := *over
		return &c
	}
	out := *base
	if over.Type != "" {
		out.Type = over.Type
	}
	o := over.Options
	if o.Duration != 0 {
		out.Options.Duration = o.Duration
	}
	if o.Delay != 0 {
		out.Options.Delay = o.Delay
	}
	if o.Easing != "" {
		out.Options.Easing = o.Easing
	}
	if o.Loop {
		out.Options.Loop = true
	}
	if o.Offset != (Vec2{}) {
		out.Options.Offset = o.Offset
	}
	if o.Low != 0 {
		out.Options.Low = o.Low
	}
	return &out
}

// transition extracts the redraw transition from the Update spec.
func (s SublayerAnimation) transition() Transition {
	if s.Update == nil {
		return Transition{}
	}
	o := s.Update.Options
	return Transition{Duration: o.Duration, Delay: o.Delay, Easing: o.Easing}
}

// Theme holds palette and per-shape animation defaults.
type Theme struct {
	Name       string
	Palette    []Color
	Background Color
	Text       Color
	Animation  map[Shape]SublayerAnimation
}

// Color returns the palette entry for i, wrapping around.
func (t Theme) Color(i int) Color {
	if len(t.Palette) == 0 {
		return ColorWhite
	}
	if i < 0 {
		i = -i
	}
	return t.Palette[i%len(t.Palette)]
}

// AnimationFor returns the default animation set for shape.
func (t Theme) AnimationFor(shape Shape) SublayerAnimation {
	return t.Animation[shape]
}

func spec(kind string, duration, delay float64, easing string) *AnimationSpec {
	return &AnimationSpec{Type: kind, Options: AnimationOptions{Duration: duration, Delay: delay, Easing: easing}}
}

// DefaultTheme returns the light theme used when ChartOptions has none.
func DefaultTheme() Theme {
	update := spec("empty", 300, 0, "cubic-in-out")
	return Theme{
		Name: "light",
		Palette: []Color{
			{0.33, 0.44, 0.78, 1},
			{0.57, 0.80, 0.46, 1},
			{0.98, 0.78, 0.35, 1},
			{0.93, 0.40, 0.40, 1},
			{0.45, 0.75, 0.87, 1},
			{0.23, 0.64, 0.45, 1},
			{0.99, 0.52, 0.32, 1},
			{0.60, 0.38, 0.71, 1},
		},
		Background: Color{1, 1, 1, 1},
		Text:       Color{0.2, 0.2, 0.2, 1},
		Animation: map[Shape]SublayerAnimation{
			ShapeRect:   {Enter: spec("zoom", 600, 0, "cubic-out"), Update: update},
			ShapeArc:    {Enter: spec("zoom", 800, 0, "back-out"), Update: update},
			ShapeCircle: {Enter: spec("zoom", 400, 0, "cubic-out"), Update: update},
			ShapeLine:   {Enter: spec("scan", 800, 0, "quad-out"), Update: update},
			ShapeText:   {Enter: spec("fade", 400, 200, "linear"), Update: update},
		},
	}
}

// DarkTheme is DefaultTheme on a dark background.
func DarkTheme() Theme {
	t := DefaultTheme()
	t.Name = "dark"
	t.Background = Color{0.1, 0.1, 0.12, 1}
	t.Text = Color{0.9, 0.9, 0.9, 1}
	return t
}

// ThemeByName resolves "light" or "dark"; anything else is a configuration
// error and yields the default theme.
func ThemeByName(name string) (Theme, error) {
	switch name {
	case "", "light":
		return DefaultTheme(), nil
	case "dark":
		return DarkTheme(), nil
	}
	return DefaultTheme(), NewError(ErrCodeConfiguration, "unknown theme %q", name)
}
