package canopy

import "math"

// ScaleKind distinguishes the scale families.
type ScaleKind uint8

const (
	KindLinear  ScaleKind = iota // continuous -> continuous
	KindBand                     // discrete -> continuous bands
	KindAngular                  // weighted discrete -> angular sectors
)

func (k ScaleKind) String() string {
	switch k {
	case KindLinear:
		return "linear"
	case KindBand:
		return "band"
	case KindAngular:
		return "angular"
	default:
		return "unknown"
	}
}

// Scale is an immutable mapping from a domain to a pixel or angular range.
// Implementations are value types; every derivation returns a new value.
type Scale interface {
	Kind() ScaleKind
	Range() [2]float64
	// Shift returns a copy whose output is offset by delta.
	Shift(delta float64) Scale
}

// Nice configures domain adjustment. Pointer fields are unset when nil.
type Nice struct {
	Count             int      `toml:"count" yaml:"count,omitempty"`
	Zero              bool     `toml:"zero" yaml:"zero,omitempty"`
	PaddingInner      float64  `toml:"paddingInner" yaml:"paddingInner,omitempty"`
	FixedBandwidth    *float64 `toml:"fixedBandwidth" yaml:"fixedBandwidth,omitempty"`
	FixedPaddingInner *float64 `toml:"fixedPaddingInner" yaml:"fixedPaddingInner,omitempty"`
	FixedBoundary     string   `toml:"fixedBoundary" yaml:"fixedBoundary,omitempty"` // "start" (default) or "end"
	FixedStep         *float64 `toml:"fixedStep" yaml:"fixedStep,omitempty"`
}

// Float returns a pointer to v, for filling the optional Nice fields.
func Float(v float64) *float64 { return &v }

// --- Linear ---

// LinearScale maps a numeric interval onto a numeric range.
type LinearScale struct {
	domain [2]float64
	rng    [2]float64
	nice   Nice
}

// Linear builds a continuous scale, applying the zero and nice policies to
// the domain. It never fails; NaN input produces NaN output.
func Linear(domain, rng [2]float64, nice Nice) LinearScale {
	if nice.Zero {
		domain = extendToZero(domain)
	}
	switch {
	case nice.FixedStep != nil && *nice.FixedStep > 0:
		domain = snapDomain(domain, *nice.FixedStep)
	case nice.Count > 0:
		domain = niceDomain(domain, nice.Count)
	}
	return LinearScale{domain: domain, rng: rng, nice: nice}
}

func (s LinearScale) Kind() ScaleKind      { return KindLinear }
func (s LinearScale) Domain() [2]float64   { return s.domain }
func (s LinearScale) Range() [2]float64    { return s.rng }
func (s LinearScale) NiceOptions() Nice    { return s.nice }
func (s LinearScale) Increasing() bool     { return s.domain[1] >= s.domain[0] }
func (s LinearScale) Shift(d float64) Scale { return s.shift(d) }

func (s LinearScale) shift(d float64) LinearScale {
	s.rng = [2]float64{s.rng[0] + d, s.rng[1] + d}
	return s
}

// WithRange returns a copy mapping onto rng.
func (s LinearScale) WithRange(rng [2]float64) LinearScale {
	s.rng = rng
	return s
}

// Map converts a domain value to the range. A degenerate domain maps every
// value to the middle of the range.
func (s LinearScale) Map(v float64) float64 {
	d0, d1 := s.domain[0], s.domain[1]
	if d0 == d1 {
		return (s.rng[0] + s.rng[1]) / 2
	}
	t := (v - d0) / (d1 - d0)
	return s.rng[0] + t*(s.rng[1]-s.rng[0])
}

// Invert converts a range value back to the domain.
func (s LinearScale) Invert(px float64) float64 {
	r0, r1 := s.rng[0], s.rng[1]
	if r0 == r1 {
		return (s.domain[0] + s.domain[1]) / 2
	}
	t := (px - r0) / (r1 - r0)
	return s.domain[0] + t*(s.domain[1]-s.domain[0])
}

// Ticks returns round tick values inside the domain. FixedStep wins over
// Count; with neither, five ticks are requested.
func (s LinearScale) Ticks() []float64 {
	lo, hi := minmax(s.domain)
	if s.nice.FixedStep != nil && *s.nice.FixedStep > 0 {
		return stepTicks(lo, hi, *s.nice.FixedStep)
	}
	count := s.nice.Count
	if count <= 0 {
		count = 5
	}
	return stepTicks(lo, hi, tickStep(lo, hi, count))
}

// --- Band ---

// BandScale maps discrete keys onto evenly spaced bands of a range.
type BandScale struct {
	domain       []string
	index        map[string]int
	rng          [2]float64
	positions    []float64 // low edge of each band, in domain order
	step         float64
	bandwidth    float64
	paddingInner float64
}

// Band builds a discrete scale. See Nice for the precedence of the fixed
// spacing options. It never fails.
func Band(domain []string, rng [2]float64, nice Nice) BandScale {
	keys := append([]string(nil), domain...)
	n := float64(len(keys))
	dir := 1.0
	if rng[1] < rng[0] {
		dir = -1
	}

	var (
		step, bandwidth, pad, offset float64
	)
	span := math.Abs(rng[1] - rng[0])

	switch {
	case nice.FixedBandwidth != nil && nice.FixedPaddingInner != nil:
		b, p := *nice.FixedBandwidth, *nice.FixedPaddingInner
		total := n*b + math.Max(n-1, 0)*p
		if nice.FixedBoundary == "end" {
			rng[1] = rng[0] + dir*total
		} else {
			rng[0] = rng[1] - dir*total
		}
		span = total
		step, bandwidth = b+p, b
		pad = ratio(p, b+p)
	case nice.FixedBandwidth != nil:
		b := *nice.FixedBandwidth
		var p float64
		if n > 1 {
			p = (span - n*b) / (n - 1)
		} else {
			offset = (span - b) / 2
		}
		step, bandwidth = b+p, b
		pad = ratio(p, b+p)
	case nice.FixedPaddingInner != nil:
		p := *nice.FixedPaddingInner
		var b float64
		if n > 0 {
			b = (span - math.Max(n-1, 0)*p) / n
		}
		step, bandwidth = b+p, b
		pad = ratio(p, b+p)
	default:
		pad = math.Min(math.Max(nice.PaddingInner, 0), 1)
		step = span / math.Max(1, n-pad)
		bandwidth = step * (1 - pad)
		offset = (span - step*(n-pad)) / 2
	}

	s := BandScale{
		domain:       keys,
		index:        make(map[string]int, len(keys)),
		rng:          rng,
		positions:    make([]float64, len(keys)),
		step:         step,
		bandwidth:    bandwidth,
		paddingInner: pad,
	}
	for i, k := range keys {
		s.index[k] = i
		edge := rng[0] + dir*(offset+float64(i)*step)
		if dir < 0 {
			edge -= bandwidth
		}
		s.positions[i] = edge
	}
	return s
}

func (s BandScale) Kind() ScaleKind      { return KindBand }
func (s BandScale) Range() [2]float64    { return s.rng }
func (s BandScale) Bandwidth() float64   { return s.bandwidth }
func (s BandScale) Step() float64        { return s.step }
func (s BandScale) PaddingInner() float64 { return s.paddingInner }
func (s BandScale) Len() int             { return len(s.domain) }

// Domain returns a copy of the keys.
func (s BandScale) Domain() []string { return append([]string(nil), s.domain...) }

// Index returns the position of key in the domain.
func (s BandScale) Index(key string) (int, bool) {
	i, ok := s.index[key]
	return i, ok
}

// Map returns the low edge of key's band.
func (s BandScale) Map(key string) (float64, bool) {
	i, ok := s.index[key]
	if !ok {
		return 0, false
	}
	return s.positions[i], true
}

// Center returns the middle of key's band.
func (s BandScale) Center(key string) (float64, bool) {
	v, ok := s.Map(key)
	return v + s.bandwidth/2, ok
}

func (s BandScale) Shift(d float64) Scale {
	pos := make([]float64, len(s.positions))
	for i, p := range s.positions {
		pos[i] = p + d
	}
	s.positions = pos
	s.rng = [2]float64{s.rng[0] + d, s.rng[1] + d}
	return s
}

// --- Angular ---

// AngularScale partitions an angular range between weighted keys with an
// equal gap after every key.
type AngularScale struct {
	keys   []string
	index  map[string]int
	rng    [2]float64
	starts []float64
	ends   []float64
	gap    float64
}

// Angular builds a sector scale from keys and weights. Missing weights
// count as zero. It never fails.
func Angular(keys []string, weights []float64, rng [2]float64, nice Nice) AngularScale {
	n := len(keys)
	s := AngularScale{
		keys:   append([]string(nil), keys...),
		index:  make(map[string]int, n),
		rng:    rng,
		starts: make([]float64, n),
		ends:   make([]float64, n),
	}
	if n == 0 {
		return s
	}
	var sum float64
	for i := range keys {
		if i < len(weights) {
			sum += weights[i]
		}
	}
	total := rng[1] - rng[0]
	pad := math.Min(math.Max(nice.PaddingInner, 0), 1)
	s.gap = total * pad / float64(n)
	usable := total * (1 - pad)

	angle := rng[0]
	for i, k := range keys {
		var w float64
		if i < len(weights) {
			w = weights[i]
		}
		span := 0.0
		if sum != 0 {
			span = usable * w / sum
		}
		s.index[k] = i
		s.starts[i] = angle
		s.ends[i] = angle + span
		angle += span + s.gap
	}
	return s
}

func (s AngularScale) Kind() ScaleKind     { return KindAngular }
func (s AngularScale) Range() [2]float64   { return s.rng }
func (s AngularScale) Gap() float64        { return s.gap }
func (s AngularScale) Shift(float64) Scale { return s }

// Domain returns a copy of the keys.
func (s AngularScale) Domain() []string { return append([]string(nil), s.keys...) }

// Arc returns the start and end angle of key's sector.
func (s AngularScale) Arc(key string) (start, end float64, ok bool) {
	i, ok := s.index[key]
	if !ok {
		return 0, 0, false
	}
	return s.starts[i], s.ends[i], true
}

// --- Scale sets ---

// Slot names one scale position in a ScaleSet.
type Slot uint8

const (
	SlotX Slot = iota
	SlotY
	SlotYR // minor (right-hand) y axis
	SlotAngle
	SlotRadius
	SlotColor
)

var slotNames = [...]string{"scaleX", "scaleY", "scaleYR", "scaleAngle", "scaleRadius", "scaleColor"}

func (s Slot) String() string {
	if int(s) < len(slotNames) {
		return slotNames[s]
	}
	return "unknown"
}

// ScaleSet is the group of scales a layer renders against. It is a value:
// copies never share mutable state.
type ScaleSet struct {
	X, Y, YR, Angle, Radius, Color Scale
	Nice                           Nice
}

// Get returns the scale in slot, or nil.
func (s ScaleSet) Get(slot Slot) Scale {
	switch slot {
	case SlotX:
		return s.X
	case SlotY:
		return s.Y
	case SlotYR:
		return s.YR
	case SlotAngle:
		return s.Angle
	case SlotRadius:
		return s.Radius
	case SlotColor:
		return s.Color
	}
	return nil
}

// With returns a copy with slot set to sc.
func (s ScaleSet) With(slot Slot, sc Scale) ScaleSet {
	switch slot {
	case SlotX:
		s.X = sc
	case SlotY:
		s.Y = sc
	case SlotYR:
		s.YR = sc
	case SlotAngle:
		s.Angle = sc
	case SlotRadius:
		s.Radius = sc
	case SlotColor:
		s.Color = sc
	}
	return s
}

// Empty reports whether no slot is set.
func (s ScaleSet) Empty() bool {
	return s.X == nil && s.Y == nil && s.YR == nil &&
		s.Angle == nil && s.Radius == nil && s.Color == nil
}

// MergeScale combines two proposals for the same slot. Two linear scales
// merge into the sign-aware union of their domains, keeping existing's
// range; opposite directions are rejected with a configuration error and
// existing is returned. Any other pair resolves to incoming.
func MergeScale(existing, incoming Scale) (Scale, error) {
	if existing == nil {
		return incoming, nil
	}
	if incoming == nil {
		return existing, nil
	}
	a, okA := existing.(LinearScale)
	b, okB := incoming.(LinearScale)
	if !okA || !okB {
		return incoming, nil
	}
	if a.Increasing() != b.Increasing() {
		return existing, NewError(ErrCodeConfiguration,
			"cannot merge domains with opposite directions: %v and %v", a.domain, b.domain)
	}
	lo := math.Min(math.Min(a.domain[0], a.domain[1]), math.Min(b.domain[0], b.domain[1]))
	hi := math.Max(math.Max(a.domain[0], a.domain[1]), math.Max(b.domain[0], b.domain[1]))
	merged := a
	if a.Increasing() {
		merged.domain = [2]float64{lo, hi}
	} else {
		merged.domain = [2]float64{hi, lo}
	}
	return merged, nil
}

func ratio(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func minmax(d [2]float64) (float64, float64) {
	if d[0] <= d[1] {
		return d[0], d[1]
	}
	return d[1], d[0]
}
