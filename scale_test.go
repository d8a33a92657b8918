package canopy

import (
	"math"
	"testing"
)

func assertDomain(t *testing.T, name string, got, want [2]float64) {
	t.Helper()
	if math.Abs(got[0]-want[0]) > epsilon || math.Abs(got[1]-want[1]) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

// --- Linear ---

func TestLinearMapInvert(t *testing.T) {
	s := Linear([2]float64{0, 10}, [2]float64{100, 0}, Nice{})
	assertNear(t, "Map(0)", s.Map(0), 100)
	assertNear(t, "Map(2.5)", s.Map(2.5), 75)
	assertNear(t, "Invert(75)", s.Invert(75), 2.5)
	if !s.Increasing() {
		t.Error("domain [0, 10] should be increasing")
	}
}

func TestLinearDegenerateDomain(t *testing.T) {
	s := LinearScale{domain: [2]float64{5, 5}, rng: [2]float64{0, 100}}
	assertNear(t, "Map", s.Map(123), 50)
}

func TestLinearNaN(t *testing.T) {
	s := Linear([2]float64{0, 10}, [2]float64{0, 100}, Nice{})
	if !math.IsNaN(s.Map(math.NaN())) {
		t.Error("NaN input should map to NaN")
	}
}

func TestLinearZero(t *testing.T) {
	tests := []struct {
		name   string
		domain [2]float64
		want   [2]float64
	}{
		{"positive", [2]float64{2, 8}, [2]float64{0, 8}},
		{"negative", [2]float64{-8, -2}, [2]float64{-8, 0}},
		{"reversed positive", [2]float64{8, 2}, [2]float64{8, 0}},
		{"mixed", [2]float64{-3, 4}, [2]float64{-3, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Linear(tt.domain, [2]float64{0, 1}, Nice{Zero: true})
			assertDomain(t, "Domain", s.Domain(), tt.want)
		})
	}
}

func TestLinearNice(t *testing.T) {
	tests := []struct {
		name   string
		domain [2]float64
		count  int
		want   [2]float64
	}{
		{"already round", [2]float64{3, 97}, 10, [2]float64{3, 97}},
		{"rounds outward", [2]float64{3.2, 96.6}, 10, [2]float64{3, 97}},
		{"negative low", [2]float64{-3.7, 41}, 5, [2]float64{-4, 41}},
		{"reversed", [2]float64{41, -3.7}, 5, [2]float64{41, -4}},
		{"degenerate", [2]float64{5, 5}, 5, [2]float64{4, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Linear(tt.domain, [2]float64{0, 1}, Nice{Count: tt.count})
			assertDomain(t, "Domain", s.Domain(), tt.want)
		})
	}
}

func TestLinearNiceCoversInput(t *testing.T) {
	inputs := [][2]float64{{0.013, 0.92}, {-120, 7}, {1e6, 3.3e6}, {17, 18}, {-0.37, -0.02}, {3, 1003}, {42.5, 42.75}}
	for _, d := range inputs {
		for _, count := range []int{1, 5, 10} {
			got := Linear(d, [2]float64{0, 1}, Nice{Count: count}).Domain()
			if got[0] > d[0] || got[1] < d[1] {
				t.Errorf("nice(%v, %d) = %v does not cover the input", d, count, got)
			}
			mag := math.Pow(10, math.Floor(math.Log10((d[1]-d[0])/float64(count))))
			half := mag / 2
			for _, v := range []float64{got[0], got[1], got[1] - got[0]} {
				q := v / half
				if math.Abs(q-math.Round(q)) > 1e-6*math.Max(1, math.Abs(q)) {
					t.Errorf("nice(%v, %d) = %v: %v is not a multiple of %v", d, count, got, v, half)
				}
			}
			if limit := half * (1 + 1e-9); d[0]-got[0] > limit || got[1]-d[1] > limit {
				t.Errorf("nice(%v, %d) = %v overshoots by more than %v", d, count, got, half)
			}
		}
	}
}

func TestLinearFixedStep(t *testing.T) {
	s := Linear([2]float64{3, 41}, [2]float64{0, 1}, Nice{Count: 3, FixedStep: Float(10)})
	assertDomain(t, "Domain", s.Domain(), [2]float64{0, 50})

	ticks := s.Ticks()
	want := []float64{0, 10, 20, 30, 40, 50}
	if len(ticks) != len(want) {
		t.Fatalf("Ticks = %v, want %v", ticks, want)
	}
	for i := range want {
		assertNear(t, "tick", ticks[i], want[i])
	}
}

func TestLinearTicks(t *testing.T) {
	s := Linear([2]float64{0, 10}, [2]float64{0, 1}, Nice{Count: 5})
	want := []float64{0, 2, 4, 6, 8, 10}
	got := s.Ticks()
	if len(got) != len(want) {
		t.Fatalf("Ticks = %v, want %v", got, want)
	}
	for i := range want {
		assertNear(t, "tick", got[i], want[i])
	}
}

func TestTicksRoundFloatNoise(t *testing.T) {
	got := stepTicks(0, 0.5, 0.1)
	want := []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5}
	if len(got) != len(want) {
		t.Fatalf("ticks = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ticks[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLinearShiftIsCopy(t *testing.T) {
	s := Linear([2]float64{0, 10}, [2]float64{0, 100}, Nice{})
	shifted := s.Shift(20).(LinearScale)
	assertDomain(t, "shifted range", shifted.Range(), [2]float64{20, 120})
	assertDomain(t, "original range", s.Range(), [2]float64{0, 100})
}

// --- Band ---

func TestBandDefault(t *testing.T) {
	s := Band([]string{"a", "b", "c", "d"}, [2]float64{0, 100}, Nice{})
	assertNear(t, "Bandwidth", s.Bandwidth(), 25)
	v, ok := s.Map("c")
	if !ok {
		t.Fatal("c should be in the domain")
	}
	assertNear(t, "Map(c)", v, 50)
	c, _ := s.Center("c")
	assertNear(t, "Center(c)", c, 62.5)
	if _, ok := s.Map("z"); ok {
		t.Error("unknown key should not map")
	}
}

func TestBandPaddingInnerFillsRange(t *testing.T) {
	s := Band([]string{"a", "b", "c", "d"}, [2]float64{0, 100}, Nice{PaddingInner: 0.2})
	first, _ := s.Map("a")
	last, _ := s.Map("d")
	assertNear(t, "first edge", first, 0)
	assertNear(t, "last end", last+s.Bandwidth(), 100)
	assertNear(t, "PaddingInner", s.PaddingInner(), 0.2)
	assertNear(t, "gap", s.Step()-s.Bandwidth(), 0.2*s.Step())
}

func TestBandFixedSpacing(t *testing.T) {
	s := Band([]string{"a", "b", "c"}, [2]float64{0, 100}, Nice{
		FixedBandwidth:    Float(20),
		FixedPaddingInner: Float(10),
	})
	assertNear(t, "Bandwidth", s.Bandwidth(), 20)
	assertNear(t, "PaddingInner", s.PaddingInner(), 10.0/30)

	// The start side absorbs the overflow.
	assertDomain(t, "Range", s.Range(), [2]float64{20, 100})
	a, _ := s.Map("a")
	assertNear(t, "Map(a)", a, 20)
}

func TestBandFixedSpacingEndBoundary(t *testing.T) {
	s := Band([]string{"a", "b", "c"}, [2]float64{0, 100}, Nice{
		FixedBandwidth:    Float(20),
		FixedPaddingInner: Float(10),
		FixedBoundary:     "end",
	})
	assertDomain(t, "Range", s.Range(), [2]float64{0, 80})
	c, _ := s.Map("c")
	assertNear(t, "Map(c)", c, 60)
}

func TestBandFixedBandwidthSolvesPadding(t *testing.T) {
	s := Band([]string{"a", "b", "c"}, [2]float64{0, 100}, Nice{FixedBandwidth: Float(20)})
	assertNear(t, "Bandwidth", s.Bandwidth(), 20)
	assertNear(t, "Step", s.Step(), 40)
	c, _ := s.Map("c")
	assertNear(t, "Map(c)", c, 80)
}

func TestBandFixedBandwidthSingleKeyCentred(t *testing.T) {
	s := Band([]string{"a"}, [2]float64{0, 100}, Nice{FixedBandwidth: Float(20)})
	a, _ := s.Map("a")
	assertNear(t, "Map(a)", a, 40)
}

func TestBandFixedPaddingSolvesBandwidth(t *testing.T) {
	s := Band([]string{"a", "b", "c"}, [2]float64{0, 100}, Nice{FixedPaddingInner: Float(5)})
	assertNear(t, "Bandwidth", s.Bandwidth(), 30)
	c, _ := s.Map("c")
	assertNear(t, "Map(c)", c, 70)
}

func TestBandReversedRange(t *testing.T) {
	s := Band([]string{"a", "b"}, [2]float64{100, 0}, Nice{})
	a, _ := s.Map("a")
	b, _ := s.Map("b")
	assertNear(t, "Map(a)", a, 50)
	assertNear(t, "Map(b)", b, 0)
}

func TestBandShiftAndDomainCopy(t *testing.T) {
	s := Band([]string{"a", "b"}, [2]float64{0, 100}, Nice{})
	shifted := s.Shift(10).(BandScale)
	b, _ := shifted.Map("b")
	assertNear(t, "shifted Map(b)", b, 60)
	orig, _ := s.Map("b")
	assertNear(t, "original Map(b)", orig, 50)

	d := s.Domain()
	d[0] = "mutated"
	if i, ok := s.Index("a"); !ok || i != 0 {
		t.Error("Domain should return a copy")
	}
}

// --- Angular ---

func TestAngularWeights(t *testing.T) {
	s := Angular([]string{"a", "b"}, []float64{1, 3}, [2]float64{0, 2 * math.Pi}, Nice{})
	start, end, ok := s.Arc("a")
	if !ok {
		t.Fatal("a should be in the domain")
	}
	assertNear(t, "a.start", start, 0)
	assertNear(t, "a.end", end, math.Pi/2)
	start, end, _ = s.Arc("b")
	assertNear(t, "b.start", start, math.Pi/2)
	assertNear(t, "b.end", end, 2*math.Pi)
}

func TestAngularPadding(t *testing.T) {
	s := Angular([]string{"a", "b"}, []float64{1, 1}, [2]float64{0, 100}, Nice{PaddingInner: 0.1})
	assertNear(t, "Gap", s.Gap(), 5)
	_, aEnd, _ := s.Arc("a")
	bStart, bEnd, _ := s.Arc("b")
	assertNear(t, "a.end", aEnd, 45)
	assertNear(t, "b.start", bStart, 50)
	assertNear(t, "b.end", bEnd, 95)
}

func TestAngularZeroWeights(t *testing.T) {
	s := Angular([]string{"a", "b"}, []float64{0}, [2]float64{0, 1}, Nice{})
	start, end, _ := s.Arc("b")
	if start != end {
		t.Errorf("zero-weight key should have an empty sector, got [%v, %v]", start, end)
	}
}

// --- Merge ---

func TestMergeScaleUnion(t *testing.T) {
	a := Linear([2]float64{0, 10}, [2]float64{100, 0}, Nice{})
	b := Linear([2]float64{-5, 3}, [2]float64{50, 0}, Nice{})

	got, err := MergeScale(a, b)
	if err != nil {
		t.Fatal(err)
	}
	m := got.(LinearScale)
	assertDomain(t, "Domain", m.Domain(), [2]float64{-5, 10})
	assertDomain(t, "Range", m.Range(), [2]float64{100, 0})
}

func TestMergeScaleCommutative(t *testing.T) {
	pairs := [][2][2]float64{
		{{0, 10}, {-5, 3}},
		{{10, 0}, {3, -5}},
		{{1, 2}, {1, 2}},
	}
	for _, p := range pairs {
		a := Linear(p[0], [2]float64{0, 1}, Nice{})
		b := Linear(p[1], [2]float64{0, 1}, Nice{})
		ab, _ := MergeScale(a, b)
		ba, _ := MergeScale(b, a)
		if ab.(LinearScale).Domain() != ba.(LinearScale).Domain() {
			t.Errorf("merge(%v, %v) = %v but reversed = %v", p[0], p[1],
				ab.(LinearScale).Domain(), ba.(LinearScale).Domain())
		}
	}
}

func TestMergeScaleDecreasing(t *testing.T) {
	a := Linear([2]float64{10, 0}, [2]float64{0, 1}, Nice{})
	b := Linear([2]float64{3, -5}, [2]float64{0, 1}, Nice{})
	got, err := MergeScale(a, b)
	if err != nil {
		t.Fatal(err)
	}
	assertDomain(t, "Domain", got.(LinearScale).Domain(), [2]float64{10, -5})
}

func TestMergeScaleConflict(t *testing.T) {
	a := Linear([2]float64{0, 10}, [2]float64{0, 1}, Nice{})
	b := Linear([2]float64{10, 0}, [2]float64{0, 1}, Nice{})
	got, err := MergeScale(a, b)
	if !IsCode(err, ErrCodeConfiguration) {
		t.Fatalf("err = %v, want configuration error", err)
	}
	assertDomain(t, "kept domain", got.(LinearScale).Domain(), [2]float64{0, 10})
}

func TestMergeScaleNonLinear(t *testing.T) {
	a := Band([]string{"a"}, [2]float64{0, 1}, Nice{})
	b := Band([]string{"b"}, [2]float64{0, 1}, Nice{})
	got, err := MergeScale(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if got.(BandScale).Domain()[0] != "b" {
		t.Error("non-linear merge should resolve to the incoming scale")
	}
	if got, _ := MergeScale(nil, a); got.(BandScale).Domain()[0] != "a" {
		t.Error("merge into nil should return incoming")
	}
	if got, _ := MergeScale(a, nil); got.(BandScale).Domain()[0] != "a" {
		t.Error("merge of nil should keep existing")
	}
}

// --- ScaleSet ---

func TestScaleSetWithIsCopy(t *testing.T) {
	var s ScaleSet
	if !s.Empty() {
		t.Error("zero set should be empty")
	}
	lin := Linear([2]float64{0, 1}, [2]float64{0, 1}, Nice{})
	t2 := s.With(SlotYR, lin)
	if !s.Empty() {
		t.Error("With should not modify the receiver")
	}
	if t2.Get(SlotYR) == nil || t2.Empty() {
		t.Error("With should set the slot")
	}
	if SlotYR.String() != "scaleYR" {
		t.Errorf("String = %q, want scaleYR", SlotYR.String())
	}
}
