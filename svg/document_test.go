package svg

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/canopy"
)

func bars(hs ...float64) []canopy.Geometry {
	out := make([]canopy.Geometry, len(hs))
	for i, h := range hs {
		out[i] = canopy.Geometry{Key: string(rune('a' + i)), X: float64(i * 20), Y: 100 - h, Width: 10, Height: h, Fill: canopy.Color{R: 1, A: 1}}
	}
	return out
}

func TestDocumentDrawCreatesElements(t *testing.T) {
	d := New(200, 100)
	d.Attach(canopy.NewScheduler(), nil)
	g := d.NewGroup(d.Root(), "bars")

	d.Draw(g, canopy.ShapeRect, canopy.DrawDescriptor{Data: bars(40, 60)})

	els := d.Elements(g)
	require.Len(t, els, 2)
	first := els[0].(*Element)
	assert.Equal(t, 5.0, first.X)
	assert.Equal(t, 80.0, first.Y)
	assert.Equal(t, 40.0, first.Height)
	assert.Equal(t, 1, els[1].(*Element).Index)
}

func TestDocumentDrawShrinks(t *testing.T) {
	d := New(200, 100)
	g := d.NewGroup(d.Root(), "bars")
	d.Draw(g, canopy.ShapeRect, canopy.DrawDescriptor{Data: bars(10, 20, 30)})
	removed := d.Elements(g)[2].(*Element)

	d.Draw(g, canopy.ShapeRect, canopy.DrawDescriptor{Data: bars(10)})

	assert.Len(t, d.Elements(g), 1)
	assert.True(t, removed.IsDisposed())
}

func TestDocumentTransitionTweens(t *testing.T) {
	sched := canopy.NewScheduler()
	d := New(200, 100)
	d.Attach(sched, nil)
	g := d.NewGroup(d.Root(), "bars")
	d.Draw(g, canopy.ShapeRect, canopy.DrawDescriptor{Data: bars(40)})
	el := d.Elements(g)[0].(*Element)
	require.Equal(t, 40.0, el.Height)

	d.Draw(g, canopy.ShapeRect, canopy.DrawDescriptor{
		Data:       bars(80),
		Transition: canopy.Transition{Duration: 100, Easing: "linear"},
	})
	assert.Equal(t, 40.0, el.Height, "height must not jump before the scheduler advances")

	sched.Advance(50 * time.Millisecond)
	assert.InDelta(t, 60.0, el.Height, 0.5)

	sched.Advance(60 * time.Millisecond)
	assert.InDelta(t, 80.0, el.Height, 1e-6)
	assert.False(t, sched.Busy())
}

func TestDocumentDispatchReachesBoundGroup(t *testing.T) {
	d := New(200, 100)
	sub := d.NewGroup(d.Root(), "bars")
	child := d.NewGroup(sub, "bars-0")
	d.Draw(child, canopy.ShapeRect, canopy.DrawDescriptor{Data: bars(10, 20)})

	var got []canopy.Interaction
	d.Bind(sub, func(in canopy.Interaction) { got = append(got, in) })

	el := d.Elements(child)[1].(*Element)
	require.True(t, d.Dispatch(canopy.EventClick, el, 25, 90))
	require.Len(t, got, 1)
	assert.Equal(t, canopy.EventClick, got[0].Type)
	assert.Equal(t, canopy.Group(child), got[0].Group)
	assert.Equal(t, 1, got[0].Index)

	d.Bind(sub, nil)
	assert.False(t, d.Dispatch(canopy.EventClick, el, 25, 90))
}

func TestDocumentRemoveGroupUnbinds(t *testing.T) {
	d := New(200, 100)
	sub := d.NewGroup(d.Root(), "bars")
	d.Draw(sub, canopy.ShapeRect, canopy.DrawDescriptor{Data: bars(10)})
	d.Bind(sub, func(canopy.Interaction) { t.Fatal("handler on removed group") })
	el := d.Elements(sub)[0].(*Element)

	d.RemoveGroup(sub)

	assert.Empty(t, d.RootElement().Children())
	assert.False(t, d.Dispatch(canopy.EventClick, el, 0, 0))
}

func TestEncode(t *testing.T) {
	d := New(200, 100)
	d.SetBackground(canopy.ColorWhite)
	g := d.NewGroup(d.Root(), "bars")
	d.Draw(g, canopy.ShapeRect, canopy.DrawDescriptor{
		Data:  bars(40),
		Style: canopy.Style{Opacity: 0.5},
	})
	hidden := d.NewGroup(d.Root(), "hidden")
	d.Draw(hidden, canopy.ShapeRect, canopy.DrawDescriptor{Data: bars(40), Style: canopy.Style{Hidden: true}})

	out := d.String()
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Contains(t, out, `id="bars"`)
	assert.Contains(t, out, `d="M-5 -20h10v40h-10z"`)
	assert.Contains(t, out, `transform="translate(5 80)"`)
	assert.Contains(t, out, "fill:#ff0000")
	assert.Contains(t, out, "opacity:0.5")
	assert.Equal(t, 1, strings.Count(out, "<path"), "hidden elements are omitted")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "</svg>"))
}

func TestSectorPath(t *testing.T) {
	assert.Equal(t, "", sectorPath(0, 10, 1, 1))
	assert.Equal(t, "M0 -10A10 10 0 0 1 10 0L0 0Z", sectorPath(0, 10, 0, math.Pi/2))
	assert.Equal(t, "M0 -10A10 10 0 0 1 10 0L5 0A5 5 0 0 0 0 -5Z", sectorPath(5, 10, 0, math.Pi/2))
	full := sectorPath(0, 10, 0, 2*math.Pi)
	assert.Equal(t, 2, strings.Count(full, "Z"))
}

func TestNum(t *testing.T) {
	assert.Equal(t, "0", num(-0.001))
	assert.Equal(t, "1.5", num(1.5))
	assert.Equal(t, "2", num(2.0))
	assert.Equal(t, "3.14", num(math.Pi))
}
