package svg

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/canopy"
)

func TestElementAtRects(t *testing.T) {
	d := New(200, 100)
	g := d.NewGroup(d.Root(), "bars")
	d.Draw(g, canopy.ShapeRect, canopy.DrawDescriptor{Data: bars(40, 60)})
	els := d.Elements(g)

	assert.Same(t, els[0], d.ElementAt(5, 90))
	assert.Same(t, els[1], d.ElementAt(25, 50))
	assert.Nil(t, d.ElementAt(15, 90), "gap between bars")
	assert.Nil(t, d.ElementAt(5, 50), "above the first bar")
}

func TestElementAtTopmostWins(t *testing.T) {
	d := New(200, 100)
	back := d.NewGroup(d.Root(), "back")
	front := d.NewGroup(d.Root(), "front")
	d.Draw(back, canopy.ShapeRect, canopy.DrawDescriptor{Data: bars(40)})
	d.Draw(front, canopy.ShapeRect, canopy.DrawDescriptor{Data: bars(40)})

	assert.Same(t, d.Elements(front)[0], d.ElementAt(5, 90))
}

func TestElementAtSkipsHiddenAndScaledAway(t *testing.T) {
	d := New(200, 100)
	g := d.NewGroup(d.Root(), "bars")
	d.Draw(g, canopy.ShapeRect, canopy.DrawDescriptor{Data: bars(40), Style: canopy.Style{Hidden: true}})
	assert.Nil(t, d.ElementAt(5, 90))

	d.Draw(g, canopy.ShapeRect, canopy.DrawDescriptor{Data: bars(40)})
	el := d.Elements(g)[0].(*Element)
	el.ScaleY = 0
	assert.Nil(t, d.ElementAt(5, 90), "zero scale never hits")

	el.ScaleY = 0.5
	assert.NotNil(t, d.ElementAt(5, 85))
	assert.Nil(t, d.ElementAt(5, 65), "outside the scaled height")
}

func TestElementAtHonoursGroupOffset(t *testing.T) {
	d := New(200, 100)
	g := d.NewGroup(d.Root(), "bars").(*Element)
	g.X, g.Y = 100, 0
	d.Draw(g, canopy.ShapeRect, canopy.DrawDescriptor{Data: bars(40)})

	assert.Nil(t, d.ElementAt(5, 90))
	assert.NotNil(t, d.ElementAt(105, 90))
}

func TestElementAtArcs(t *testing.T) {
	d := New(200, 200)
	g := d.NewGroup(d.Root(), "pie")
	d.Draw(g, canopy.ShapeArc, canopy.DrawDescriptor{Data: []canopy.Geometry{
		{Key: "a", X: 100, Y: 100, InnerRadius: 20, OuterRadius: 80, StartAngle: 0, EndAngle: math.Pi / 2},
		{Key: "b", X: 100, Y: 100, InnerRadius: 20, OuterRadius: 80, StartAngle: math.Pi / 2, EndAngle: 2 * math.Pi},
	}})
	els := d.Elements(g)

	assert.Same(t, els[0], d.ElementAt(140, 60), "upper right quadrant")
	assert.Same(t, els[1], d.ElementAt(60, 140), "lower left quadrant")
	assert.Nil(t, d.ElementAt(100, 100), "inside the hole")
	assert.Nil(t, d.ElementAt(190, 100), "outside the outer radius")
}

func TestUpdateDispatchesClick(t *testing.T) {
	d := New(200, 100)
	sub := d.NewGroup(d.Root(), "bars")
	child := d.NewGroup(sub, "bars-0")
	d.Draw(child, canopy.ShapeRect, canopy.DrawDescriptor{Data: bars(10, 20)})

	var got []canopy.EventType
	d.Bind(sub, func(in canopy.Interaction) { got = append(got, in.Type) })

	d.InjectClick(25, 90)
	require.Equal(t, 2, d.PendingInput())
	d.Update()
	d.Update()
	assert.Equal(t, 0, d.PendingInput())
	assert.Equal(t, []canopy.EventType{
		canopy.EventPointerEnter, canopy.EventPointerDown, canopy.EventPointerUp, canopy.EventClick,
	}, got)

	d.Update()
	assert.Len(t, got, 4, "update with nothing queued is a no-op")
}

func TestUpdateDispatchesHover(t *testing.T) {
	d := New(200, 100)
	sub := d.NewGroup(d.Root(), "bars")
	d.Draw(sub, canopy.ShapeRect, canopy.DrawDescriptor{Data: bars(10, 20)})

	var got []canopy.Interaction
	d.Bind(sub, func(in canopy.Interaction) { got = append(got, in) })

	d.InjectMove(5, 95)
	d.InjectMove(25, 90)
	d.InjectMove(150, 10)
	for d.PendingInput() > 0 {
		d.Update()
	}

	var types []canopy.EventType
	for _, in := range got {
		types = append(types, in.Type)
	}
	assert.Equal(t, []canopy.EventType{
		canopy.EventPointerEnter, canopy.EventPointerMove,
		canopy.EventPointerLeave, canopy.EventPointerEnter, canopy.EventPointerMove,
		canopy.EventPointerLeave,
	}, types)
	assert.Equal(t, 1, got[3].Index)
}

func TestUpdateNoClickAcrossElements(t *testing.T) {
	d := New(200, 100)
	sub := d.NewGroup(d.Root(), "bars")
	d.Draw(sub, canopy.ShapeRect, canopy.DrawDescriptor{Data: bars(10, 20)})

	clicks := 0
	d.Bind(sub, func(in canopy.Interaction) {
		if in.Type == canopy.EventClick {
			clicks++
		}
	})

	d.InjectClick(5, 95)
	d.Update() // press on the first bar
	d.pending[0] = pointerEvent{x: 25, y: 90}
	d.Update() // release on the second

	assert.Zero(t, clicks)
}
