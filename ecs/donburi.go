package ecs

import (
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"

	"github.com/phanxgames/canopy"
)

// LayerEventType is the Donburi event type for chart interactions.
var LayerEventType = events.NewEventType[canopy.LayerEvent]()

// Selection is the component holding the last element clicked on a chart.
type Selection struct {
	Layer    string
	Sublayer string
	Key      string
	Index    int
	Datum    canopy.Geometry
}

// SelectionComponent is attached to the entity NewDonburiStore creates.
var SelectionComponent = donburi.NewComponentType[Selection]()

type donburiStore struct {
	world     donburi.World
	selection donburi.Entity
}

// NewDonburiStore creates an EventStore backed by a Donburi world. Events
// are published to LayerEventType and consumed with ProcessEvents. Clicks
// also update the Selection component of a dedicated entity, so systems can
// query the current selection without subscribing.
func NewDonburiStore(world donburi.World) canopy.EventStore {
	return &donburiStore{
		world:     world,
		selection: world.Create(SelectionComponent),
	}
}

func (s *donburiStore) EmitEvent(event canopy.LayerEvent) {
	LayerEventType.Publish(s.world, event)
	if event.Type != canopy.EventClick {
		return
	}
	entry := s.world.Entry(s.selection)
	SelectionComponent.SetValue(entry, Selection{
		Layer:    event.Layer,
		Sublayer: event.Sublayer,
		Key:      event.Key,
		Index:    event.Index,
		Datum:    event.Datum,
	})
}
