// Package ecs bridges canopy chart interactions into an ECS world.
//
// [NewDonburiStore] publishes every layer interaction (click, hover, pointer
// down and up) into a [Donburi] world as a typed event. Subscribe to
// [LayerEventType] in your systems to receive them:
//
//	store := ecs.NewDonburiStore(world)
//	chart.SetEventStore(store)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
