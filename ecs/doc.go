// Package ecs provides ECS adapters for trellis editor events.
//
// The primary adapter is [NewDonburiStore], which bridges editor events
// (hover, selection, tool and connection changes) into a [Donburi] world as
// typed events. Subscribe to [EditorEventType] in your ECS systems to
// receive them.
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	editor.SetEventStore(store)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
