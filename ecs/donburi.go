package ecs

import (
	"github.com/phanxgames/trellis"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// EditorEventType is the Donburi event type for trellis editor events.
var EditorEventType = events.NewEventType[trellis.EditorEvent]()

// SelectionComponent is carried by the entity a DonburiStore keeps in sync
// with the editor's selection, hover and active tool.
var SelectionComponent = donburi.NewComponentType[Selection]()

// Selection mirrors the editor selection and hover state.
type Selection struct {
	IDs     []trellis.ElementID
	Hovered trellis.ElementID
	Tool    trellis.ToolKind
}

// DonburiStore is a trellis.EventStore backed by a Donburi world.
type DonburiStore struct {
	world  donburi.World
	entity donburi.Entity
}

// NewDonburiStore creates an EventStore backed by a Donburi world. Events
// are published to EditorEventType and can be consumed with
// events.Subscribe and ProcessEvents.
func NewDonburiStore(world donburi.World) *DonburiStore {
	return &DonburiStore{
		world:  world,
		entity: world.Create(SelectionComponent),
	}
}

// EmitEvent implements trellis.EventStore.
func (s *DonburiStore) EmitEvent(event trellis.EditorEvent) {
	if entry := s.world.Entry(s.entity); entry.Valid() {
		sel := SelectionComponent.Get(entry)
		sel.Tool = event.Tool
		switch event.Type {
		case trellis.EventHoverChanged:
			sel.Hovered = event.ID
		case trellis.EventSelectionChanged:
			sel.IDs = event.Selection
		case trellis.EventElementsDeleted:
			sel.IDs = nil
		}
	}
	EditorEventType.Publish(s.world, event)
}

// Entity returns the entity carrying the SelectionComponent.
func (s *DonburiStore) Entity() donburi.Entity { return s.entity }

// Selection returns the mirrored state. ok is false if the entity was
// removed from the world.
func (s *DonburiStore) Selection() (Selection, bool) {
	entry := s.world.Entry(s.entity)
	if !entry.Valid() {
		return Selection{}, false
	}
	return *SelectionComponent.Get(entry), true
}
