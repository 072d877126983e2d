package ecs

import (
	"testing"

	"github.com/phanxgames/trellis"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

func TestNewDonburiStore(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)
	if store == nil {
		t.Fatal("NewDonburiStore returned nil")
	}
	if _, ok := store.Selection(); !ok {
		t.Fatal("store entity should carry a SelectionComponent")
	}
}

func TestDonburiStore_EmitEvent(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)

	var received []trellis.EditorEvent
	EditorEventType.Subscribe(world, func(w donburi.World, e trellis.EditorEvent) {
		received = append(received, e)
	})

	node := trellis.NewID(trellis.KindNode)
	store.EmitEvent(trellis.EditorEvent{Type: trellis.EventHoverChanged, ID: node})
	store.EmitEvent(trellis.EditorEvent{
		Type:      trellis.EventSelectionChanged,
		Selection: []trellis.ElementID{node},
		Tool:      trellis.ToolDrag,
	})

	// Events are queued until processed.
	if len(received) != 0 {
		t.Fatalf("events delivered before ProcessEvents: %d", len(received))
	}
	EditorEventType.ProcessEvents(world)

	if len(received) != 2 {
		t.Fatalf("expected 2 events, got %d", len(received))
	}
	if received[0].Type != trellis.EventHoverChanged || received[0].ID != node {
		t.Errorf("event 0: %+v", received[0])
	}
	if received[1].Type != trellis.EventSelectionChanged || len(received[1].Selection) != 1 {
		t.Errorf("event 1: %+v", received[1])
	}
}

func TestDonburiStore_MirrorsSelection(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)

	a := trellis.NewID(trellis.KindNode)
	b := trellis.NewID(trellis.KindEdge)
	store.EmitEvent(trellis.EditorEvent{Type: trellis.EventHoverChanged, ID: b, Tool: trellis.ToolBase})
	store.EmitEvent(trellis.EditorEvent{Type: trellis.EventSelectionChanged, Selection: []trellis.ElementID{a, b}, Tool: trellis.ToolSelect})

	sel, ok := store.Selection()
	if !ok {
		t.Fatal("selection entity missing")
	}
	if sel.Hovered != b {
		t.Errorf("Hovered = %v, want %v", sel.Hovered, b)
	}
	if len(sel.IDs) != 2 || sel.IDs[0] != a || sel.IDs[1] != b {
		t.Errorf("IDs = %v", sel.IDs)
	}
	if sel.Tool != trellis.ToolSelect {
		t.Errorf("Tool = %v, want select", sel.Tool)
	}

	store.EmitEvent(trellis.EditorEvent{Type: trellis.EventElementsDeleted, Selection: []trellis.ElementID{a, b}})
	sel, _ = store.Selection()
	if len(sel.IDs) != 0 {
		t.Errorf("IDs after delete = %v, want empty", sel.IDs)
	}
}

func TestDonburiStore_ImplementsEventStore(t *testing.T) {
	world := donburi.NewWorld()
	var store trellis.EventStore = NewDonburiStore(world)
	_ = store // compile-time interface check
}

func TestDonburiStore_MultipleSubscribers(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)

	var count1, count2 int
	EditorEventType.Subscribe(world, func(w donburi.World, e trellis.EditorEvent) {
		count1++
	})
	EditorEventType.Subscribe(world, func(w donburi.World, e trellis.EditorEvent) {
		count2++
	})

	store.EmitEvent(trellis.EditorEvent{Type: trellis.EventToolChanged})
	events.ProcessAllEvents(world)

	if count1 != 1 || count2 != 1 {
		t.Errorf("expected both subscribers called once, got %d and %d", count1, count2)
	}
}
